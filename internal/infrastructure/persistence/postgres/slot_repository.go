package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/infrastructure/persistence"
)

var ErrSlotNotFound = errors.New("slot not found")

const slotColumns = `
	id, mentor_id, start_time, end_time, fee_cents, timezone, status,
	created_at, updated_at`

type SlotRepository struct {
	q persistence.Executor
}

func NewSlotRepository(db *persistence.DB) *SlotRepository {
	return &SlotRepository{q: db.Pool}
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	query := `
		INSERT INTO slots (
			id, mentor_id, start_time, end_time, fee_cents, timezone, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	m := toSlotModel(slot)
	_, err := r.q.Exec(ctx, query,
		m.ID,
		m.MentorID,
		m.StartTime,
		m.EndTime,
		m.FeeCents,
		m.Timezone,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	return nil
}

func (r *SlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	query := `SELECT` + slotColumns + ` FROM slots WHERE id = $1`

	row := r.q.QueryRow(ctx, query, id)
	return scanSlot(row)
}

// FindByIDForUpdate locks the slot row for the rest of the transaction.
// Concurrent bookings of the same slot serialize here.
func (r *SlotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	query := `SELECT` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`

	row := r.q.QueryRow(ctx, query, id)
	return scanSlot(row)
}

func (r *SlotRepository) FindByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	query := `SELECT` + slotColumns + `
		FROM slots WHERE mentor_id = $1
		ORDER BY start_time ASC`

	rows, err := r.q.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query slots by mentor_id: %w", err)
	}
	return collectSlots(rows)
}

// FindAvailableByMentorID lists the mentor's open future slots, the
// public browsing view.
func (r *SlotRepository) FindAvailableByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	query := `SELECT` + slotColumns + `
		FROM slots
		WHERE mentor_id = $1
		  AND status = 'available'
		  AND start_time > now()
		ORDER BY start_time ASC`

	rows, err := r.q.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query available slots: %w", err)
	}
	return collectSlots(rows)
}

// HasOverlap reports whether the mentor already has a non-cancelled slot
// intersecting [start, end). The slots table also carries an exclusion
// constraint; this check gives a clean error before the insert trips it.
func (r *SlotRepository) HasOverlap(ctx context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM slots
			WHERE mentor_id = $1
			  AND status <> 'cancelled'
			  AND start_time < $3
			  AND $2 < end_time
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, mentorID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("query slot overlap: %w", err)
	}
	return exists, nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *domain.Slot) error {
	query := `
		UPDATE slots
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	m := toSlotModel(slot)
	result, err := r.q.Exec(ctx, query, m.Status, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSlotNotFound
	}

	return nil
}

func scanSlot(row pgx.Row) (*domain.Slot, error) {
	var m SlotModel
	err := row.Scan(
		&m.ID, &m.MentorID, &m.StartTime, &m.EndTime, &m.FeeCents, &m.Timezone, &m.Status,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to scan slot: %w", err)
	}
	return toDomainSlot(m), nil
}

func collectSlots(rows pgx.Rows) ([]*domain.Slot, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Slot, error) {
		var m SlotModel
		err := row.Scan(
			&m.ID, &m.MentorID, &m.StartTime, &m.EndTime, &m.FeeCents, &m.Timezone, &m.Status,
			&m.CreatedAt, &m.UpdatedAt,
		)
		return toDomainSlot(m), err
	})

	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning rows: %w", err)
	}
	return results, nil
}
