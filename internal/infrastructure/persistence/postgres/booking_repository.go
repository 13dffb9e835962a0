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

var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `
	id, student_id, mentor_id, slot_id,
	booked_start_time, booked_end_time, booked_fee_cents, booked_timezone,
	status, payment_status,
	checkout_session_id, payment_intent_id,
	cancelled_by, cancelled_at, cancellation_reason,
	created_at, updated_at`

type BookingRepository struct {
	q persistence.Executor
}

func NewBookingRepository(db *persistence.DB) *BookingRepository {
	return &BookingRepository{q: db.Pool}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id, student_id, mentor_id, slot_id,
			booked_start_time, booked_end_time, booked_fee_cents, booked_timezone,
			status, payment_status,
			checkout_session_id, payment_intent_id,
			cancelled_by, cancelled_at, cancellation_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	m := toBookingModel(booking)
	_, err := r.q.Exec(ctx, query,
		m.ID,
		m.StudentID,
		m.MentorID,
		m.SlotID,
		m.BookedStartTime,
		m.BookedEndTime,
		m.BookedFeeCents,
		m.BookedTimezone,
		m.Status,
		m.PaymentStatus,
		m.CheckoutSessionID,
		m.PaymentIntentID,
		m.CancelledBy,
		m.CancelledAt,
		m.CancellationReason,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// FindByID retrieves a booking without locking it.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	row := r.q.QueryRow(ctx, query, id)
	return scanBooking(row)
}

// FindByIDForUpdate retrieves a booking with a row-level lock. Must run
// inside a transaction; the lock is held until commit.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	row := r.q.QueryRow(ctx, query, id)
	return scanBooking(row)
}

// FindByCheckoutSessionID resolves a booking from the provider's
// checkout-session id. The column carries a unique index.
func (r *BookingRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE checkout_session_id = $1`

	row := r.q.QueryRow(ctx, query, sessionID)
	return scanBooking(row)
}

// HasActiveForSlot reports whether the slot already carries a live
// claim. Called under the slot's row lock, it closes the window where a
// second student could open a checkout for a slot that is still
// 'available' because the first payment hasn't confirmed yet.
func (r *BookingRepository) HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE slot_id = $1
			  AND status IN ('PENDING_PAYMENT', 'CONFIRMED')
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query active bookings for slot: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings WHERE student_id = $1
		ORDER BY booked_start_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query bookings by student_id: %w", err)
	}
	return collectBookings(rows)
}

func (r *BookingRepository) FindByMentorID(ctx context.Context, mentorID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings WHERE mentor_id = $1
		ORDER BY booked_start_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, mentorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query bookings by mentor_id: %w", err)
	}
	return collectBookings(rows)
}

// FindExpiredPending finds PENDING_PAYMENT bookings created before the
// cutoff, oldest first.
func (r *BookingRepository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status = 'PENDING_PAYMENT'
		  AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired pending bookings: %w", err)
	}
	return collectBookings(rows)
}

// FindOverdueConfirmed finds CONFIRMED bookings whose session window has
// already ended.
func (r *BookingRepository) FindOverdueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status = 'CONFIRMED'
		  AND booked_end_time < $1
		ORDER BY booked_end_time ASC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query overdue confirmed bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2,
			checkout_session_id = $3, payment_intent_id = $4,
			cancelled_by = $5, cancelled_at = $6, cancellation_reason = $7,
			updated_at = $8
		WHERE id = $9
	`

	m := toBookingModel(booking)
	result, err := r.q.Exec(ctx, query,
		m.Status,
		m.PaymentStatus,
		m.CheckoutSessionID,
		m.PaymentIntentID,
		m.CancelledBy,
		m.CancelledAt,
		m.CancellationReason,
		m.UpdatedAt,
		m.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var m BookingModel
	err := row.Scan(
		&m.ID, &m.StudentID, &m.MentorID, &m.SlotID,
		&m.BookedStartTime, &m.BookedEndTime, &m.BookedFeeCents, &m.BookedTimezone,
		&m.Status, &m.PaymentStatus,
		&m.CheckoutSessionID, &m.PaymentIntentID,
		&m.CancelledBy, &m.CancelledAt, &m.CancellationReason,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return toDomainBooking(m), nil
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Booking, error) {
		var m BookingModel
		err := row.Scan(
			&m.ID, &m.StudentID, &m.MentorID, &m.SlotID,
			&m.BookedStartTime, &m.BookedEndTime, &m.BookedFeeCents, &m.BookedTimezone,
			&m.Status, &m.PaymentStatus,
			&m.CheckoutSessionID, &m.PaymentIntentID,
			&m.CancelledBy, &m.CancelledAt, &m.CancellationReason,
			&m.CreatedAt, &m.UpdatedAt,
		)
		return toDomainBooking(m), err
	})

	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning rows: %w", err)
	}
	return results, nil
}
