package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/infrastructure/persistence"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads the accounts table. This service never writes
// users; the accounts system owns that table. It is only handed out
// transaction-bound by the coordinator, since every user read happens
// inside a booking flow.
type UserRepository struct {
	q persistence.Executor
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, role, payout_account_id
		FROM users WHERE id = $1
	`

	var m UserModel
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Email, &m.Role, &m.PayoutAccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return toDomainUser(m), nil
}
