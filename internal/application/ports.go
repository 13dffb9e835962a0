// Package application defines the ports the booking services depend on
// and the orchestration-level error taxonomy.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/domain"
)

// BookingRepository is the persistence port for bookings. The ForUpdate
// variants take a row-level exclusive lock and must be called inside a
// transaction opened by the TransactionCoordinator.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Booking, error)
	HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	FindByStudentID(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*domain.Booking, error)
	FindByMentorID(ctx context.Context, mentorID uuid.UUID, limit, offset int) ([]*domain.Booking, error)
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
	FindOverdueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// SlotRepository is the slot ledger's persistence port. FindByIDForUpdate
// is the acquire step of the locking protocol: every status branch reads
// the row it is about to mutate only after taking the lock.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	FindByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error)
	FindAvailableByMentorID(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error)
	HasOverlap(ctx context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error)
	Update(ctx context.Context, slot *domain.Slot) error
}

// UserRepository exposes the account fields this service reads. User
// writes belong to the accounts system, not here.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Repositories bundles the transaction-scoped repository set handed to
// the unit-of-work callback.
type Repositories struct {
	Bookings BookingRepository
	Slots    SlotRepository
	Users    UserRepository
}

// TransactionCoordinator runs fn inside a single database transaction.
// All repositories passed to fn are bound to that transaction: row locks
// taken through them are held until fn returns and the transaction
// commits, and every mutation inside fn is applied atomically or not at
// all. Returning an error rolls everything back.
type TransactionCoordinator interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// CheckoutSessionRequest describes the checkout to open for a booking.
// AmountCents is the full booking fee; ApplicationFeeCents stays with the
// platform and the remainder is transferred to DestinationAccount.
type CheckoutSessionRequest struct {
	AmountCents         int64
	Currency            string
	ProductName         string
	ProductDescription  string
	CustomerEmail       string
	DestinationAccount  string
	ApplicationFeeCents int64
	SuccessURL          string
	CancelURL           string
	ClientReferenceID   string
	Metadata            map[string]string
}

// CheckoutSession is the provider's ephemeral payment object correlated
// to a booking by id and metadata.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// RefundRequest asks the provider to return funds on a payment intent.
type RefundRequest struct {
	PaymentIntentID string
	AmountCents     int64
	Reason          string
	Metadata        map[string]string
}

// Refund is the provider's record of an issued refund.
type Refund struct {
	ID     string
	Status string
}

// PaymentGateway is the port for the external payment provider. Both
// calls have bounded timeouts; failures surface to the caller so the
// enclosing transaction can roll back or record the failure.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
}
