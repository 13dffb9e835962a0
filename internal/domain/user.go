package domain

import "github.com/google/uuid"

// Role distinguishes the two booking participants.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// User is the slice of the account model this service needs: identity,
// role, the email attached to checkout sessions, and the payment
// provider's connected-account id mentors receive payouts on.
// Registration and profile management live elsewhere.
type User struct {
	ID              uuid.UUID
	Email           string
	Role            Role
	PayoutAccountID string
}

// HasPayoutAccount reports whether the mentor can receive split payouts.
func (u *User) HasPayoutAccount() bool {
	return u.PayoutAccountID != ""
}
