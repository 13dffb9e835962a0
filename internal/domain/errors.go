package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a business rule violation.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidSlotWindow    = "INVALID_SLOT_WINDOW"
	ErrCodeFeeMisconfigured     = "FEE_MISCONFIGURED"
	ErrCodeSessionEnded         = "SESSION_ALREADY_ENDED"
	ErrCodeNotParticipant       = "NOT_PARTICIPANT"
)

var (
	// ErrSessionAlreadyEnded rejects cancellations after booked_end_time.
	ErrSessionAlreadyEnded = &DomainError{
		Code:    ErrCodeSessionEnded,
		Message: "session has already ended",
	}

	// ErrNotParticipant rejects actions by users who are neither the
	// booking's student nor its mentor.
	ErrNotParticipant = &DomainError{
		Code:    ErrCodeNotParticipant,
		Message: "user is not a participant of this booking",
	}
)

func NewInvalidTransitionError(from, to BookingStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidStateError(current, expected string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("invalid state: booking is %s, expected %s", current, expected),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
	}
}

func NewInvalidSlotWindowError(start, end time.Time) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSlotWindow,
		Message: fmt.Sprintf("slot end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
	}
}

func NewSlotInPastError(start time.Time) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSlotWindow,
		Message: fmt.Sprintf("slot start %s is in the past", start.Format(time.RFC3339)),
	}
}

func NewFeeMisconfiguredError(rate float64) *DomainError {
	return &DomainError{
		Code:    ErrCodeFeeMisconfigured,
		Message: fmt.Sprintf("platform fee rate %.4f leaves no mentor payout", rate),
	}
}

// IsDomainError reports whether err is (or wraps) a DomainError.
func IsDomainError(err error) (*DomainError, bool) {
	var domErr *DomainError
	ok := errors.As(err, &domErr)
	return domErr, ok
}
