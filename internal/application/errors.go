package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is the orchestration-level error: it carries the HTTP
// status the REST layer should answer with, so every failure mode in the
// taxonomy maps to exactly one response shape.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeSlotUnavailable         = "SLOT_UNAVAILABLE"
	ErrCodeSelfBookingForbidden    = "SELF_BOOKING_FORBIDDEN"
	ErrCodePayoutNotConfigured     = "MENTOR_PAYOUT_NOT_CONFIGURED"
	ErrCodeConfiguration           = "CONFIGURATION_ERROR"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInvalidState            = "INVALID_STATE"
	ErrCodeSessionEnded            = "SESSION_ALREADY_ENDED"
	ErrCodeSlotOverlap             = "SLOT_OVERLAP"
	ErrCodeGateway                 = "GATEWAY_ERROR"
	ErrCodeRefundNotPossible       = "REFUND_NOT_POSSIBLE"
	ErrCodeInternal                = "INTERNAL_ERROR"
	ErrCodeWebhookSignatureInvalid = "WEBHOOK_SIGNATURE_INVALID"
)

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewSlotUnavailableError covers both a missing slot and one that is no
// longer available: the client is told the same thing either way.
func NewSlotUnavailableError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSlotUnavailable,
		Message:    "selected slot is not available or does not exist",
		HTTPStatus: http.StatusNotFound,
	}
}

func NewSelfBookingForbiddenError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSelfBookingForbidden,
		Message:    "mentors cannot book their own slots",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewPayoutNotConfiguredError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodePayoutNotConfigured,
		Message:    "mentor has no payout account configured",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewConfigurationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeConfiguration,
		Message:    "platform fee configuration is invalid",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotFoundError(what string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", what),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewForbiddenError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeForbidden,
		Message:    "you do not have permission to access this booking",
		HTTPStatus: http.StatusForbidden,
	}
}

func NewInvalidStateError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidState,
		Message:    "booking is not in a cancellable state",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewSessionEndedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSessionEnded,
		Message:    "session has already ended",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewSlotOverlapError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSlotOverlap,
		Message:    "slot overlaps an existing slot for this mentor",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewGatewayError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGateway,
		Message:    "payment provider request failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewRefundNotPossibleError flags a paid booking with no stored
// payment-intent id. That is a data-integrity gap, not a user mistake,
// so it is fatal to the operation rather than silently skipped.
func NewRefundNotPossibleError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRefundNotPossible,
		Message:    "refund requested but no payment intent is recorded",
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// ToHTTPStatus resolves the response status for any error reaching the
// REST layer. Unrecognized errors are internal by definition.
func ToHTTPStatus(err error) int {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ToErrorCode resolves the machine-readable code for any error reaching
// the REST layer.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}
	return ErrCodeInternal
}
