package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
// Reason is a stable machine-readable kind; Details carries structured context a
// caller can act on, such as the remaining budget.
type Failure struct {
	Code    int            `json:"code"`
	Reason  string         `json:"reason,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	ReasonSlotUnavailable        = "slot_unavailable"
	ReasonInvalidStateTransition = "invalid_state_transition"
	ReasonBudgetExceeded         = "budget_exceeded"
	ReasonDuplicateConversion    = "duplicate_conversion"
	ReasonPaymentOverpay         = "payment_overpay"
	ReasonQuoteExpired           = "quote_expired"
)

// Kinds for errors.Is matching; they compare by Reason only.
var (
	ErrSlotUnavailable        = &Failure{Code: http.StatusConflict, Reason: ReasonSlotUnavailable, Message: "slot unavailable"}
	ErrInvalidStateTransition = &Failure{Code: http.StatusConflict, Reason: ReasonInvalidStateTransition, Message: "invalid state transition"}
	ErrBudgetExceeded         = &Failure{Code: http.StatusUnprocessableEntity, Reason: ReasonBudgetExceeded, Message: "budget exceeded"}
	ErrDuplicateConversion    = &Failure{Code: http.StatusConflict, Reason: ReasonDuplicateConversion, Message: "appointment already converted"}
	ErrPaymentOverpay         = &Failure{Code: http.StatusUnprocessableEntity, Reason: ReasonPaymentOverpay, Message: "payment exceeds outstanding balance"}
	ErrQuoteExpired           = &Failure{Code: http.StatusBadRequest, Reason: ReasonQuoteExpired, Message: "quote expired"}
)

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// Is matches another Failure carrying the same Reason.
func (e *Failure) Is(target error) bool {
	var other *Failure
	if !errors.As(target, &other) || other.Reason == "" {
		return false
	}

	return e.Reason == other.Reason
}

func (e *Failure) with(message string, details map[string]any) *Failure {
	return &Failure{Code: e.Code, Reason: e.Reason, Message: message, Details: details}
}

func SlotUnavailable(date, slot string) error {
	return ErrSlotUnavailable.with(
		fmt.Sprintf("slot %s on %s is no longer available", slot, date),
		map[string]any{"date": date, "slot": slot},
	)
}

// InvalidStateTransition names the entity, its current state and the requested operation.
func InvalidStateTransition(entity, current, requested string) error {
	return ErrInvalidStateTransition.with(
		fmt.Sprintf("cannot %s %s in status %s", requested, entity, current),
		map[string]any{"current": current, "requested": requested},
	)
}

func BudgetExceeded(remaining float64) error {
	return ErrBudgetExceeded.with(
		fmt.Sprintf("department budget exceeded, remaining %.2f", remaining),
		map[string]any{"remaining": remaining},
	)
}

// DuplicateConversion carries the booking that already owns the appointment.
func DuplicateConversion(bookingID string, booking any) error {
	return ErrDuplicateConversion.with(
		ErrDuplicateConversion.Message,
		map[string]any{"booking_id": bookingID, "booking": booking},
	)
}

func PaymentOverpay(outstanding float64) error {
	return ErrPaymentOverpay.with(
		fmt.Sprintf("payment exceeds outstanding balance %.2f", outstanding),
		map[string]any{"outstanding": outstanding},
	)
}

func QuoteExpired() error {
	return ErrQuoteExpired.with(
		"quote expired or missing, final price is required",
		nil,
	)
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// ConflictWithDetails is Conflict plus structured details.
func ConflictWithDetails(message string, details map[string]any) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
		Details: details,
	}
}

// Unprocessable reports a well-formed request that a business rule rejected.
func Unprocessable(message string, details map[string]any) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Details: details,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetReason returns the machine-readable kind of a Failure, if any.
func GetReason(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Reason
	}

	return ""
}

// GetDetails returns the structured details of a Failure, if any.
func GetDetails(err error) map[string]any {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Details
	}

	return nil
}
