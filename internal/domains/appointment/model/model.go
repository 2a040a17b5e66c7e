package model

import (
	"time"
	"voyage/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID              = "id"
	FieldReferenceCode   = "reference_code"
	FieldCustomerID      = "customer_id"
	FieldAgentID         = "agent_id"
	FieldSlotDate        = "slot_date"
	FieldSlotLabel       = "slot_label"
	FieldRescheduleCount = "reschedule_count"
	FieldStatus          = "status"
	FieldCancelReason    = "cancel_reason"
	FieldNotes           = "notes"
	FieldInterestLevel   = "interest_level"
	FieldQuotedPrice     = "quoted_price"
	FieldQuoteValidUntil = "quote_valid_until"
	FieldCompletedAt     = "completed_at"
	FieldBookingID       = "booking_id"
)

// Appointment is a consultation between a customer and an agent about a trip.
// Nullable columns are pointers: nil means the value was never provided.
type Appointment struct {
	ID              string     `db:"id"`
	ReferenceCode   string     `db:"reference_code"`
	CustomerID      string     `db:"customer_id"`
	CustomerName    string     `db:"customer_name"`
	CustomerEmail   string     `db:"customer_email"`
	CustomerPhone   *string    `db:"customer_phone"`
	TripID          *string    `db:"trip_id"`
	Destination     string     `db:"destination"`
	EstimatedPrice  *float64   `db:"estimated_price"`
	Travelers       int        `db:"travelers"`
	SlotDate        time.Time  `db:"slot_date"`
	SlotLabel       string     `db:"slot_label"`
	RescheduleCount int        `db:"reschedule_count"`
	Status          string     `db:"status"`
	CancelReason    *string    `db:"cancel_reason"`
	AgentID         *string    `db:"agent_id"`
	Notes           *string    `db:"notes"`
	InterestLevel   *int       `db:"interest_level"`
	QuotedPrice     *float64   `db:"quoted_price"`
	QuoteValidUntil *time.Time `db:"quote_valid_until"`
	CompletedAt     *time.Time `db:"completed_at"`
	BookingID       *string    `db:"booking_id"`
	model.Metadata
}

// QuoteUsable reports whether a quoted price exists and is still valid at now.
func (a Appointment) QuoteUsable(now time.Time) bool {
	if a.QuotedPrice == nil || a.QuoteValidUntil == nil {
		return false
	}

	return !now.After(*a.QuoteValidUntil)
}
