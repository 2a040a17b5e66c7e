package model

import (
	"time"
	"voyage/shared/model"
)

const (
	TableName  = "corporate_bookings"
	EntityName = "corporate booking"

	FieldBookingID      = "booking_id"
	FieldApprovalStatus = "approval_status"
	FieldApproverID     = "approver_id"
	FieldApprovalNotes  = "approval_notes"
	FieldLimitConsulted = "approval_limit_consulted"
	FieldDecidedAt      = "decided_at"
	FieldBudgetRestored = "budget_restored"
)

const (
	CategoryFlight    = "flight"
	CategoryHotel     = "hotel"
	CategoryPackage   = "package"
	CategoryTransport = "transport"
	CategoryActivity  = "activity"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Details is the trip being booked, kept as submitted.
type Details struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	UnitPrice   float64 `json:"unit_price"`
	Purpose     *string `json:"purpose,omitempty"`
}

// CorporateBooking holds the corporate side of a booking of kind corporate:
// pricing, the approval sub-record and the budget sub-record. Budget columns
// are nil when the department had no budget.
type CorporateBooking struct {
	ID               string              `db:"id"`
	BookingID        string              `db:"booking_id"`
	CompanyID        string              `db:"company_id"`
	RequesterID      string              `db:"requester_id"`
	RequesterUserID  string              `db:"requester_user_id"`
	Department       string              `db:"department"`
	CostCenter       *string             `db:"cost_center"`
	Category         string              `db:"category"`
	Details          model.JSON[Details] `db:"details"`
	TravelerCount    int                 `db:"traveler_count"`
	RateID           *string             `db:"rate_id"`
	BaseAmount       float64             `db:"base_amount"`
	DiscountAmount   float64             `db:"discount_amount"`
	Subtotal         float64             `db:"subtotal"`
	TaxAmount        float64             `db:"tax_amount"`
	ServiceFee       float64             `db:"service_fee"`
	Total            float64             `db:"total"`
	ApprovalRequired bool                `db:"approval_required"`
	ApprovalStatus   string              `db:"approval_status"`
	ApproverID       *string             `db:"approver_id"`
	LimitConsulted   float64             `db:"approval_limit_consulted"`
	ApprovalNotes    *string             `db:"approval_notes"`
	DecidedAt        *time.Time          `db:"decided_at"`
	BudgetID         *string             `db:"budget_id"`
	BudgetAllocated  *float64            `db:"budget_allocated"`
	SpentBefore      *float64            `db:"spent_before"`
	SpentAfter       *float64            `db:"spent_after"`
	BudgetOverride   bool                `db:"budget_override"`
	BudgetRestored   bool                `db:"budget_restored"`
	model.Metadata
}

// Deducted is the amount taken from the department budget and not yet given back.
func (c CorporateBooking) Deducted() float64 {
	if c.BudgetID == nil || c.BudgetRestored {
		return 0
	}

	return c.Total
}
