package model

import (
	"time"
	"voyage/shared"
	"voyage/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                       = "id"
	FieldReferenceCode            = "reference_code"
	FieldKind                     = "kind"
	FieldAppointmentID            = "appointment_id"
	FieldCustomerID               = "customer_id"
	FieldFinalAmount              = "final_amount"
	FieldPaymentMethod            = "payment_method"
	FieldPaymentStatus            = "payment_status"
	FieldTotalPaid                = "total_paid"
	FieldTotalRefunded            = "total_refunded"
	FieldCreditAmount             = "credit_amount"
	FieldOverpaid                 = "overpaid"
	FieldRefundDue                = "refund_due"
	FieldAllowPartialConfirmation = "allow_partial_confirmation"
	FieldInstallments             = "installments"
	FieldStatus                   = "status"
	FieldApprovalStatus           = "approval_status"
	FieldCancelReason             = "cancel_reason"
	FieldRejectionReason          = "rejection_reason"
	FieldConfirmedAt              = "confirmed_at"
)

const (
	KindDirect      = "direct"
	KindAppointment = "appointment"
	KindCorporate   = "corporate"
)

type Contact struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type Traveler struct {
	Name     string  `json:"name"`
	Age      *int    `json:"age,omitempty"`
	Passport *string `json:"passport,omitempty"`
}

type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Booking is a priced trip reservation. Trip and customer fields are copied at
// creation so later edits to the originating appointment never leak in.
// total_paid never exceeds final_amount; any excess lives in credit_amount.
type Booking struct {
	ID                       string                    `db:"id"`
	ReferenceCode            string                    `db:"reference_code"`
	Kind                     string                    `db:"kind"`
	AppointmentID            *string                   `db:"appointment_id"`
	CustomerID               string                    `db:"customer_id"`
	Contact                  model.JSON[Contact]       `db:"contact"`
	Travelers                model.JSON[[]Traveler]    `db:"travelers"`
	TravelerCount            int                       `db:"traveler_count"`
	TripID                   *string                   `db:"trip_id"`
	Destination              string                    `db:"destination"`
	Customizations           *string                   `db:"customizations"`
	BasePrice                float64                   `db:"base_price"`
	PerPersonPrice           float64                   `db:"per_person_price"`
	AddOns                   model.JSON[[]AddOn]       `db:"add_ons"`
	Discount                 float64                   `db:"discount"`
	FinalAmount              float64                   `db:"final_amount"`
	Currency                 string                    `db:"currency"`
	PaymentMethod            *string                   `db:"payment_method"`
	PaymentStatus            string                    `db:"payment_status"`
	TotalPaid                float64                   `db:"total_paid"`
	TotalRefunded            float64                   `db:"total_refunded"`
	CreditAmount             float64                   `db:"credit_amount"`
	Overpaid                 bool                      `db:"overpaid"`
	RefundDue                bool                      `db:"refund_due"`
	AllowPartialConfirmation bool                      `db:"allow_partial_confirmation"`
	Installments             model.JSON[[]Installment] `db:"installments"`
	Status                   string                    `db:"status"`
	ApprovalStatus           *string                   `db:"approval_status"`
	CancelReason             *string                   `db:"cancel_reason"`
	RejectionReason          *string                   `db:"rejection_reason"`
	ConfirmedAt              *time.Time                `db:"confirmed_at"`
	model.Metadata
}

// Outstanding is what is still owed, never negative.
func (b Booking) Outstanding() float64 {
	return max(shared.RoundMoney(b.FinalAmount-b.TotalPaid), 0)
}

// Refundable is money received and not yet returned, credit included.
func (b Booking) Refundable() float64 {
	return max(shared.RoundMoney(b.TotalPaid+b.CreditAmount-b.TotalRefunded), 0)
}

// ApprovalGateOpen is false while a required approval is undecided or rejected.
func (b Booking) ApprovalGateOpen() bool {
	if b.ApprovalStatus == nil {
		return true
	}

	return *b.ApprovalStatus == ApprovalApproved || *b.ApprovalStatus == ApprovalAutoApproved
}

// Price computes base + perPerson*travelers + add-ons - discount, floored at zero.
func Price(base, perPerson float64, travelers int, addOns []AddOn, discount float64) float64 {
	total := base + perPerson*float64(travelers)
	for _, addOn := range addOns {
		total += addOn.Price
	}

	return max(shared.RoundMoney(total-discount), 0)
}
