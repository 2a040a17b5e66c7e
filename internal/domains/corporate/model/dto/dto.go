package dto

import (
	"time"
	bookingDto "voyage/internal/domains/booking/model/dto"
	"voyage/internal/domains/corporate/model"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/timezone"
)

type DetailsRequest struct {
	Destination string  `json:"destination" validate:"required,max=150"`
	StartDate   string  `json:"start_date"  validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date"    validate:"required,datetime=2006-01-02"`
	UnitPrice   float64 `json:"unit_price"  validate:"required,gt=0,money"`
	Purpose     *string `json:"purpose"     validate:"omitempty,max=500"`
}

func (d DetailsRequest) ToModel() model.Details {
	return model.Details{
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		UnitPrice:   d.UnitPrice,
		Purpose:     d.Purpose,
	}
}

type PriceRequest struct {
	CompanyID     string         `json:"company_id"     validate:"omitempty,max=64"`
	Category      string         `json:"category"       validate:"required,oneof=flight hotel package transport activity"`
	Details       DetailsRequest `json:"details"        validate:"required"`
	TravelerCount int            `json:"traveler_count" validate:"required,min=1,max=50"`
}

type PricingResponse struct {
	RateID         *string `json:"rate_id,omitempty"`
	DiscountType   *string `json:"discount_type,omitempty"`
	DiscountValue  float64 `json:"discount_value"`
	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	Subtotal       float64 `json:"subtotal"`
	TaxPercent     float64 `json:"tax_percent"`
	TaxAmount      float64 `json:"tax_amount"`
	ServiceFee     float64 `json:"service_fee"`
	Total          float64 `json:"total"`
	Currency       string  `json:"currency"`
}

func (r *PricingResponse) FromModel(m model.Pricing, currency string) {
	r.RateID = m.RateID
	r.DiscountType = m.DiscountType
	r.DiscountValue = m.DiscountValue
	r.BaseAmount = m.BaseAmount
	r.DiscountAmount = m.DiscountAmount
	r.Subtotal = m.Subtotal
	r.TaxPercent = m.TaxPercent
	r.TaxAmount = m.TaxAmount
	r.ServiceFee = m.ServiceFee
	r.Total = m.Total
	r.Currency = currency
}

type BudgetCheckResponse struct {
	CompanyID     string  `json:"company_id"`
	Department    string  `json:"department"`
	Amount        float64 `json:"amount"`
	Allowed       bool    `json:"allowed"`
	Unconstrained bool    `json:"unconstrained"`
	Allocated     float64 `json:"allocated"`
	Spent         float64 `json:"spent"`
	Remaining     float64 `json:"remaining"`
}

type CreateCorporateBookingRequest struct {
	CompanyID       string                       `json:"company_id"        validate:"omitempty,max=64"`
	RequesterUserID string                       `json:"requester_user_id" validate:"omitempty,max=64"`
	Department      string                       `json:"department"        validate:"omitempty,max=100"`
	CostCenter      *string                      `json:"cost_center"       validate:"omitempty,max=100"`
	Category        string                       `json:"category"          validate:"required,oneof=flight hotel package transport activity"`
	Details         DetailsRequest               `json:"details"           validate:"required"`
	Contact         bookingDto.ContactRequest    `json:"contact"           validate:"required"`
	Travelers       []bookingDto.TravelerRequest `json:"travelers"         validate:"required,min=1,max=50,dive"`
	OverrideBudget  bool                         `json:"override_budget"`
}

type DecisionRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"`
	Notes    *string `json:"notes"    validate:"omitempty,max=1000"`
}

type CancelCorporateBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ApprovalResponse struct {
	Required       bool    `json:"required"`
	Status         string  `json:"status"`
	ApproverID     *string `json:"approver_id,omitempty"`
	LimitConsulted float64 `json:"limit_consulted"`
	Notes          *string `json:"notes,omitempty"`
	DecidedAt      string  `json:"decided_at,omitempty"`
}

type BudgetResponse struct {
	BudgetID    string  `json:"budget_id"`
	Allocated   float64 `json:"allocated"`
	SpentBefore float64 `json:"spent_before"`
	SpentAfter  float64 `json:"spent_after"`
	Override    bool    `json:"override"`
	Restored    bool    `json:"restored"`
}

type CorporateBookingResponse struct {
	ID              string           `json:"id"`
	BookingID       string           `json:"booking_id"`
	CompanyID       string           `json:"company_id"`
	RequesterUserID string           `json:"requester_user_id"`
	Department      string           `json:"department"`
	CostCenter      *string          `json:"cost_center,omitempty"`
	Category        string           `json:"category"`
	Details         model.Details    `json:"details"`
	TravelerCount   int              `json:"traveler_count"`
	Pricing         PricingResponse  `json:"pricing"`
	Approval        ApprovalResponse `json:"approval"`
	Budget          *BudgetResponse  `json:"budget,omitempty"`
	gDto.Metadata
}

func (r *CorporateBookingResponse) FromModel(m model.CorporateBooking, currency string) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.CompanyID = m.CompanyID
	r.RequesterUserID = m.RequesterUserID
	r.Department = m.Department
	r.CostCenter = m.CostCenter
	r.Category = m.Category
	r.Details = m.Details.Val
	r.TravelerCount = m.TravelerCount
	r.Pricing = PricingResponse{
		RateID:         m.RateID,
		BaseAmount:     m.BaseAmount,
		DiscountAmount: m.DiscountAmount,
		Subtotal:       m.Subtotal,
		TaxAmount:      m.TaxAmount,
		ServiceFee:     m.ServiceFee,
		Total:          m.Total,
		Currency:       currency,
	}
	r.Approval = ApprovalResponse{
		Required:       m.ApprovalRequired,
		Status:         m.ApprovalStatus,
		ApproverID:     m.ApproverID,
		LimitConsulted: m.LimitConsulted,
		Notes:          m.ApprovalNotes,
	}

	if m.DecidedAt != nil {
		r.Approval.DecidedAt = timezone.Format(*m.DecidedAt, constant.DateFormat)
	}

	if m.BudgetID != nil {
		r.Budget = &BudgetResponse{
			BudgetID:    *m.BudgetID,
			Allocated:   deref(m.BudgetAllocated),
			SpentBefore: deref(m.SpentBefore),
			SpentAfter:  deref(m.SpentAfter),
			Override:    m.BudgetOverride,
			Restored:    m.BudgetRestored,
		}
	}

	r.Metadata.FromModel(m.Metadata)
}

type CreateCorporateBookingResponse struct {
	Booking          bookingDto.BookingResponse `json:"booking"`
	Corporate        CorporateBookingResponse   `json:"corporate"`
	RequiresApproval bool                       `json:"requires_approval"`
}

type DecisionResponse struct {
	Booking   bookingDto.BookingResponse `json:"booking"`
	Corporate CorporateBookingResponse   `json:"corporate"`
}

// FiscalYear is the budget year a booking made at now is charged to.
func FiscalYear(now time.Time) int {
	return now.Year()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}
