package dto

import (
	"strings"
	"time"
	"voyage/internal/domains/appointment/model"
	"voyage/shared"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	gModel "voyage/shared/model"
	"voyage/shared/refcode"
	"voyage/shared/timezone"

	"github.com/google/uuid"
)

type CreateAppointmentRequest struct {
	CustomerName   string   `json:"customer_name"   validate:"required,max=100"`
	CustomerEmail  string   `json:"customer_email"  validate:"required,email,max=100"`
	CustomerPhone  *string  `json:"customer_phone"  validate:"omitempty,max=20"`
	TripID         *string  `json:"trip_id"         validate:"omitempty,max=64"`
	Destination    string   `json:"destination"     validate:"required,max=150"`
	EstimatedPrice *float64 `json:"estimated_price" validate:"omitempty,money"`
	Travelers      int      `json:"travelers"       validate:"omitempty,gte=1,lte=50"`
	Date           string   `json:"date"            validate:"required,datetime=2006-01-02"`
	Slot           string   `json:"slot"            validate:"required,slot"`
}

func (c *CreateAppointmentRequest) ToModel(customerID string, day time.Time) model.Appointment {
	now := timezone.Now()

	travelers := c.Travelers
	if travelers == 0 {
		travelers = 1
	}

	return model.Appointment{
		ID:             uuid.NewString(),
		ReferenceCode:  refcode.Appointment(now),
		CustomerID:     customerID,
		CustomerName:   strings.TrimSpace(c.CustomerName),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(c.CustomerEmail)),
		CustomerPhone:  c.CustomerPhone,
		TripID:         c.TripID,
		Destination:    strings.TrimSpace(c.Destination),
		EstimatedPrice: c.EstimatedPrice,
		Travelers:      travelers,
		SlotDate:       day,
		SlotLabel:      c.Slot,
		Status:         model.StatusScheduled,
		Metadata:       gModel.NewMetadata(now, customerID),
	}
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot string `json:"slot" validate:"required,slot"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CompleteConsultationRequest struct {
	Notes         string   `json:"notes"          validate:"required,max=4000"`
	InterestLevel int      `json:"interest_level" validate:"required,gte=1,lte=5"`
	QuotedPrice   *float64 `json:"quoted_price"   validate:"omitempty,gt=0,money"`
}

type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type AppointmentResponse struct {
	ID              string   `json:"id"`
	ReferenceCode   string   `json:"reference_code"`
	CustomerID      string   `json:"customer_id"`
	CustomerName    string   `json:"customer_name"`
	CustomerEmail   string   `json:"customer_email"`
	CustomerPhone   *string  `json:"customer_phone,omitempty"`
	TripID          *string  `json:"trip_id,omitempty"`
	Destination     string   `json:"destination"`
	EstimatedPrice  *float64 `json:"estimated_price,omitempty"`
	Travelers       int      `json:"travelers"`
	Date            string   `json:"date"`
	Slot            string   `json:"slot"`
	RescheduleCount int      `json:"reschedule_count"`
	Status          string   `json:"status"`
	CancelReason    *string  `json:"cancel_reason,omitempty"`
	AgentID         *string  `json:"agent_id,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	InterestLevel   *int     `json:"interest_level,omitempty"`
	QuotedPrice     *float64 `json:"quoted_price,omitempty"`
	QuoteValidUntil string   `json:"quote_valid_until,omitempty"`
	CompletedAt     string   `json:"completed_at,omitempty"`
	BookingID       *string  `json:"booking_id,omitempty"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(m model.Appointment) {
	r.ID = m.ID
	r.ReferenceCode = m.ReferenceCode
	r.CustomerID = m.CustomerID
	r.CustomerName = m.CustomerName
	r.CustomerEmail = m.CustomerEmail
	r.CustomerPhone = m.CustomerPhone
	r.TripID = m.TripID
	r.Destination = m.Destination
	r.EstimatedPrice = m.EstimatedPrice
	r.Travelers = m.Travelers
	r.Date = m.SlotDate.Format(constant.DayFormat)
	r.Slot = m.SlotLabel
	r.RescheduleCount = m.RescheduleCount
	r.Status = m.Status
	r.CancelReason = m.CancelReason
	r.AgentID = m.AgentID
	r.Notes = m.Notes
	r.InterestLevel = m.InterestLevel
	r.QuotedPrice = m.QuotedPrice
	r.BookingID = m.BookingID

	if m.QuoteValidUntil != nil {
		r.QuoteValidUntil = timezone.Format(*m.QuoteValidUntil, constant.DateFormat)
	}

	if m.CompletedAt != nil {
		r.CompletedAt = timezone.Format(*m.CompletedAt, constant.DateFormat)
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}
