package dto

import (
	"strings"
	"time"
	"voyage/internal/domains/booking/model"
	"voyage/shared"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	gModel "voyage/shared/model"
	"voyage/shared/refcode"
	"voyage/shared/timezone"

	"github.com/google/uuid"
)

type ContactRequest struct {
	Name  string  `json:"name"  validate:"required,max=100"`
	Email string  `json:"email" validate:"required,email,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

func (c ContactRequest) ToModel() model.Contact {
	return model.Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: c.Phone,
	}
}

type TravelerRequest struct {
	Name     string  `json:"name"     validate:"required,max=100"`
	Age      *int    `json:"age"      validate:"omitempty,gte=0,lte=120"`
	Passport *string `json:"passport" validate:"omitempty,max=30"`
}

type AddOnRequest struct {
	Name  string  `json:"name"  validate:"required,max=100"`
	Price float64 `json:"price" validate:"money"`
}

func ToTravelers(reqs []TravelerRequest) []model.Traveler {
	travelers := make([]model.Traveler, len(reqs))
	for i, req := range reqs {
		travelers[i] = model.Traveler{Name: strings.TrimSpace(req.Name), Age: req.Age, Passport: req.Passport}
	}

	return travelers
}

func ToAddOns(reqs []AddOnRequest) []model.AddOn {
	addOns := make([]model.AddOn, len(reqs))
	for i, req := range reqs {
		addOns[i] = model.AddOn{Name: strings.TrimSpace(req.Name), Price: shared.RoundMoney(req.Price)}
	}

	return addOns
}

type CreateBookingRequest struct {
	Contact        ContactRequest    `json:"contact"          validate:"required"`
	Travelers      []TravelerRequest `json:"travelers"        validate:"required,min=1,max=50,dive"`
	TripID         *string           `json:"trip_id"          validate:"omitempty,max=64"`
	Destination    string            `json:"destination"      validate:"required,max=150"`
	Customizations *string           `json:"customizations"   validate:"omitempty,max=4000"`
	BasePrice      float64           `json:"base_price"       validate:"money"`
	PerPersonPrice float64           `json:"per_person_price" validate:"money"`
	AddOns         []AddOnRequest    `json:"add_ons"          validate:"omitempty,max=20,dive"`
	Discount       float64           `json:"discount"         validate:"money"`
	Currency       string            `json:"currency"         validate:"omitempty,len=3,uppercase"`
	PaymentMethod  *string           `json:"payment_method"   validate:"omitempty,oneof=card bank_transfer cash e_wallet"`
}

// ToModel builds a direct booking. It starts in pending_payment when a payment
// method is known and in draft otherwise.
func (c *CreateBookingRequest) ToModel(customerID, currency string) model.Booking {
	now := timezone.Now()

	if c.Currency != constant.Empty {
		currency = c.Currency
	}

	addOns := ToAddOns(c.AddOns)
	travelers := ToTravelers(c.Travelers)

	status := model.StatusDraft
	if c.PaymentMethod != nil {
		status = model.StatusPendingPayment
	}

	return model.Booking{
		ID:             uuid.NewString(),
		ReferenceCode:  refcode.Booking(now),
		Kind:           model.KindDirect,
		CustomerID:     customerID,
		Contact:        gModel.NewJSON(c.Contact.ToModel()),
		Travelers:      gModel.NewJSON(travelers),
		TravelerCount:  len(travelers),
		TripID:         c.TripID,
		Destination:    strings.TrimSpace(c.Destination),
		Customizations: c.Customizations,
		BasePrice:      shared.RoundMoney(c.BasePrice),
		PerPersonPrice: shared.RoundMoney(c.PerPersonPrice),
		AddOns:         gModel.NewJSON(addOns),
		Discount:       shared.RoundMoney(c.Discount),
		FinalAmount:    model.Price(c.BasePrice, c.PerPersonPrice, len(travelers), addOns, c.Discount),
		Currency:       currency,
		PaymentMethod:  c.PaymentMethod,
		PaymentStatus:  model.PaymentUnpaid,
		Installments:   gModel.NewJSON([]model.Installment{}),
		Status:         status,
		Metadata:       gModel.NewMetadata(now, customerID),
	}
}

type RecordPaymentRequest struct {
	Amount        float64 `json:"amount"         validate:"required,gt=0,money"`
	Method        string  `json:"method"         validate:"required,oneof=card bank_transfer cash e_wallet corporate_invoice"`
	TransactionID string  `json:"transaction_id" validate:"required,max=100"`
	Note          *string `json:"note"           validate:"omitempty,max=500"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type RefundRequest struct {
	Amount        float64 `json:"amount"         validate:"required,gt=0,money"`
	TransactionID string  `json:"transaction_id" validate:"required,max=100"`
	Reason        string  `json:"reason"         validate:"required,max=500"`
}

type InstallmentRequest struct {
	DueDate     string  `json:"due_date"    validate:"required,datetime=2006-01-02"`
	Amount      float64 `json:"amount"      validate:"required,gt=0,money"`
	Description string  `json:"description" validate:"required,max=200"`
}

type SetInstallmentsRequest struct {
	Installments []InstallmentRequest `json:"installments" validate:"required,min=1,max=24,dive"`
}

func (s *SetInstallmentsRequest) ToModel() []model.Installment {
	installments := make([]model.Installment, len(s.Installments))
	for i, req := range s.Installments {
		installments[i] = model.Installment{
			DueDate:     req.DueDate,
			Amount:      shared.RoundMoney(req.Amount),
			Description: strings.TrimSpace(req.Description),
			Status:      model.InstallmentPending,
		}
	}

	return installments
}

type BookingResponse struct {
	ID                       string              `json:"id"`
	ReferenceCode            string              `json:"reference_code"`
	Kind                     string              `json:"kind"`
	AppointmentID            *string             `json:"appointment_id,omitempty"`
	CustomerID               string              `json:"customer_id"`
	Contact                  model.Contact       `json:"contact"`
	Travelers                []model.Traveler    `json:"travelers"`
	TravelerCount            int                 `json:"traveler_count"`
	TripID                   *string             `json:"trip_id,omitempty"`
	Destination              string              `json:"destination"`
	Customizations           *string             `json:"customizations,omitempty"`
	BasePrice                float64             `json:"base_price"`
	PerPersonPrice           float64             `json:"per_person_price"`
	AddOns                   []model.AddOn       `json:"add_ons"`
	Discount                 float64             `json:"discount"`
	FinalAmount              float64             `json:"final_amount"`
	Currency                 string              `json:"currency"`
	PaymentMethod            *string             `json:"payment_method,omitempty"`
	PaymentStatus            string              `json:"payment_status"`
	TotalPaid                float64             `json:"total_paid"`
	TotalRefunded            float64             `json:"total_refunded"`
	Outstanding              float64             `json:"outstanding"`
	CreditAmount             float64             `json:"credit_amount"`
	Overpaid                 bool                `json:"overpaid"`
	RefundDue                bool                `json:"refund_due"`
	AllowPartialConfirmation bool                `json:"allow_partial_confirmation"`
	Installments             []model.Installment `json:"installments"`
	Status                   string              `json:"status"`
	ApprovalStatus           *string             `json:"approval_status,omitempty"`
	CancelReason             *string             `json:"cancel_reason,omitempty"`
	RejectionReason          *string             `json:"rejection_reason,omitempty"`
	ConfirmedAt              string              `json:"confirmed_at,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.ReferenceCode = m.ReferenceCode
	r.Kind = m.Kind
	r.AppointmentID = m.AppointmentID
	r.CustomerID = m.CustomerID
	r.Contact = m.Contact.Val
	r.Travelers = m.Travelers.Val
	r.TravelerCount = m.TravelerCount
	r.TripID = m.TripID
	r.Destination = m.Destination
	r.Customizations = m.Customizations
	r.BasePrice = m.BasePrice
	r.PerPersonPrice = m.PerPersonPrice
	r.AddOns = m.AddOns.Val
	r.Discount = m.Discount
	r.FinalAmount = m.FinalAmount
	r.Currency = m.Currency
	r.PaymentMethod = m.PaymentMethod
	r.PaymentStatus = m.PaymentStatus
	r.TotalPaid = m.TotalPaid
	r.TotalRefunded = m.TotalRefunded
	r.Outstanding = m.Outstanding()
	r.CreditAmount = m.CreditAmount
	r.Overpaid = m.Overpaid
	r.RefundDue = m.RefundDue
	r.AllowPartialConfirmation = m.AllowPartialConfirmation
	r.Installments = m.Installments.Val
	r.Status = m.Status
	r.ApprovalStatus = m.ApprovalStatus
	r.CancelReason = m.CancelReason
	r.RejectionReason = m.RejectionReason

	if m.ConfirmedAt != nil {
		r.ConfirmedAt = timezone.Format(*m.ConfirmedAt, constant.DateFormat)
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type TransactionResponse struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transaction_id"`
	EntryType     string  `json:"entry_type"`
	Amount        float64 `json:"amount"`
	AppliedAmount float64 `json:"applied_amount"`
	CreditAmount  float64 `json:"credit_amount"`
	Method        string  `json:"method"`
	Note          *string `json:"note,omitempty"`
	RecordedAt    string  `json:"recorded_at"`
	CreatedBy     string  `json:"created_by"`
}

func (r *TransactionResponse) FromModel(m model.Transaction) {
	r.ID = m.ID
	r.TransactionID = m.TransactionID
	r.EntryType = m.EntryType
	r.Amount = m.Amount
	r.AppliedAmount = m.AppliedAmount
	r.CreditAmount = m.CreditAmount
	r.Method = m.Method
	r.Note = m.Note
	r.RecordedAt = timezone.Format(m.RecordedAt, constant.DateFormat)
	r.CreatedBy = m.CreatedBy
}

type GetTransactionsResponse struct {
	BookingID    string                `json:"booking_id"`
	Transactions []TransactionResponse `json:"transactions"`
}

func (r *GetTransactionsResponse) FromModels(bookingID string, models []model.Transaction) {
	r.BookingID = bookingID

	r.Transactions = make([]TransactionResponse, len(models))
	for i, mod := range models {
		r.Transactions[i].FromModel(mod)
	}
}

// Statement is the document uploaded by ExportStatement.
type Statement struct {
	ReferenceCode string                `json:"reference_code"`
	Destination   string                `json:"destination"`
	Currency      string                `json:"currency"`
	FinalAmount   float64               `json:"final_amount"`
	TotalPaid     float64               `json:"total_paid"`
	TotalRefunded float64               `json:"total_refunded"`
	CreditAmount  float64               `json:"credit_amount"`
	Outstanding   float64               `json:"outstanding"`
	PaymentStatus string                `json:"payment_status"`
	Status        string                `json:"status"`
	Installments  []model.Installment   `json:"installments"`
	Transactions  []TransactionResponse `json:"transactions"`
	GeneratedAt   string                `json:"generated_at"`
}

func NewStatement(booking model.Booking, transactions []model.Transaction, now time.Time) Statement {
	var history GetTransactionsResponse
	history.FromModels(booking.ID, transactions)

	return Statement{
		ReferenceCode: booking.ReferenceCode,
		Destination:   booking.Destination,
		Currency:      booking.Currency,
		FinalAmount:   booking.FinalAmount,
		TotalPaid:     booking.TotalPaid,
		TotalRefunded: booking.TotalRefunded,
		CreditAmount:  booking.CreditAmount,
		Outstanding:   booking.Outstanding(),
		PaymentStatus: booking.PaymentStatus,
		Status:        booking.Status,
		Installments:  booking.Installments.Val,
		Transactions:  history.Transactions,
		GeneratedAt:   timezone.Format(now, constant.DateFormat),
	}
}

type StatementResponse struct {
	URL string `json:"url"`
}
