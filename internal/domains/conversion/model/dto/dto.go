package dto

import (
	"strings"
	"time"
	appointmentModel "voyage/internal/domains/appointment/model"
	bookingModel "voyage/internal/domains/booking/model"
	bookingDto "voyage/internal/domains/booking/model/dto"
	"voyage/shared"
	gModel "voyage/shared/model"
	"voyage/shared/refcode"

	"github.com/google/uuid"
)

type ConvertAppointmentRequest struct {
	FinalPrice     *float64                     `json:"final_price"    validate:"omitempty,gt=0,money"`
	PaymentMethod  *string                      `json:"payment_method" validate:"omitempty,oneof=card bank_transfer cash e_wallet"`
	Customizations *string                      `json:"customizations" validate:"omitempty,max=4000"`
	Travelers      []bookingDto.TravelerRequest `json:"travelers"      validate:"omitempty,max=50,dive"`
}

// ToModel copies the trip and customer data out of the appointment so later
// edits to it never reach the booking. Without a traveler list the customer is
// recorded as lead traveler and the appointment's head count is kept.
func (c *ConvertAppointmentRequest) ToModel(appointment appointmentModel.Appointment, price float64, currency, actorID string, now time.Time) bookingModel.Booking {
	travelers := bookingDto.ToTravelers(c.Travelers)
	count := len(travelers)

	if count == 0 {
		travelers = []bookingModel.Traveler{{Name: appointment.CustomerName}}
		count = max(appointment.Travelers, 1)
	}

	status := bookingModel.StatusDraft
	if c.PaymentMethod != nil {
		status = bookingModel.StatusPendingPayment
	}

	appointmentID := appointment.ID
	price = shared.RoundMoney(price)

	return bookingModel.Booking{
		ID:            uuid.NewString(),
		ReferenceCode: refcode.Booking(now),
		Kind:          bookingModel.KindAppointment,
		AppointmentID: &appointmentID,
		CustomerID:    appointment.CustomerID,
		Contact: gModel.NewJSON(bookingModel.Contact{
			Name:  appointment.CustomerName,
			Email: strings.ToLower(appointment.CustomerEmail),
			Phone: appointment.CustomerPhone,
		}),
		Travelers:      gModel.NewJSON(travelers),
		TravelerCount:  count,
		TripID:         appointment.TripID,
		Destination:    appointment.Destination,
		Customizations: c.Customizations,
		BasePrice:      price,
		AddOns:         gModel.NewJSON([]bookingModel.AddOn{}),
		FinalAmount:    price,
		Currency:       currency,
		PaymentMethod:  c.PaymentMethod,
		PaymentStatus:  bookingModel.PaymentUnpaid,
		Installments:   gModel.NewJSON([]bookingModel.Installment{}),
		Status:         status,
		Metadata:       gModel.NewMetadata(now, actorID),
	}
}
