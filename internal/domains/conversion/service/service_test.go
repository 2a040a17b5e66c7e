package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
	"voyage/config"
	otelMocks "voyage/infras/otel/mocks"
	txMocks "voyage/infras/postgres/mocks"
	appointmentModel "voyage/internal/domains/appointment/model"
	bookingMocks "voyage/internal/domains/booking/mocks"
	bookingModel "voyage/internal/domains/booking/model"
	bookingRepository "voyage/internal/domains/booking/repository"
	"voyage/internal/domains/conversion/model/dto"
	"voyage/internal/domains/conversion/service"
	"voyage/shared"
	cacheMocks "voyage/shared/cache/mocks"
	"voyage/shared/constant"
	eventMocks "voyage/shared/events/mocks"
	"voyage/shared/failure"
	"voyage/shared/metrics"
	gMocks "voyage/shared/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	agentCtx    = shared.WithActor(context.Background(), shared.Actor{ID: "agent-1", Role: constant.RoleAgent})
	customerCtx = shared.WithActor(context.Background(), shared.Actor{ID: "cust-1", Role: constant.RoleCustomer})
	now         = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	appointments *gMocks.Memory[appointmentModel.Appointment]
	bookings     *bookingMocks.MemoryBookings
	svc          service.Conversion
}

func newFixture(t *testing.T, bookings bookingRepository.Booking, rows ...appointmentModel.Appointment) (*fixture, service.Conversion) {
	t.Helper()

	ctrl := gomock.NewController(t)

	publisher := eventMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Booking.DefaultCurrency = "USD"

	f := &fixture{
		appointments: gMocks.NewMemory(rows...),
		bookings:     bookingMocks.NewMemoryBookings(),
	}

	if bookings == nil {
		bookings = f.bookings
	}

	f.svc = service.NewWithClock(f.appointments, bookings, &txMocks.SerialTransactor{}, redisCache, publisher,
		metrics.NewNop(), cfg, otelMocks.NewOtel(), func() time.Time { return now })

	return f, f.svc
}

func completed(quote *float64, validUntil *time.Time) appointmentModel.Appointment {
	completedAt := now.Add(-24 * time.Hour)
	agent := "agent-1"

	return appointmentModel.Appointment{
		ID:              "apt-1",
		ReferenceCode:   "APT-LX1-AB12",
		CustomerID:      "cust-1",
		CustomerName:    "Ada",
		CustomerEmail:   "Ada@Example.com",
		Destination:     "Bali",
		Travelers:       2,
		SlotDate:        time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		SlotLabel:       appointmentModel.SlotCatalog[0],
		Status:          appointmentModel.StatusCompleted,
		AgentID:         &agent,
		QuotedPrice:     quote,
		QuoteValidUntil: validUntil,
		CompletedAt:     &completedAt,
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) appointment(t *testing.T) appointmentModel.Appointment {
	t.Helper()

	rows := f.appointments.Rows()
	require.Len(t, rows, 1)

	return rows[0]
}

func TestConversion_ConvertOnce(t *testing.T) {
	f, svc := newFixture(t, nil, completed(ptr(1200.0), ptr(now.Add(6*24*time.Hour))))

	req := dto.ConvertAppointmentRequest{FinalPrice: ptr(1200.0), PaymentMethod: ptr(bookingModel.MethodCard)}

	res, err := svc.Convert(agentCtx, "apt-1", req)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, res.FinalAmount, 0.001)
	assert.Equal(t, bookingModel.StatusPendingPayment, res.Status)
	assert.Equal(t, bookingModel.KindAppointment, res.Kind)
	assert.Equal(t, "cust-1", res.CustomerID)
	assert.Equal(t, "ada@example.com", res.Contact.Email)
	assert.Equal(t, 2, res.TravelerCount)
	assert.Equal(t, "Bali", res.Destination)
	require.NotNil(t, res.AppointmentID)
	assert.Equal(t, "apt-1", *res.AppointmentID)

	stored := f.appointment(t)
	assert.Equal(t, appointmentModel.StatusConverted, stored.Status)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, res.ID, *stored.BookingID)

	_, err = svc.Convert(agentCtx, "apt-1", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrDuplicateConversion))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, res.ID, failure.GetDetails(err)["booking_id"])
	assert.Len(t, f.bookings.Rows(), 1)
}

func TestConversion_Convert(t *testing.T) {
	tests := []struct {
		name        string
		ctx         context.Context
		appointment appointmentModel.Appointment
		req         dto.ConvertAppointmentRequest
		wantErr     error
		wantCode    int
		wantAmount  float64
		wantStatus  string
	}{
		{
			name:        "valid quote used without final price",
			ctx:         agentCtx,
			appointment: completed(ptr(950.5), ptr(now.Add(time.Hour))),
			wantAmount:  950.5,
			wantStatus:  bookingModel.StatusDraft,
		},
		{
			name:        "final price overrides stale quote",
			ctx:         agentCtx,
			appointment: completed(ptr(950.5), ptr(now.Add(-time.Hour))),
			req:         dto.ConvertAppointmentRequest{FinalPrice: ptr(1100.004), PaymentMethod: ptr(bookingModel.MethodBankTransfer)},
			wantAmount:  1100,
			wantStatus:  bookingModel.StatusPendingPayment,
		},
		{
			name:        "stale quote",
			ctx:         agentCtx,
			appointment: completed(ptr(950.5), ptr(now.Add(-time.Hour))),
			wantErr:     failure.ErrQuoteExpired,
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "no quote",
			ctx:         agentCtx,
			appointment: completed(nil, nil),
			wantErr:     failure.ErrQuoteExpired,
			wantCode:    http.StatusBadRequest,
		},
		{
			name: "not completed",
			ctx:  agentCtx,
			appointment: func() appointmentModel.Appointment {
				a := completed(ptr(950.5), ptr(now.Add(time.Hour)))
				a.Status = appointmentModel.StatusConfirmed

				return a
			}(),
			wantErr:  failure.ErrInvalidStateTransition,
			wantCode: http.StatusConflict,
		},
		{
			name:        "customers cannot convert",
			ctx:         customerCtx,
			appointment: completed(ptr(950.5), ptr(now.Add(time.Hour))),
			wantCode:    http.StatusForbidden,
		},
		{
			name: "unknown appointment",
			ctx:  agentCtx,
			appointment: func() appointmentModel.Appointment {
				a := completed(nil, nil)
				a.ID = "apt-9"

				return a
			}(),
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newFixture(t, nil, tt.appointment)

			res, err := svc.Convert(tt.ctx, "apt-1", tt.req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.True(t, errors.Is(err, tt.wantErr))
				}

				assert.Empty(t, f.bookings.Rows())
				assert.Equal(t, tt.appointment.Status, f.appointment(t).Status)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.wantAmount, res.FinalAmount, 0.001)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, appointmentModel.StatusConverted, f.appointment(t).Status)
		})
	}
}

func TestConversion_ReconcilesOrphanedBooking(t *testing.T) {
	f, svc := newFixture(t, nil, completed(ptr(1200.0), ptr(now.Add(time.Hour))))

	appointmentID := "apt-1"
	orphan := bookingModel.Booking{ID: "bk-orphan", Kind: bookingModel.KindAppointment, AppointmentID: &appointmentID, CustomerID: "cust-1", FinalAmount: 1200, Status: bookingModel.StatusDraft}
	require.NoError(t, f.bookings.InsertTx(context.Background(), nil, orphan))

	_, err := svc.Convert(agentCtx, "apt-1", dto.ConvertAppointmentRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrDuplicateConversion))
	assert.Equal(t, "bk-orphan", failure.GetDetails(err)["booking_id"])

	stored := f.appointment(t)
	assert.Equal(t, appointmentModel.StatusConverted, stored.Status)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, "bk-orphan", *stored.BookingID)
	assert.Len(t, f.bookings.Rows(), 1)
}

func TestConversion_ConcurrentAtMostOnce(t *testing.T) {
	f, svc := newFixture(t, nil, completed(ptr(1200.0), ptr(now.Add(time.Hour))))

	const callers = 16

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		converted  []string
		duplicates int
	)

	for range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := svc.Convert(agentCtx, "apt-1", dto.ConvertAppointmentRequest{PaymentMethod: ptr(bookingModel.MethodCard)})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				converted = append(converted, res.ID)
			case errors.Is(err, failure.ErrDuplicateConversion):
				duplicates++
			}
		}()
	}

	wg.Wait()

	require.Len(t, converted, 1)
	assert.Equal(t, callers-1, duplicates)

	rows := f.bookings.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, converted[0], rows[0].ID)
	assert.Equal(t, converted[0], *f.appointment(t).BookingID)
}

func TestConversion_InsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	bookings := bookingMocks.NewMockBooking(ctrl)
	bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)
	bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))

	f, svc := newFixture(t, bookings, completed(ptr(1200.0), ptr(now.Add(time.Hour))))

	_, err := svc.Convert(agentCtx, "apt-1", dto.ConvertAppointmentRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.Equal(t, appointmentModel.StatusCompleted, f.appointment(t).Status)
}
