package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "voyage/infras/otel/mocks"
	txMocks "voyage/infras/postgres/mocks"
	appointmentMocks "voyage/internal/domains/appointment/mocks"
	"voyage/internal/domains/appointment/model"
	"voyage/internal/domains/appointment/model/dto"
	"voyage/internal/domains/appointment/service"
	"voyage/shared"
	cacheMocks "voyage/shared/cache/mocks"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	eventMocks "voyage/shared/events/mocks"
	"voyage/shared/failure"
	"voyage/shared/metrics"
)

var (
	customerCtx = shared.WithActor(context.Background(), shared.Actor{ID: "cust-1", Role: constant.RoleCustomer})
	strangerCtx = shared.WithActor(context.Background(), shared.Actor{ID: "cust-2", Role: constant.RoleCustomer})
	agentCtx    = shared.WithActor(context.Background(), shared.Actor{ID: "agent-1", Role: constant.RoleAgent})
)

type fixture struct {
	repo      *appointmentMocks.MockAppointment
	scheduler *appointmentMocks.MockScheduler
	cache     *cacheMocks.MockRedisCache
	svc       service.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      appointmentMocks.NewMockAppointment(ctrl),
		scheduler: appointmentMocks.NewMockScheduler(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	tx := txMocks.NewMockTransactor(ctrl)
	tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) }).
		AnyTimes()

	publisher := eventMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := newSchedulerConfig()
	cfg.Booking.QuoteValidityDays = 7

	f.svc = service.NewWithClock(f.repo, f.scheduler, tx, f.cache, publisher, metrics.NewNop(), cfg, otelMocks.NewOtel(), fixedClock("2024-05-30T09:00:00Z"))

	return f
}

func appointmentIn(status string) model.Appointment {
	return model.Appointment{
		ID:            "apt-1",
		ReferenceCode: "APT-LX1-AB12",
		CustomerID:    "cust-1",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Destination:   "Bali",
		Travelers:     2,
		SlotDate:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		SlotLabel:     model.SlotCatalog[1],
		Status:        status,
	}
}

func TestAppointmentService_AvailableSlots(t *testing.T) {
	f := newFixture(t)

	f.scheduler.EXPECT().AvailableSlots(gomock.Any(), gomock.Any()).Return(model.SlotCatalog, nil)

	res, err := f.svc.AvailableSlots(customerCtx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", res.Date)
	assert.Len(t, res.Slots, 6)

	_, err = f.svc.AvailableSlots(customerCtx, "06/01/2024")
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestAppointmentService_Create(t *testing.T) {
	req := dto.CreateAppointmentRequest{
		CustomerName:  "Ada",
		CustomerEmail: "Ada@Example.com",
		Destination:   "Bali",
		Date:          "2024-06-01",
		Slot:          model.SlotCatalog[1],
	}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantKind  error
		wantErr   bool
	}{
		{
			name: "reserved",
			setupMock: func(f *fixture) {
				gomock.InOrder(
					f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), model.SlotCatalog[1], gomock.Any()).Return(nil),
					f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
					f.scheduler.EXPECT().Invalidate(gomock.Any(), gomock.Any()),
				)
			},
		},
		{
			name: "slot taken",
			setupMock: func(f *fixture) {
				f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(failure.SlotUnavailable("2024-06-01", model.SlotCatalog[1]))
			},
			wantKind: failure.ErrSlotUnavailable,
			wantErr:  true,
		},
		{
			name: "live slot index conflict",
			setupMock: func(f *fixture) {
				f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to insert data (appointment): %w", &pq.Error{Code: "23505"}))
			},
			wantKind: failure.ErrSlotUnavailable,
			wantErr:  true,
		},
		{
			name: "insert fails",
			setupMock: func(f *fixture) {
				f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(customerCtx, req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantKind != nil {
					assert.ErrorIs(t, err, tt.wantKind)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusScheduled, res.Status)
			assert.Equal(t, "cust-1", res.CustomerID)
			assert.Equal(t, "ada@example.com", res.CustomerEmail)
			assert.Equal(t, "2024-06-01", res.Date)
			assert.Regexp(t, `^APT-[0-9A-Z]+-[0-9A-Z]{4}$`, res.ReferenceCode)
		})
	}
}

func TestAppointmentService_Get(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "owner reads through cache miss",
			ctx:  customerCtx,
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "appointment:apt-1", gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
				f.cache.EXPECT().Save(gomock.Any(), "appointment:apt-1", gomock.Any(), 3600).Return(nil)
			},
		},
		{
			name: "agent reads from cache",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "appointment:apt-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						value.(*dto.AppointmentResponse).FromModel(appointmentIn(model.StatusScheduled))

						return nil
					})
			},
		},
		{
			name: "other customer sees not found",
			ctx:  strangerCtx,
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
				f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "missing",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(tt.ctx, "apt-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "apt-1", res.ID)
		})
	}
}

func TestAppointmentService_GetMine(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, "cust-1", args[model.FieldCustomerID])

			return 1, nil
		})
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Appointment{appointmentIn(model.StatusScheduled)}, nil)
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.GetMine(customerCtx, gDto.QueryParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Appointments, 1)
}

func TestAppointmentService_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantKind  error
		wantCode  int
	}{
		{
			name: "agent confirms",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
				f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (int64, error) {
						_, args := filter.GetWhereClause()
						assert.Equal(t, model.StatusScheduled, args["current_status"])
						assert.Equal(t, model.StatusConfirmed, mod[model.FieldStatus])
						assert.Equal(t, "agent-1", mod[model.FieldAgentID])

						return 1, nil
					})
			},
		},
		{
			name: "customer may not confirm",
			ctx:  customerCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "cancelled cannot be confirmed",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusCancelled), nil)
			},
			wantKind: failure.ErrInvalidStateTransition,
			wantCode: http.StatusConflict,
		},
		{
			name: "lost compare-and-set",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
				f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantKind: failure.ErrInvalidStateTransition,
			wantCode: http.StatusConflict,
		},
		{
			name: "missing",
			ctx:  agentCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Confirm(tt.ctx, "apt-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantKind != nil {
					assert.ErrorIs(t, err, tt.wantKind)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, res.Status)
		})
	}
}

func TestAppointmentService_Reschedule(t *testing.T) {
	req := dto.RescheduleAppointmentRequest{Date: "2024-06-03", Slot: model.SlotCatalog[4]}

	t.Run("new slot is claimed before the old one is released", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusConfirmed), nil)
		gomock.InOrder(
			f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), model.SlotCatalog[4], "apt-1").Return(nil),
			f.scheduler.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any(), model.SlotCatalog[1], "apt-1").Return(nil),
			f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ gDto.FilterGroup) (int64, error) {
					assert.Equal(t, model.StatusScheduled, mod[model.FieldStatus])
					assert.Equal(t, 1, mod[model.FieldRescheduleCount])
					assert.Equal(t, model.SlotCatalog[4], mod[model.FieldSlotLabel])

					return 1, nil
				}),
			f.scheduler.EXPECT().Invalidate(gomock.Any(), gomock.Any(), gomock.Any()),
		)

		res, err := f.svc.Reschedule(customerCtx, "apt-1", req)
		require.NoError(t, err)
		assert.Equal(t, model.StatusScheduled, res.Status)
		assert.Equal(t, "2024-06-03", res.Date)
		assert.Equal(t, 1, res.RescheduleCount)
	})

	t.Run("conflict keeps the old slot", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)
		f.scheduler.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(failure.SlotUnavailable("2024-06-03", model.SlotCatalog[4]))

		_, err := f.svc.Reschedule(customerCtx, "apt-1", req)
		assert.ErrorIs(t, err, failure.ErrSlotUnavailable)
	})

	t.Run("same slot", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)

		_, err := f.svc.Reschedule(customerCtx, "apt-1", dto.RescheduleAppointmentRequest{Date: "2024-06-01", Slot: model.SlotCatalog[1]})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("completed cannot be rescheduled", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusCompleted), nil)

		_, err := f.svc.Reschedule(customerCtx, "apt-1", req)
		assert.ErrorIs(t, err, failure.ErrInvalidStateTransition)
		assert.Contains(t, err.Error(), "cannot reschedule appointment in status completed")
	})

	t.Run("stranger cannot reschedule", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)

		_, err := f.svc.Reschedule(strangerCtx, "apt-1", req)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	t.Run("releases slot and stores reason", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusConfirmed), nil)
		f.scheduler.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any(), model.SlotCatalog[1], "apt-1").Return(nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.scheduler.EXPECT().Invalidate(gomock.Any(), gomock.Any())

		res, err := f.svc.Cancel(customerCtx, "apt-1", dto.CancelAppointmentRequest{Reason: " travel plans changed "})
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.Status)
		require.NotNil(t, res.CancelReason)
		assert.Equal(t, "travel plans changed", *res.CancelReason)
	})

	t.Run("terminal", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusCancelled), nil)

		_, err := f.svc.Cancel(customerCtx, "apt-1", dto.CancelAppointmentRequest{Reason: "again"})
		assert.ErrorIs(t, err, failure.ErrInvalidStateTransition)
	})
}

func TestAppointmentService_Complete(t *testing.T) {
	f := newFixture(t)
	price := 1200.0

	f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusConfirmed), nil)
	f.scheduler.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "apt-1").Return(nil)
	f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, model.StatusCompleted, mod[model.FieldStatus])
			assert.Equal(t, 1200.0, mod[model.FieldQuotedPrice])
			assert.Equal(t, 4, mod[model.FieldInterestLevel])

			return 1, nil
		})
	f.scheduler.EXPECT().Invalidate(gomock.Any(), gomock.Any())

	res, err := f.svc.Complete(agentCtx, "apt-1", dto.CompleteConsultationRequest{Notes: "wants villas", InterestLevel: 4, QuotedPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.Equal(t, "2024-06-06T09:00:00Z", res.QuoteValidUntil)
	require.NotNil(t, res.AgentID)
	assert.Equal(t, "agent-1", *res.AgentID)

	f2 := newFixture(t)
	f2.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusScheduled), nil)

	_, err = f2.svc.Complete(agentCtx, "apt-1", dto.CompleteConsultationRequest{Notes: "n", InterestLevel: 3})
	assert.ErrorIs(t, err, failure.ErrInvalidStateTransition)
}

func TestAppointmentService_MarkNoShow(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusConfirmed), nil)
	f.scheduler.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "apt-1").Return(nil)
	f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
	f.scheduler.EXPECT().Invalidate(gomock.Any(), gomock.Any())

	res, err := f.svc.MarkNoShow(agentCtx, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoShow, res.Status)

	f2 := newFixture(t)
	f2.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(appointmentIn(model.StatusConfirmed), nil)

	_, err = f2.svc.MarkNoShow(customerCtx, "apt-1")
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}
