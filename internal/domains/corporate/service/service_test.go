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
	bookingMocks "voyage/internal/domains/booking/mocks"
	bookingModel "voyage/internal/domains/booking/model"
	bookingDto "voyage/internal/domains/booking/model/dto"
	corporateMocks "voyage/internal/domains/corporate/mocks"
	"voyage/internal/domains/corporate/model"
	"voyage/internal/domains/corporate/model/dto"
	"voyage/internal/domains/corporate/service"
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

var corporateNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

var (
	requesterCtx = shared.WithActor(context.Background(), shared.Actor{ID: "user-req", Role: constant.RoleCorporate, CompanyID: "co-1"})
	managerCtx   = shared.WithActor(context.Background(), shared.Actor{ID: "user-mgr", Role: constant.RoleCorporate, CompanyID: "co-1"})
	leadCtx      = shared.WithActor(context.Background(), shared.Actor{ID: "user-lead", Role: constant.RoleCorporate, CompanyID: "co-1"})
	outsiderCtx  = shared.WithActor(context.Background(), shared.Actor{ID: "user-out", Role: constant.RoleCorporate, CompanyID: "co-1"})
	corpAdminCtx = shared.WithActor(context.Background(), shared.Actor{ID: "user-admin", Role: constant.RoleCorporateAdmin, CompanyID: "co-1"})
	otherCoCtx   = shared.WithActor(context.Background(), shared.Actor{ID: "user-x", Role: constant.RoleCorporate, CompanyID: "co-2"})
	staffCtx     = shared.WithActor(context.Background(), shared.Actor{ID: "agent-1", Role: constant.RoleAgent})
)

type corporateFixture struct {
	corporates *gMocks.Memory[model.CorporateBooking]
	rates      *gMocks.Memory[model.Rate]
	budgets    *corporateMocks.MemoryBudgets
	bookings   *bookingMocks.MemoryBookings
	svc        service.Corporate
}

func newCorporateFixture(t *testing.T, budgets ...model.Budget) *corporateFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &corporateFixture{
		corporates: gMocks.NewMemory[model.CorporateBooking](),
		rates:      gMocks.NewMemory[model.Rate](),
		budgets:    corporateMocks.NewMemoryBudgets(budgets...),
		bookings:   bookingMocks.NewMemoryBookings(),
	}

	publisher := eventMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Booking.DefaultCurrency = "USD"

	companies := gMocks.NewMemory(
		model.Company{ID: "co-1", Name: "Acme", ApprovalRequired: true, Active: true},
		model.Company{ID: "co-2", Name: "Globex", Active: true},
	)

	employees := gMocks.NewMemory(
		model.Employee{ID: "emp-req", CompanyID: "co-1", UserID: "user-req", Department: "engineering", ApprovalLimit: 1000, Active: true},
		model.Employee{ID: "emp-mgr", CompanyID: "co-1", UserID: "user-mgr", Department: "engineering", ApprovalLimit: 10000, CanApprove: true, Active: true},
		model.Employee{ID: "emp-lead", CompanyID: "co-1", UserID: "user-lead", Department: "engineering", ApprovalLimit: 500, CanApprove: true, Active: true},
		model.Employee{ID: "emp-x", CompanyID: "co-2", UserID: "user-out", Department: "sales", ApprovalLimit: 10000, CanApprove: true, Active: true},
		model.Employee{ID: "emp-y", CompanyID: "co-2", UserID: "user-x", Department: "sales", Active: true},
		model.Employee{ID: "emp-gone", CompanyID: "co-1", UserID: "user-gone", Department: "engineering", ApprovalLimit: 10000, Active: false},
	)

	f.svc = service.NewWithClock(
		f.corporates, companies, employees, f.rates, f.budgets, f.bookings,
		&txMocks.SerialTransactor{}, redisCache, publisher, metrics.NewNop(), cfg, otelMocks.NewOtel(),
		func() time.Time { return corporateNow },
	)

	return f
}

func engineeringBudget(allocated, spent float64) model.Budget {
	return model.Budget{ID: "bud-1", CompanyID: "co-1", Department: "engineering", FiscalYear: 2024, Allocated: allocated, Spent: spent}
}

func (f *corporateFixture) spent(t *testing.T) float64 {
	t.Helper()

	rows := f.budgets.Rows()
	require.Len(t, rows, 1)

	return rows[0].Spent
}

func request(unitPrice float64) dto.CreateCorporateBookingRequest {
	return dto.CreateCorporateBookingRequest{
		Category: model.CategoryFlight,
		Details: dto.DetailsRequest{
			Destination: "Singapore",
			StartDate:   "2024-07-01",
			EndDate:     "2024-07-05",
			UnitPrice:   unitPrice,
		},
		Contact:   bookingDto.ContactRequest{Name: "Ada", Email: "Ada@Acme.com"},
		Travelers: []bookingDto.TravelerRequest{{Name: "Ada"}},
	}
}

func TestCorporate_Create_BudgetExceededWritesNothing(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 7000))

	_, err := f.svc.Create(requesterCtx, request(5000))

	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrBudgetExceeded))
	assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	assert.InDelta(t, 3000, failure.GetDetails(err)["remaining"], 0.001)
	assert.InDelta(t, 7000, f.spent(t), 0.001)
	assert.Empty(t, f.bookings.Rows())
	assert.Empty(t, f.corporates.Rows())
}

func TestCorporate_Create_WithinLimitIsAutoApproved(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 7000))

	res, err := f.svc.Create(requesterCtx, request(800))

	require.NoError(t, err)
	assert.False(t, res.RequiresApproval)
	assert.Equal(t, bookingModel.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, bookingModel.ApprovalAutoApproved, *res.Booking.ApprovalStatus)
	assert.Equal(t, bookingModel.KindCorporate, res.Booking.Kind)
	assert.Regexp(t, `^CORP-[0-9A-Z]+-[0-9A-Z]{6}$`, res.Booking.ReferenceCode)
	assert.True(t, res.Booking.AllowPartialConfirmation)
	assert.Equal(t, "ada@acme.com", res.Booking.Contact.Email)
	assert.InDelta(t, 800, res.Booking.FinalAmount, 0.001)
	assert.InDelta(t, 7800, f.spent(t), 0.001)

	require.NotNil(t, res.Corporate.Budget)
	assert.InDelta(t, 7000, res.Corporate.Budget.SpentBefore, 0.001)
	assert.InDelta(t, 7800, res.Corporate.Budget.SpentAfter, 0.001)
	assert.InDelta(t, 1000, res.Corporate.Approval.LimitConsulted, 0.001)
	assert.Equal(t, "engineering", res.Corporate.Department)
}

func TestCorporate_Create_AboveLimitWaitsForApproval(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 0))

	res, err := f.svc.Create(requesterCtx, request(1500))

	require.NoError(t, err)
	assert.True(t, res.RequiresApproval)
	assert.Equal(t, bookingModel.StatusPendingApproval, res.Booking.Status)
	assert.Equal(t, bookingModel.ApprovalPending, res.Corporate.Approval.Status)
	assert.Empty(t, res.Booking.ConfirmedAt)
	assert.InDelta(t, 1500, f.spent(t), 0.001)
}

func TestCorporate_Create_PolicyWithoutApproval(t *testing.T) {
	f := newCorporateFixture(t)

	res, err := f.svc.Create(otherCoCtx, request(5000))

	require.NoError(t, err)
	assert.False(t, res.RequiresApproval)
	assert.Equal(t, bookingModel.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, "sales", res.Corporate.Department)
}

func TestCorporate_Create_InactiveRequester(t *testing.T) {
	f := newCorporateFixture(t)

	req := request(100)
	req.RequesterUserID = "user-gone"

	_, err := f.svc.Create(corpAdminCtx, req)

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	assert.Empty(t, f.bookings.Rows())
}

func TestCorporate_Create_NoBudgetIsUnconstrained(t *testing.T) {
	f := newCorporateFixture(t)

	res, err := f.svc.Create(requesterCtx, request(900))

	require.NoError(t, err)
	assert.Nil(t, res.Corporate.Budget)
	assert.Equal(t, bookingModel.StatusConfirmed, res.Booking.Status)
}

func TestCorporate_Create_AppliesNegotiatedRate(t *testing.T) {
	f := newCorporateFixture(t)

	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-old", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 5,
		ValidFrom: corporateNow.AddDate(-1, 0, 0), ValidUntil: corporateNow.AddDate(1, 0, 0), Active: true,
	}))
	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-new", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 10,
		ValidFrom: corporateNow.AddDate(0, -1, 0), ValidUntil: corporateNow.AddDate(0, 1, 0), Active: true,
	}))
	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-expired", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 50,
		ValidFrom: corporateNow.AddDate(-2, 0, 0), ValidUntil: corporateNow.AddDate(0, 0, -1), Active: true,
	}))

	res, err := f.svc.PriceCorporate(requesterCtx, dto.PriceRequest{
		Category:      model.CategoryFlight,
		Details:       request(1000).Details,
		TravelerCount: 2,
	})

	require.NoError(t, err)
	require.NotNil(t, res.RateID)
	assert.Equal(t, "rate-new", *res.RateID)
	assert.InDelta(t, 2000, res.BaseAmount, 0.001)
	assert.InDelta(t, 200, res.DiscountAmount, 0.001)
	assert.InDelta(t, 1800, res.Total, 0.001)
}

func TestCorporate_Price_RateWindowUsesCurrentTime(t *testing.T) {
	f := newCorporateFixture(t)

	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-current", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 10,
		ValidFrom: corporateNow.AddDate(0, -1, 0), ValidUntil: corporateNow.AddDate(0, 1, 0), Active: true,
	}))
	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-this-morning", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 20,
		ValidFrom: corporateNow.Add(-time.Hour), ValidUntil: corporateNow.AddDate(0, 1, 0), Active: true,
	}))
	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-this-afternoon", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 40,
		ValidFrom: corporateNow.Add(2 * time.Hour), ValidUntil: corporateNow.AddDate(0, 1, 0), Active: true,
	}))
	require.NoError(t, f.rates.Insert(context.Background(), model.Rate{
		ID: "rate-ended-this-morning", CompanyID: "co-1", Category: model.CategoryFlight, DiscountType: model.DiscountPercentage, DiscountValue: 30,
		ValidFrom: corporateNow.AddDate(0, 0, -7).Add(4 * time.Hour), ValidUntil: corporateNow.Add(-time.Hour), Active: true,
	}))

	res, err := f.svc.PriceCorporate(requesterCtx, dto.PriceRequest{
		Category:      model.CategoryFlight,
		Details:       request(1000).Details,
		TravelerCount: 1,
	})

	require.NoError(t, err)
	require.NotNil(t, res.RateID)
	assert.Equal(t, "rate-this-morning", *res.RateID)
	assert.InDelta(t, 200, res.DiscountAmount, 0.001)
}

func TestCorporate_Create_Override(t *testing.T) {
	t.Run("corporate admin may exceed the budget", func(t *testing.T) {
		f := newCorporateFixture(t, engineeringBudget(10000, 7000))

		req := request(5000)
		req.RequesterUserID = "user-req"
		req.OverrideBudget = true

		res, err := f.svc.Create(corpAdminCtx, req)

		require.NoError(t, err)
		require.NotNil(t, res.Corporate.Budget)
		assert.True(t, res.Corporate.Budget.Override)
		assert.InDelta(t, 12000, f.spent(t), 0.001)
	})

	t.Run("override from an employee is ignored", func(t *testing.T) {
		f := newCorporateFixture(t, engineeringBudget(10000, 7000))

		req := request(5000)
		req.OverrideBudget = true

		_, err := f.svc.Create(requesterCtx, req)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
		assert.InDelta(t, 7000, f.spent(t), 0.001)
	})
}

func TestCorporate_Create_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		mutate func(*dto.CreateCorporateBookingRequest)
		code   int
	}{
		{
			name:   "other company",
			ctx:    requesterCtx,
			mutate: func(r *dto.CreateCorporateBookingRequest) { r.CompanyID = "co-2" },
			code:   http.StatusForbidden,
		},
		{
			name:   "booking for someone else",
			ctx:    requesterCtx,
			mutate: func(r *dto.CreateCorporateBookingRequest) { r.RequesterUserID = "user-mgr" },
			code:   http.StatusForbidden,
		},
		{
			name:   "staff without company",
			ctx:    staffCtx,
			mutate: func(*dto.CreateCorporateBookingRequest) {},
			code:   http.StatusBadRequest,
		},
		{
			name:   "unknown company",
			ctx:    staffCtx,
			mutate: func(r *dto.CreateCorporateBookingRequest) { r.CompanyID = "co-9"; r.RequesterUserID = "user-req" },
			code:   http.StatusNotFound,
		},
		{
			name:   "end before start",
			ctx:    requesterCtx,
			mutate: func(r *dto.CreateCorporateBookingRequest) { r.Details.EndDate = "2024-06-20" },
			code:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCorporateFixture(t, engineeringBudget(10000, 0))

			req := request(100)
			tt.mutate(&req)

			_, err := f.svc.Create(tt.ctx, req)

			require.Error(t, err)
			assert.Equal(t, tt.code, failure.GetCode(err))
			assert.InDelta(t, 0, f.spent(t), 0.001)
		})
	}
}

func TestCorporate_Create_ConcurrentNeverOverspends(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 0))

	const callers = 30

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	for range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := f.svc.Create(requesterCtx, request(500)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 20, accepted)
	assert.InDelta(t, 10000, f.spent(t), 0.001)
	assert.Len(t, f.bookings.Rows(), 20)
}

func TestCorporate_DecideApproval_Approve(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 0))

	created, err := f.svc.Create(requesterCtx, request(1500))
	require.NoError(t, err)

	res, err := f.svc.DecideApproval(managerCtx, created.Booking.ID, dto.DecisionRequest{Decision: model.DecisionApprove})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, bookingModel.ApprovalApproved, res.Corporate.Approval.Status)
	assert.Equal(t, "user-mgr", *res.Corporate.Approval.ApproverID)
	assert.InDelta(t, 10000, res.Corporate.Approval.LimitConsulted, 0.001)
	assert.NotEmpty(t, res.Booking.ConfirmedAt)
	assert.InDelta(t, 1500, f.spent(t), 0.001)

	_, err = f.svc.DecideApproval(managerCtx, created.Booking.ID, dto.DecisionRequest{Decision: model.DecisionReject, Notes: ptr("late")})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestCorporate_DecideApproval_RejectRestoresBudget(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 2000))

	created, err := f.svc.Create(requesterCtx, request(1500))
	require.NoError(t, err)
	assert.InDelta(t, 3500, f.spent(t), 0.001)

	res, err := f.svc.DecideApproval(managerCtx, created.Booking.ID, dto.DecisionRequest{Decision: model.DecisionReject, Notes: ptr("over policy")})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusRejected, res.Booking.Status)
	assert.Equal(t, "over policy", *res.Booking.RejectionReason)
	assert.True(t, res.Corporate.Budget.Restored)
	assert.InDelta(t, 2000, f.spent(t), 0.001)

	stored := f.bookings.Rows()[0]
	assert.Equal(t, bookingModel.StatusRejected, stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
}

func TestCorporate_DecideApproval_Rejections(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		req  dto.DecisionRequest
		code int
	}{
		{name: "limit below total", ctx: leadCtx, req: dto.DecisionRequest{Decision: model.DecisionApprove}, code: http.StatusForbidden},
		{name: "not an approver", ctx: requesterCtx, req: dto.DecisionRequest{Decision: model.DecisionApprove}, code: http.StatusForbidden},
		{name: "approver of another company", ctx: outsiderCtx, req: dto.DecisionRequest{Decision: model.DecisionApprove}, code: http.StatusForbidden},
		{name: "invisible to other company", ctx: otherCoCtx, req: dto.DecisionRequest{Decision: model.DecisionApprove}, code: http.StatusNotFound},
		{name: "reject without notes", ctx: managerCtx, req: dto.DecisionRequest{Decision: model.DecisionReject, Notes: ptr("  ")}, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCorporateFixture(t, engineeringBudget(10000, 0))

			created, err := f.svc.Create(requesterCtx, request(1500))
			require.NoError(t, err)

			_, err = f.svc.DecideApproval(tt.ctx, created.Booking.ID, tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.code, failure.GetCode(err))

			stored := f.bookings.Rows()[0]
			assert.Equal(t, bookingModel.StatusPendingApproval, stored.Status)
		})
	}
}

func TestCorporate_DecideApproval_AutoApprovedIsFinal(t *testing.T) {
	f := newCorporateFixture(t)

	created, err := f.svc.Create(requesterCtx, request(800))
	require.NoError(t, err)

	_, err = f.svc.DecideApproval(managerCtx, created.Booking.ID, dto.DecisionRequest{Decision: model.DecisionApprove})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestCorporate_Cancel(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 0))

	created, err := f.svc.Create(requesterCtx, request(800))
	require.NoError(t, err)
	assert.InDelta(t, 800, f.spent(t), 0.001)

	res, err := f.svc.Cancel(requesterCtx, created.Booking.ID, dto.CancelCorporateBookingRequest{Reason: "trip moved"})

	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCancelled, res.Booking.Status)
	assert.True(t, res.Corporate.Budget.Restored)
	assert.InDelta(t, 0, f.spent(t), 0.001)

	_, err = f.svc.Cancel(requesterCtx, created.Booking.ID, dto.CancelCorporateBookingRequest{Reason: "again"})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.InDelta(t, 0, f.spent(t), 0.001)
}

func TestCorporate_Cancel_Rejections(t *testing.T) {
	t.Run("paid booking", func(t *testing.T) {
		f := newCorporateFixture(t, engineeringBudget(10000, 0))

		created, err := f.svc.Create(requesterCtx, request(800))
		require.NoError(t, err)

		f.bookings.Modify(shared.FilterByID(created.Booking.ID, bookingModel.FieldID, bookingModel.TableName), func(b *bookingModel.Booking) bool {
			b.TotalPaid = 100

			return true
		})

		_, err = f.svc.Cancel(requesterCtx, created.Booking.ID, dto.CancelCorporateBookingRequest{Reason: "trip moved"})

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.InDelta(t, 800, f.spent(t), 0.001)
	})

	t.Run("colleague", func(t *testing.T) {
		f := newCorporateFixture(t, engineeringBudget(10000, 0))

		created, err := f.svc.Create(requesterCtx, request(800))
		require.NoError(t, err)

		_, err = f.svc.Cancel(managerCtx, created.Booking.ID, dto.CancelCorporateBookingRequest{Reason: "trip moved"})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("missing reason", func(t *testing.T) {
		f := newCorporateFixture(t)

		_, err := f.svc.Cancel(requesterCtx, "bk-1", dto.CancelCorporateBookingRequest{Reason: " "})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestCorporate_CheckBudget(t *testing.T) {
	f := newCorporateFixture(t, engineeringBudget(10000, 7000))

	res, err := f.svc.CheckBudget(requesterCtx, constant.Empty, "engineering", 5000)

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.False(t, res.Unconstrained)
	assert.InDelta(t, 3000, res.Remaining, 0.001)

	res, err = f.svc.CheckBudget(requesterCtx, constant.Empty, "engineering", 3000)

	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = f.svc.CheckBudget(requesterCtx, constant.Empty, "marketing", 1e6)

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Unconstrained)

	_, err = f.svc.CheckBudget(requesterCtx, "co-2", "engineering", 1)

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))

	_, err = f.svc.CheckBudget(staffCtx, "co-1", "engineering", -1)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestCorporate_Get(t *testing.T) {
	f := newCorporateFixture(t)

	created, err := f.svc.Create(requesterCtx, request(800))
	require.NoError(t, err)

	res, err := f.svc.Get(managerCtx, created.Booking.ID)

	require.NoError(t, err)
	assert.Equal(t, created.Corporate.ID, res.ID)
	assert.Equal(t, "Singapore", res.Details.Destination)

	_, err = f.svc.Get(otherCoCtx, created.Booking.ID)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func ptr[T any](v T) *T {
	return &v
}
