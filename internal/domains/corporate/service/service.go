package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	bookingModel "voyage/internal/domains/booking/model"
	bookingDto "voyage/internal/domains/booking/model/dto"
	bookingRepository "voyage/internal/domains/booking/repository"
	bookingService "voyage/internal/domains/booking/service"
	"voyage/internal/domains/corporate/model"
	"voyage/internal/domains/corporate/model/dto"
	"voyage/internal/domains/corporate/repository"
	"voyage/shared"
	"voyage/shared/cache"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/events"
	"voyage/shared/failure"
	"voyage/shared/metrics"
	gModel "voyage/shared/model"
	"voyage/shared/refcode"
	"voyage/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Clock is the time source for pricing windows, fiscal years and decisions.
type Clock func() time.Time

// Corporate prices, books and approves travel for company employees against
// department budgets.
type Corporate interface {
	PriceCorporate(ctx context.Context, req dto.PriceRequest) (dto.PricingResponse, error)
	CheckBudget(ctx context.Context, companyID, department string, amount float64) (dto.BudgetCheckResponse, error)
	Create(ctx context.Context, req dto.CreateCorporateBookingRequest) (dto.CreateCorporateBookingResponse, error)
	DecideApproval(ctx context.Context, bookingID string, req dto.DecisionRequest) (dto.DecisionResponse, error)
	Cancel(ctx context.Context, bookingID string, req dto.CancelCorporateBookingRequest) (dto.DecisionResponse, error)
	Get(ctx context.Context, bookingID string) (dto.CorporateBookingResponse, error)
}

type serviceImpl struct {
	corporates repository.CorporateBooking
	companies  repository.Company
	employees  repository.Employee
	rates      repository.Rate
	budgets    repository.Budget
	bookings   bookingRepository.Booking
	tx         postgres.Transactor
	cache      cache.RedisCache
	publisher  events.Publisher
	metrics    *metrics.Metrics
	cfg        *config.Config
	otel       otel.Otel
	now        Clock
}

func New(
	corporates repository.CorporateBooking,
	companies repository.Company,
	employees repository.Employee,
	rates repository.Rate,
	budgets repository.Budget,
	bookings bookingRepository.Booking,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Corporate {
	return NewWithClock(corporates, companies, employees, rates, budgets, bookings, tx, redisCache, publisher, m, cfg, otel, timezone.Now)
}

func NewWithClock(
	corporates repository.CorporateBooking,
	companies repository.Company,
	employees repository.Employee,
	rates repository.Rate,
	budgets repository.Budget,
	bookings bookingRepository.Booking,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
	now Clock,
) Corporate {
	return &serviceImpl{
		corporates: corporates,
		companies:  companies,
		employees:  employees,
		rates:      rates,
		budgets:    budgets,
		bookings:   bookings,
		tx:         tx,
		cache:      redisCache,
		publisher:  publisher,
		metrics:    m,
		cfg:        cfg,
		otel:       otel,
		now:        now,
	}
}

// companyFor resolves the company an operation runs against. Staff name it,
// everyone else is pinned to the company on their token.
func companyFor(actor shared.Actor, requested string) (string, error) {
	if actor.IsStaff() {
		if requested == constant.Empty {
			return constant.Empty, failure.BadRequestFromString("company_id is required") // nolint:wrapcheck
		}

		return requested, nil
	}

	if actor.CompanyID == constant.Empty || (requested != constant.Empty && requested != actor.CompanyID) {
		return constant.Empty, failure.ResourceRestrictedError
	}

	return actor.CompanyID, nil
}

func (s *serviceImpl) PriceCorporate(ctx context.Context, req dto.PriceRequest) (res dto.PricingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.PriceCorporate")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	companyID, err := companyFor(shared.ActorFromContext(ctx), req.CompanyID)
	if err != nil {
		return res, err
	}

	if err := validateDates(req.Details); err != nil {
		return res, err
	}

	pricing, err := s.price(ctx, companyID, req.Category, req.Details.UnitPrice, req.TravelerCount)
	if err != nil {
		return res, err
	}

	res.FromModel(pricing, s.cfg.Booking.DefaultCurrency)

	return res, nil
}

// price applies the newest active rate whose validity window covers now.
func (s *serviceImpl) price(ctx context.Context, companyID, category string, unitPrice float64, travelers int) (model.Pricing, error) {
	now := s.now()

	rates, err := s.rates.GetAll(ctx, gDto.QueryParams{
		Page:    1,
		Limit:   1,
		SortBy:  model.FieldValidFrom,
		SortDir: gDto.SortDirDesc,
	}, gDto.And(
		gDto.Eq(model.RateTableName, model.FieldCompanyID, companyID),
		gDto.Eq(model.RateTableName, model.FieldCategory, category),
		gDto.Eq(model.RateTableName, model.FieldActive, true),
		gDto.Filter{Table: model.RateTableName, Field: model.FieldValidFrom, Operator: gDto.FilterOperatorLessEq, Value: now},
		gDto.Filter{Table: model.RateTableName, Field: model.FieldValidUntil, Operator: gDto.FilterOperatorGreaterEq, Value: now},
	))
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Str("category", category).Msg("failed to look up corporate rate")

		return model.Pricing{}, fmt.Errorf("failed to look up corporate rate: %w", err)
	}

	var rate *model.Rate
	if len(rates) > 0 {
		rate = &rates[0]
	}

	return model.Price(rate, unitPrice, travelers, s.cfg.Booking.CorporateTaxPercent, s.cfg.Booking.CorporateServiceFee), nil
}

func (s *serviceImpl) budgetFor(ctx context.Context, companyID, department string) (model.Budget, error) {
	budget, err := s.budgets.Get(ctx, gDto.And(
		gDto.Eq(model.BudgetTableName, model.FieldCompanyID, companyID),
		gDto.Eq(model.BudgetTableName, model.FieldDepartment, department),
		gDto.Eq(model.BudgetTableName, model.FieldFiscalYear, dto.FiscalYear(s.now())),
	))
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Str("department", department).Msg("failed to get department budget")

		return budget, fmt.Errorf("failed to get department budget: %w", err)
	}

	return budget, nil
}

func (s *serviceImpl) CheckBudget(ctx context.Context, companyID, department string, amount float64) (res dto.BudgetCheckResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.CheckBudget")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	if amount < 0 {
		return res, failure.BadRequestFromString("amount must not be negative") // nolint:wrapcheck
	}

	companyID, err = companyFor(shared.ActorFromContext(ctx), companyID)
	if err != nil {
		return res, err
	}

	budget, err := s.budgetFor(ctx, companyID, department)
	if err != nil {
		return res, err
	}

	res = dto.BudgetCheckResponse{
		CompanyID:  companyID,
		Department: department,
		Amount:     shared.RoundMoney(amount),
	}

	if budget.ID == constant.Empty {
		res.Allowed, res.Unconstrained = true, true

		return res, nil
	}

	res.Allocated = budget.Allocated
	res.Spent = budget.Spent
	res.Remaining = shared.RoundMoney(budget.Remaining())
	res.Allowed = res.Amount <= res.Remaining

	return res, nil
}

// requester finds the employee a booking is made for. Only corporate admins
// and staff may book on behalf of someone else.
func (s *serviceImpl) requester(ctx context.Context, actor shared.Actor, companyID, requested string) (model.Employee, error) {
	userID := actor.ID
	if requested != constant.Empty && requested != actor.ID {
		if !actor.IsStaff() && !actor.HasRole(constant.RoleCorporateAdmin) {
			return model.Employee{}, failure.ResourceRestrictedError
		}

		userID = requested
	}

	employee, err := s.employee(ctx, companyID, userID)
	if err != nil {
		return employee, err
	}

	if employee.ID == constant.Empty || !employee.Active {
		return employee, failure.Forbidden("requester is not an active employee of the company") // nolint:wrapcheck
	}

	return employee, nil
}

func (s *serviceImpl) employee(ctx context.Context, companyID, userID string) (model.Employee, error) {
	employee, err := s.employees.Get(ctx, gDto.And(
		gDto.Eq(model.EmployeeTableName, model.FieldCompanyID, companyID),
		gDto.Eq(model.EmployeeTableName, model.FieldUserID, userID),
	))
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Str("user_id", userID).Msg("failed to get corporate employee")

		return employee, fmt.Errorf("failed to get corporate employee: %w", err)
	}

	return employee, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateCorporateBookingRequest) (res dto.CreateCorporateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.Create")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)

	companyID, err := companyFor(actor, req.CompanyID)
	if err != nil {
		return res, err
	}

	if err := validateDates(req.Details); err != nil {
		return res, err
	}

	company, err := s.companies.Get(ctx, shared.FilterByID(companyID, model.FieldID, model.CompanyTableName))
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Msg("failed to get company")

		return res, fmt.Errorf("failed to get company: %w", err)
	}

	if company.ID == constant.Empty || !company.Active {
		return res, failure.NotFound("company not found") // nolint:wrapcheck
	}

	requester, err := s.requester(ctx, actor, companyID, req.RequesterUserID)
	if err != nil {
		return res, err
	}

	department := requester.Department
	if req.Department != constant.Empty && (actor.IsStaff() || actor.HasRole(constant.RoleCorporateAdmin)) {
		department = req.Department
	}

	costCenter := req.CostCenter
	if costCenter == nil {
		costCenter = requester.CostCenter
	}

	travelers := bookingDto.ToTravelers(req.Travelers)

	pricing, err := s.price(ctx, companyID, req.Category, req.Details.UnitPrice, len(travelers))
	if err != nil {
		return res, err
	}

	override := req.OverrideBudget
	if override && !actor.HasRole(constant.RoleAdmin, constant.RoleCorporateAdmin) {
		log.Warn().Str("actor", actor.ID).Str("role", actor.Role).Msg("budget override ignored for unprivileged actor")

		override = false
	}

	budget, err := s.budgetFor(ctx, companyID, department)
	if err != nil {
		return res, err
	}

	now := s.now()
	requiresApproval := model.RequiresApproval(company, pricing.Total, requester)

	booking := corporateBooking(req, travelers, pricing, requester.UserID, s.cfg.Booking.DefaultCurrency, requiresApproval, actor.ID, now)
	corporate := model.CorporateBooking{
		ID:               uuid.NewString(),
		BookingID:        booking.ID,
		CompanyID:        companyID,
		RequesterID:      requester.ID,
		RequesterUserID:  requester.UserID,
		Department:       department,
		CostCenter:       costCenter,
		Category:         req.Category,
		Details:          gModel.NewJSON(req.Details.ToModel()),
		TravelerCount:    len(travelers),
		RateID:           pricing.RateID,
		BaseAmount:       pricing.BaseAmount,
		DiscountAmount:   pricing.DiscountAmount,
		Subtotal:         pricing.Subtotal,
		TaxAmount:        pricing.TaxAmount,
		ServiceFee:       pricing.ServiceFee,
		Total:            pricing.Total,
		ApprovalRequired: requiresApproval,
		ApprovalStatus:   *booking.ApprovalStatus,
		LimitConsulted:   requester.ApprovalLimit,
		Metadata:         gModel.NewMetadata(now, actor.ID),
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if budget.ID != constant.Empty {
			after, ok, err := s.budgets.Deduct(ctx, tx, repository.BudgetChange{
				BudgetID: budget.ID,
				Amount:   pricing.Total,
				Override: override,
				Actor:    actor.ID,
				Now:      now,
			})
			if err != nil {
				return err //nolint:wrapcheck
			}

			if !ok {
				return s.exceeded(ctx, budget)
			}

			allocated, before, spent := after.Allocated, shared.RoundMoney(after.Spent-pricing.Total), after.Spent
			corporate.BudgetID = &after.ID
			corporate.BudgetAllocated = &allocated
			corporate.SpentBefore = &before
			corporate.SpentAfter = &spent
			corporate.BudgetOverride = override && spent > allocated
		}

		if err := s.bookings.InsertTx(ctx, tx, booking); err != nil {
			return err //nolint:wrapcheck
		}

		return s.corporates.InsertTx(ctx, tx, corporate) //nolint:wrapcheck
	})
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID).Str("department", department).Msg("failed to create corporate booking")

		return res, fmt.Errorf("failed to create corporate booking: %w", err)
	}

	s.metrics.IncBookingCreated(booking.Kind, booking.Status)

	if !requiresApproval {
		s.metrics.IncApprovalDecision(bookingModel.ApprovalAutoApproved)
	}

	res.Booking.FromModel(booking)
	res.Corporate.FromModel(corporate, booking.Currency)
	res.RequiresApproval = requiresApproval

	published := []events.Event{events.New(events.BookingCreated, booking.ID, actor.ID, res)}
	if requiresApproval {
		published = append(published, events.New(events.ApprovalRequested, booking.ID, actor.ID, res))
	}

	events.PublishAsync(ctx, s.publisher, published...)
	bookingService.InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

// exceeded reports the remaining budget after a rejected deduction.
func (s *serviceImpl) exceeded(ctx context.Context, budget model.Budget) error {
	s.metrics.IncBudgetRejection()

	current, err := s.budgets.Get(ctx, shared.FilterByID(budget.ID, model.FieldID, model.BudgetTableName))
	if err != nil {
		return fmt.Errorf("failed to get department budget: %w", err)
	}

	return failure.BudgetExceeded(shared.RoundMoney(current.Remaining())) //nolint:wrapcheck
}

// corporateBooking builds the booking row. The breakdown is carried as base,
// discount and two add-ons so that the generic price formula reproduces total.
// Corporate bookings are invoiced, so they confirm on approval without payment.
func corporateBooking(
	req dto.CreateCorporateBookingRequest,
	travelers []bookingModel.Traveler,
	pricing model.Pricing,
	customerID, currency string,
	requiresApproval bool,
	actorID string,
	now time.Time,
) bookingModel.Booking {
	method := bookingModel.MethodCorporateInvoice
	status, approval := bookingModel.StatusConfirmed, bookingModel.ApprovalAutoApproved

	var confirmedAt *time.Time
	if requiresApproval {
		status, approval = bookingModel.StatusPendingApproval, bookingModel.ApprovalPending
	} else {
		confirmedAt = &now
	}

	return bookingModel.Booking{
		ID:            uuid.NewString(),
		ReferenceCode: refcode.Corporate(now),
		Kind:          bookingModel.KindCorporate,
		CustomerID:    customerID,
		Contact:       gModel.NewJSON(req.Contact.ToModel()),
		Travelers:     gModel.NewJSON(travelers),
		TravelerCount: len(travelers),
		Destination:   strings.TrimSpace(req.Details.Destination),
		BasePrice:     pricing.BaseAmount,
		AddOns: gModel.NewJSON([]bookingModel.AddOn{
			{Name: "tax", Price: pricing.TaxAmount},
			{Name: "service fee", Price: pricing.ServiceFee},
		}),
		Discount:                 pricing.DiscountAmount,
		FinalAmount:              pricing.Total,
		Currency:                 currency,
		PaymentMethod:            &method,
		PaymentStatus:            bookingModel.PaymentUnpaid,
		AllowPartialConfirmation: true,
		Installments:             gModel.NewJSON([]bookingModel.Installment{}),
		Status:                   status,
		ApprovalStatus:           &approval,
		ConfirmedAt:              confirmedAt,
		Metadata:                 gModel.NewMetadata(now, actorID),
	}
}

// locked is a corporate booking and its booking row, both held for update.
type locked struct {
	corporate model.CorporateBooking
	booking   bookingModel.Booking
}

func (s *serviceImpl) lock(ctx context.Context, tx *sqlx.Tx, actor shared.Actor, bookingID string) (locked, error) {
	var l locked

	corporate, err := s.corporates.GetForUpdateTx(ctx, tx, gDto.And(gDto.Eq(model.TableName, model.FieldBookingID, bookingID)))
	if err != nil {
		return l, fmt.Errorf("failed to lock corporate booking: %w", err)
	}

	if corporate.ID == constant.Empty || !visible(actor, corporate) {
		return l, failure.NotFound("corporate booking not found") // nolint:wrapcheck
	}

	booking, err := s.bookings.GetForUpdateTx(ctx, tx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		return l, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return l, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	l.corporate, l.booking = corporate, booking

	return l, nil
}

func visible(actor shared.Actor, corporate model.CorporateBooking) bool {
	return actor.IsStaff() || (actor.CompanyID != constant.Empty && actor.CompanyID == corporate.CompanyID)
}

func (s *serviceImpl) DecideApproval(ctx context.Context, bookingID string, req dto.DecisionRequest) (res dto.DecisionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.DecideApproval")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)

	var notes *string
	if req.Notes != nil {
		if trimmed := strings.TrimSpace(*req.Notes); trimmed != constant.Empty {
			notes = &trimmed
		}
	}

	if req.Decision == model.DecisionReject && notes == nil {
		return res, failure.BadRequestFromString("notes are required when rejecting") // nolint:wrapcheck
	}

	var l locked

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		l, err = s.lock(ctx, tx, actor, bookingID)
		if err != nil {
			return err
		}

		approver, err := s.employee(ctx, l.corporate.CompanyID, actor.ID)
		if err != nil {
			return err
		}

		if !model.MayApprove(approver, l.corporate.CompanyID, l.corporate.Total) {
			return failure.Forbidden("approver is not authorised for this amount") // nolint:wrapcheck
		}

		if l.corporate.ApprovalStatus != bookingModel.ApprovalPending {
			return failure.InvalidStateTransition(model.EntityName, l.corporate.ApprovalStatus, req.Decision) //nolint:wrapcheck
		}

		if err := bookingModel.Check(bookingModel.OpApprove, l.booking.Status); err != nil {
			return err //nolint:wrapcheck
		}

		now := s.now()

		approval, status := bookingModel.ApprovalApproved, bookingModel.StatusConfirmed
		if req.Decision == model.DecisionReject {
			approval, status = bookingModel.ApprovalRejected, bookingModel.StatusRejected
		}

		corporateChanges := map[string]any{
			model.FieldApprovalStatus: approval,
			model.FieldApproverID:     approver.UserID,
			model.FieldLimitConsulted: approver.ApprovalLimit,
			model.FieldApprovalNotes:  notes,
			model.FieldDecidedAt:      now,
			constant.FieldModifiedAt:  now,
			constant.FieldModifiedBy:  actor.ID,
		}

		bookingChanges := map[string]any{
			bookingModel.FieldStatus:         status,
			bookingModel.FieldApprovalStatus: approval,
			constant.FieldModifiedAt:         now,
			constant.FieldModifiedBy:         actor.ID,
		}

		if status == bookingModel.StatusConfirmed {
			bookingChanges[bookingModel.FieldConfirmedAt] = now
			l.booking.ConfirmedAt = &now
		} else {
			bookingChanges[bookingModel.FieldRejectionReason] = *notes
			l.booking.RejectionReason = notes
		}

		restore := l.corporate.Deducted()
		if status == bookingModel.StatusRejected && restore > 0 {
			corporateChanges[model.FieldBudgetRestored] = true
			l.corporate.BudgetRestored = true
		}

		affected, err := s.corporates.UpdateTx(ctx, tx, corporateChanges, pendingApproval(l.corporate.ID))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(model.EntityName, l.corporate.ApprovalStatus, req.Decision) //nolint:wrapcheck
		}

		affected, err = s.bookings.UpdateTx(ctx, tx, bookingChanges, bookingIn(l.booking.ID, l.booking.Status))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(bookingModel.EntityName, l.booking.Status, bookingModel.OpApprove) //nolint:wrapcheck
		}

		if status == bookingModel.StatusRejected && restore > 0 {
			if err := s.budgets.Restore(ctx, tx, repository.BudgetChange{
				BudgetID: *l.corporate.BudgetID,
				Amount:   restore,
				Actor:    actor.ID,
				Now:      now,
			}); err != nil {
				return err //nolint:wrapcheck
			}
		}

		l.corporate.ApprovalStatus = approval
		l.corporate.ApproverID = &approver.UserID
		l.corporate.LimitConsulted = approver.ApprovalLimit
		l.corporate.ApprovalNotes = notes
		l.corporate.DecidedAt = &now
		l.booking.Status = status
		l.booking.ApprovalStatus = &approval
		l.booking.ModifiedAt, l.booking.ModifiedBy = now, actor.ID
		l.corporate.ModifiedAt, l.corporate.ModifiedBy = now, actor.ID

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Str("decision", req.Decision).Msg("failed to decide approval")

		return res, fmt.Errorf("failed to decide approval: %w", err)
	}

	s.metrics.IncApprovalDecision(l.corporate.ApprovalStatus)

	res.Booking.FromModel(l.booking)
	res.Corporate.FromModel(l.corporate, l.booking.Currency)

	published := []events.Event{events.New(events.ApprovalDecided, bookingID, actor.ID, res)}
	if l.booking.Status == bookingModel.StatusConfirmed {
		published = append(published, events.New(events.BookingConfirmed, bookingID, actor.ID, res.Booking))
	}

	events.PublishAsync(ctx, s.publisher, published...)
	bookingService.InvalidateCache(ctx, s.cache, bookingID)

	return res, nil
}

// Cancel withdraws an unpaid corporate booking and gives its deduction back.
// Paid bookings go through the ledger refund instead.
func (s *serviceImpl) Cancel(ctx context.Context, bookingID string, req dto.CancelCorporateBookingRequest) (res dto.DecisionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.Cancel")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	reason := strings.TrimSpace(req.Reason)

	if reason == constant.Empty {
		return res, failure.BadRequestFromString("cancellation reason is required") // nolint:wrapcheck
	}

	var l locked

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		l, err = s.lock(ctx, tx, actor, bookingID)
		if err != nil {
			return err
		}

		if !actor.IsStaff() && !actor.HasRole(constant.RoleCorporateAdmin) && actor.ID != l.corporate.RequesterUserID {
			return failure.ResourceRestrictedError
		}

		if err := bookingModel.Check(bookingModel.OpCorpCancel, l.booking.Status); err != nil {
			return err //nolint:wrapcheck
		}

		if l.booking.TotalPaid > 0 {
			return failure.Conflict("paid corporate bookings are refunded through the ledger") // nolint:wrapcheck
		}

		now := s.now()

		affected, err := s.bookings.UpdateTx(ctx, tx, map[string]any{
			bookingModel.FieldStatus:       bookingModel.StatusCancelled,
			bookingModel.FieldCancelReason: reason,
			constant.FieldModifiedAt:       now,
			constant.FieldModifiedBy:       actor.ID,
		}, bookingIn(l.booking.ID, l.booking.Status))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(bookingModel.EntityName, l.booking.Status, bookingModel.OpCorpCancel) //nolint:wrapcheck
		}

		if restore := l.corporate.Deducted(); restore > 0 {
			affected, err := s.corporates.UpdateTx(ctx, tx, map[string]any{
				model.FieldBudgetRestored: true,
				constant.FieldModifiedAt:  now,
				constant.FieldModifiedBy:  actor.ID,
			}, notRestored(l.corporate.ID))
			if err != nil {
				return err //nolint:wrapcheck
			}

			if affected > 0 {
				if err := s.budgets.Restore(ctx, tx, repository.BudgetChange{
					BudgetID: *l.corporate.BudgetID,
					Amount:   restore,
					Actor:    actor.ID,
					Now:      now,
				}); err != nil {
					return err //nolint:wrapcheck
				}

				l.corporate.BudgetRestored = true
				l.corporate.ModifiedAt, l.corporate.ModifiedBy = now, actor.ID
			}
		}

		l.booking.Status = bookingModel.StatusCancelled
		l.booking.CancelReason = &reason
		l.booking.ModifiedAt, l.booking.ModifiedBy = now, actor.ID

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to cancel corporate booking")

		return res, fmt.Errorf("failed to cancel corporate booking: %w", err)
	}

	res.Booking.FromModel(l.booking)
	res.Corporate.FromModel(l.corporate, l.booking.Currency)

	events.PublishAsync(ctx, s.publisher, events.New(events.BookingCancelled, bookingID, actor.ID, res))
	bookingService.InvalidateCache(ctx, s.cache, bookingID)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, bookingID string) (res dto.CorporateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".corporate.Get")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	corporate, err := s.corporates.Get(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldBookingID, bookingID)))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get corporate booking")

		return res, fmt.Errorf("failed to get corporate booking: %w", err)
	}

	if corporate.ID == constant.Empty || !visible(shared.ActorFromContext(ctx), corporate) {
		return res, failure.NotFound("corporate booking not found") // nolint:wrapcheck
	}

	res.FromModel(corporate, s.cfg.Booking.DefaultCurrency)

	return res, nil
}

func validateDates(details dto.DetailsRequest) error {
	start, err := timezone.ParseDay(details.StartDate)
	if err != nil {
		return failure.BadRequestFromString("start_date must be YYYY-MM-DD") // nolint:wrapcheck
	}

	end, err := timezone.ParseDay(details.EndDate)
	if err != nil {
		return failure.BadRequestFromString("end_date must be YYYY-MM-DD") // nolint:wrapcheck
	}

	if end.Before(start) {
		return failure.BadRequestFromString("end_date must not be before start_date") // nolint:wrapcheck
	}

	return nil
}

func pendingApproval(id string) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldID, id),
		gDto.Filter{ArgName: "current_approval_status", Field: model.FieldApprovalStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: bookingModel.ApprovalPending},
	)
}

func notRestored(id string) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldID, id),
		gDto.Filter{ArgName: "current_budget_restored", Field: model.FieldBudgetRestored, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: false},
	)
}

func bookingIn(id, status string) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(bookingModel.TableName, bookingModel.FieldID, id),
		gDto.Filter{ArgName: "current_status", Field: bookingModel.FieldStatus, Table: bookingModel.TableName, Operator: gDto.FilterOperatorEq, Value: status},
	)
}
