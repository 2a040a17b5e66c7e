package corporate

import (
	"net/http"
	"strconv"
	"voyage/infras/otel"
	"voyage/internal/domains/corporate/model"
	"voyage/internal/domains/corporate/model/dto"
	"voyage/internal/domains/corporate/service"
	"voyage/shared/constant"
	"voyage/shared/failure"
	"voyage/shared/validator"
	"voyage/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Corporate
	otel    otel.Otel
}

func New(service service.Corporate, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/corporate", func(routerGroup chi.Router) {
		routerGroup.Post("/quotes", handler.PriceCorporate)
		routerGroup.Get("/budgets/{department}", handler.CheckBudget)
		routerGroup.Post("/bookings", handler.CreateCorporateBooking)
		routerGroup.Get("/bookings/{id}", handler.GetCorporateBooking)
		routerGroup.Post("/bookings/{id}/decision", handler.DecideApproval)
		routerGroup.Post("/bookings/{id}/cancel", handler.CancelCorporateBooking)
	})
}

// PriceCorporate quotes a corporate trip with the company's negotiated rate.
// @Summary Price a corporate booking
// @Tags Corporate
// @Accept json
// @Produce json
// @Param request body dto.PriceRequest true "Price Request"
// @Success 200 {object} response.Data[dto.PricingResponse] "Pricing breakdown"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/corporate/quotes [post]
// @Security BearerAuth
func (handler *Handler) PriceCorporate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PriceCorporate")
	defer scope.End()

	req := dto.PriceRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	pricing, err := handler.service.PriceCorporate(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to price corporate booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, pricing)
}

// CheckBudget reports whether a department can absorb an amount.
// @Summary Check a department budget
// @Tags Corporate
// @Produce json
// @Param department path string true "Department"
// @Param amount query number true "Amount to check"
// @Param company_id query string false "Company, staff only"
// @Success 200 {object} response.Data[dto.BudgetCheckResponse] "Budget check"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/corporate/budgets/{department} [get]
// @Security BearerAuth
func (handler *Handler) CheckBudget(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckBudget")
	defer scope.End()

	amount, err := strconv.ParseFloat(r.URL.Query().Get(constant.RequestParamAmount), 64)
	if err != nil {
		response.WithError(w, failure.BadRequestFromString("amount must be a number"))

		return
	}

	check, err := handler.service.CheckBudget(ctx,
		r.URL.Query().Get(model.FieldCompanyID),
		chi.URLParam(r, constant.RequestParamDepartment),
		amount,
	)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check budget")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, check)
}

// CreateCorporateBooking books travel for an employee against the department budget.
// @Summary Create a corporate booking
// @Description Deducts the department budget and either auto-approves or waits for an approver.
// @Tags Corporate
// @Accept json
// @Produce json
// @Param request body dto.CreateCorporateBookingRequest true "Create Corporate Booking Request"
// @Success 201 {object} response.Data[dto.CreateCorporateBookingResponse] "Corporate booking created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error "Budget exceeded"
// @Failure 500 {object} response.Error
// @Router /v1/corporate/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateCorporateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateCorporateBooking")
	defer scope.End()

	req := dto.CreateCorporateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create corporate booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Corporate booking created " + res.Booking.ReferenceCode)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetCorporateBooking retrieves the corporate record of a booking.
// @Summary Get a corporate booking
// @Tags Corporate
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.CorporateBookingResponse] "Corporate booking"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/corporate/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetCorporateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCorporateBooking")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get corporate booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DecideApproval approves or rejects a pending corporate booking.
// @Summary Decide a corporate approval
// @Tags Corporate
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.DecisionRequest true "Decision Request"
// @Success 200 {object} response.Data[dto.DecisionResponse] "Decision recorded"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Already decided"
// @Failure 500 {object} response.Error
// @Router /v1/corporate/bookings/{id}/decision [post]
// @Security BearerAuth
func (handler *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DecideApproval")
	defer scope.End()

	req := dto.DecisionRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.DecideApproval(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decide approval")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CancelCorporateBooking cancels an unpaid corporate booking and restores the budget.
// @Summary Cancel a corporate booking
// @Tags Corporate
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.CancelCorporateBookingRequest true "Cancel Corporate Booking Request"
// @Success 200 {object} response.Data[dto.DecisionResponse] "Corporate booking cancelled"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/corporate/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelCorporateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelCorporateBooking")
	defer scope.End()

	req := dto.CancelCorporateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel corporate booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
