package booking

import (
	"net/http"
	"voyage/infras/otel"
	"voyage/internal/domains/booking/model"
	"voyage/internal/domains/booking/model/dto"
	"voyage/internal/domains/booking/service"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/validator"
	"voyage/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	ledger  service.Ledger
	otel    otel.Otel
}

func New(service service.Booking, ledger service.Ledger, otel otel.Otel) Handler {
	return Handler{
		service: service,
		ledger:  ledger,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/mine", handler.GetMyBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/payments", handler.RecordPayment)
		routerGroup.Get("/{id}/payments", handler.GetTransactions)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/refunds", handler.RefundBooking)
		routerGroup.Put("/{id}/installments", handler.SetInstallments)
		routerGroup.Post("/{id}/statement", handler.ExportStatement)
	})
}

// CreateBooking handles the creation of a direct booking.
// @Summary Create a new booking
// @Description Create a priced trip booking for the authenticated customer.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created " + booking.ReferenceCode)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings retrieves all bookings based on query parameters.
// @Summary Get all bookings
// @Description Retrieve all bookings with optional filtering and pagination.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Param kind query string false "Filter by kind (direct, appointment, corporate)"
// @Param payment_status query string false "Filter by payment status"
// @Param customer_id query string false "Filter by customer"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	// Only add filters if the values are non-empty
	for _, field := range []string{model.FieldStatus, model.FieldKind, model.FieldPaymentStatus, model.FieldCustomerID} {
		if value := r.URL.Query().Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, field, value))
		}
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Bookings retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings retrieves all bookings for the currently authenticated user.
// @Summary Get my bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of user's bookings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	bookings, err := handler.service.GetMine(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// RecordPayment adds a payment to the booking ledger.
// @Summary Record a payment
// @Description Apply a payment. Replaying a transaction_id returns the current booking without applying it again.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RecordPaymentRequest true "Record Payment Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Payment recorded"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 422 {object} response.Error "Payment exceeds outstanding balance"
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/payments [post]
// @Security BearerAuth
func (handler *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordPayment")
	defer scope.End()

	req := dto.RecordPaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.ledger.AddPayment(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("transaction_id", req.TransactionID).Msg("failed to record payment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// GetTransactions lists the ledger entries of a booking.
// @Summary Get booking payments
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.GetTransactionsResponse] "Ledger history"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/payments [get]
// @Security BearerAuth
func (handler *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTransactions")
	defer scope.End()

	transactions, err := handler.ledger.Transactions(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking transactions")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, transactions)
}

// CancelBooking cancels a booking that is not yet confirmed.
// @Summary Cancel a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.CancelBookingRequest true "Cancel Booking Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking cancelled"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	req := dto.CancelBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.ledger.Cancel(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// RefundBooking returns money on a cancelled booking.
// @Summary Refund a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RefundRequest true "Refund Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Refund recorded"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 422 {object} response.Error "Refund exceeds refundable amount"
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/refunds [post]
// @Security BearerAuth
func (handler *Handler) RefundBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefundBooking")
	defer scope.End()

	req := dto.RefundRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.ledger.Refund(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("transaction_id", req.TransactionID).Msg("failed to refund booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// SetInstallments replaces the payment schedule of a booking.
// @Summary Set the installment schedule
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.SetInstallmentsRequest true "Set Installments Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Schedule stored"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/installments [put]
// @Security BearerAuth
func (handler *Handler) SetInstallments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetInstallments")
	defer scope.End()

	req := dto.SetInstallmentsRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.ledger.SetInstallments(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set installments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// ExportStatement uploads the ledger statement of a booking.
// @Summary Export a booking statement
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 201 {object} response.Data[dto.StatementResponse] "Statement uploaded"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/statement [post]
// @Security BearerAuth
func (handler *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportStatement")
	defer scope.End()

	statement, err := handler.ledger.ExportStatement(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export statement")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, statement)
}
