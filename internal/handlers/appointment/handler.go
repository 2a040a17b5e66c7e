package appointment

import (
	"net/http"
	"voyage/infras/otel"
	"voyage/internal/domains/appointment/model"
	"voyage/internal/domains/appointment/model/dto"
	"voyage/internal/domains/appointment/service"
	bookingDto "voyage/internal/domains/booking/model/dto"
	conversionDto "voyage/internal/domains/conversion/model/dto"
	conversionService "voyage/internal/domains/conversion/service"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/failure"
	"voyage/shared/timezone"
	"voyage/shared/validator"
	"voyage/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Appointment
	conversion conversionService.Conversion
	otel       otel.Otel
}

func New(service service.Appointment, conversion conversionService.Conversion, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		conversion: conversion,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/appointments", func(routerGroup chi.Router) {
		routerGroup.Get("/slots", handler.GetAvailableSlots)
		routerGroup.Post("/", handler.CreateAppointment)
		routerGroup.Get("/", handler.GetAppointments)
		routerGroup.Get("/mine", handler.GetMyAppointments)
		routerGroup.Get("/{id}", handler.GetAppointmentByID)
		routerGroup.Post("/{id}/confirm", handler.ConfirmAppointment)
		routerGroup.Post("/{id}/reschedule", handler.RescheduleAppointment)
		routerGroup.Post("/{id}/cancel", handler.CancelAppointment)
		routerGroup.Post("/{id}/complete", handler.CompleteConsultation)
		routerGroup.Post("/{id}/no-show", handler.MarkNoShow)
		routerGroup.Post("/{id}/convert", handler.ConvertAppointment)
	})
}

// GetAvailableSlots lists the free consultation slots of a day.
// @Summary Get available slots
// @Description List the slot labels of a calendar day that no live appointment holds.
// @Tags Appointment
// @Produce json
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailableSlotsResponse] "Available slots"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/slots [get]
func (handler *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSlots")
	defer scope.End()

	slots, err := handler.service.AvailableSlots(ctx, r.URL.Query().Get(constant.RequestParamDate))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// CreateAppointment books a consultation slot.
// @Summary Create an appointment
// @Description Reserve a consultation slot for the authenticated customer.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Create Appointment Request"
// @Success 201 {object} response.Data[dto.AppointmentResponse] "Appointment created"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Slot unavailable"
// @Failure 500 {object} response.Error
// @Router /v1/appointments [post]
// @Security BearerAuth
func (handler *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAppointment")
	defer scope.End()

	req := dto.CreateAppointmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment created " + appointment.ReferenceCode)

	response.WithJSON(w, http.StatusCreated, appointment)
}

// GetAppointments lists appointments for staff.
// @Summary Get all appointments
// @Description Retrieve appointments with optional filtering and pagination.
// @Tags Appointment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Param date query string false "Filter by slot date (YYYY-MM-DD)"
// @Param agent_id query string false "Filter by agent"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse] "List of appointments"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments [get]
// @Security BearerAuth
func (handler *Handler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	status := r.URL.Query().Get(model.FieldStatus)
	date := r.URL.Query().Get(constant.RequestParamDate)
	agentID := r.URL.Query().Get(model.FieldAgentID)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, model.FieldStatus, status))
	}

	if date != "" {
		day, err := timezone.ParseDay(date)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("date must be YYYY-MM-DD"))

			return
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, model.FieldSlotDate, day))
	}

	if agentID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, model.FieldAgentID, agentID))
	}

	appointments, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointments)
}

// GetMyAppointments lists the caller's own appointments.
// @Summary Get my appointments
// @Tags Appointment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse] "List of appointments"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyAppointments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	appointments, err := handler.service.GetMine(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get my appointments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointments)
}

// GetAppointmentByID retrieves one appointment.
// @Summary Get an appointment by ID
// @Tags Appointment
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAppointmentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointmentByID")
	defer scope.End()

	appointment, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get appointment by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// ConfirmAppointment confirms a scheduled appointment.
// @Summary Confirm an appointment
// @Tags Appointment
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment confirmed"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmAppointment")
	defer scope.End()

	appointment, err := handler.service.Confirm(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm appointment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// RescheduleAppointment moves an appointment to another slot.
// @Summary Reschedule an appointment
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.RescheduleAppointmentRequest true "Reschedule Appointment Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment rescheduled"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Slot unavailable or invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/reschedule [post]
// @Security BearerAuth
func (handler *Handler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleAppointment")
	defer scope.End()

	req := dto.RescheduleAppointmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Reschedule(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reschedule appointment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// CancelAppointment cancels an appointment and frees its slot.
// @Summary Cancel an appointment
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.CancelAppointmentRequest true "Cancel Appointment Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment cancelled"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelAppointment")
	defer scope.End()

	req := dto.CancelAppointmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel appointment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// CompleteConsultation records the outcome of a held consultation.
// @Summary Complete a consultation
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.CompleteConsultationRequest true "Complete Consultation Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Consultation completed"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/complete [post]
// @Security BearerAuth
func (handler *Handler) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteConsultation")
	defer scope.End()

	req := dto.CompleteConsultationRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Complete(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete consultation")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// MarkNoShow records that the customer did not attend.
// @Summary Mark an appointment as no-show
// @Tags Appointment
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse] "Appointment marked as no-show"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/no-show [post]
// @Security BearerAuth
func (handler *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkNoShow")
	defer scope.End()

	appointment, err := handler.service.MarkNoShow(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark appointment as no-show")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// ConvertAppointment turns a completed consultation into a booking.
// @Summary Convert an appointment into a booking
// @Description Create the booking for a completed appointment. A second conversion returns 409 with the existing booking.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body conversionDto.ConvertAppointmentRequest true "Convert Appointment Request"
// @Success 201 {object} response.Data[bookingDto.BookingResponse] "Booking created"
// @Failure 400 {object} response.Error "Validation failed or quote expired"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Already converted or invalid state transition"
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/convert [post]
// @Security BearerAuth
func (handler *Handler) ConvertAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConvertAppointment")
	defer scope.End()

	req := conversionDto.ConvertAppointmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	var (
		booking bookingDto.BookingResponse
		err     error
	)

	booking, err = handler.conversion.Convert(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to convert appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment converted into booking " + booking.ReferenceCode)

	response.WithJSON(w, http.StatusCreated, booking)
}
