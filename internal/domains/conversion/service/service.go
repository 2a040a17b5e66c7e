package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	appointmentModel "voyage/internal/domains/appointment/model"
	appointmentRepository "voyage/internal/domains/appointment/repository"
	appointmentService "voyage/internal/domains/appointment/service"
	bookingModel "voyage/internal/domains/booking/model"
	bookingDto "voyage/internal/domains/booking/model/dto"
	bookingRepository "voyage/internal/domains/booking/repository"
	bookingService "voyage/internal/domains/booking/service"
	"voyage/internal/domains/conversion/model"
	"voyage/internal/domains/conversion/model/dto"
	"voyage/shared"
	"voyage/shared/cache"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/events"
	"voyage/shared/failure"
	"voyage/shared/metrics"
	"voyage/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var errPointerTaken = errors.New("appointment no longer convertible")

// Clock is the time source used for quote validity.
type Clock func() time.Time

// Conversion turns a completed appointment into a booking at most once.
type Conversion interface {
	Convert(ctx context.Context, appointmentID string, req dto.ConvertAppointmentRequest) (bookingDto.BookingResponse, error)
}

type serviceImpl struct {
	appointments appointmentRepository.Appointment
	bookings     bookingRepository.Booking
	tx           postgres.Transactor
	cache        cache.RedisCache
	publisher    events.Publisher
	metrics      *metrics.Metrics
	cfg          *config.Config
	otel         otel.Otel
	now          Clock
}

func New(
	appointments appointmentRepository.Appointment,
	bookings bookingRepository.Booking,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Conversion {
	return NewWithClock(appointments, bookings, tx, redisCache, publisher, m, cfg, otel, timezone.Now)
}

func NewWithClock(
	appointments appointmentRepository.Appointment,
	bookings bookingRepository.Booking,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
	now Clock,
) Conversion {
	return &serviceImpl{
		appointments: appointments,
		bookings:     bookings,
		tx:           tx,
		cache:        redisCache,
		publisher:    publisher,
		metrics:      m,
		cfg:          cfg,
		otel:         otel,
		now:          now,
	}
}

func (s *serviceImpl) Convert(ctx context.Context, appointmentID string, req dto.ConvertAppointmentRequest) (res bookingDto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".conversion.Convert")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsStaff() {
		return res, failure.ResourceRestrictedError
	}

	appointment, err := s.appointments.Get(ctx, shared.FilterByID(appointmentID, appointmentModel.FieldID, appointmentModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("appointment_id", appointmentID).Msg("failed to get appointment")

		return res, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return res, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	// A booking left behind by an interrupted conversion wins over a new one.
	existing, err := s.bookingFor(ctx, appointment.ID)
	if err != nil {
		return res, err
	}

	if existing.ID != constant.Empty {
		s.repair(ctx, appointment, existing, actor.ID)

		return res, s.duplicate(existing)
	}

	if _, err := appointmentModel.Next(appointmentModel.OpConvert, appointment.Status); err != nil {
		s.metrics.IncConversion(model.OutcomeRejected)

		return res, err //nolint:wrapcheck
	}

	now := s.now()

	price, err := s.price(appointment, req, now)
	if err != nil {
		s.metrics.IncConversion(model.OutcomeRejected)

		return res, err
	}

	booking := req.ToModel(appointment, price, s.cfg.Booking.DefaultCurrency, actor.ID, now)

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.bookings.InsertTx(ctx, tx, booking); err != nil {
			return err //nolint:wrapcheck
		}

		affected, err := s.appointments.UpdateTx(ctx, tx, map[string]any{
			appointmentModel.FieldStatus:    appointmentModel.StatusConverted,
			appointmentModel.FieldBookingID: booking.ID,
			constant.FieldModifiedAt:        now,
			constant.FieldModifiedBy:        actor.ID,
		}, convertible(appointment.ID))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return errPointerTaken
		}

		return nil
	})
	if errors.Is(err, errPointerTaken) || postgres.IsUniqueViolation(err) {
		return res, s.lost(ctx, appointment)
	}

	if err != nil {
		log.Error().Err(err).Str("appointment_id", appointmentID).Msg("failed to convert appointment")

		return res, fmt.Errorf("failed to convert appointment: %w", err)
	}

	s.metrics.IncConversion(model.OutcomeConverted)
	s.metrics.IncBookingCreated(booking.Kind, booking.Status)

	res.FromModel(booking)

	appointment.Status = appointmentModel.StatusConverted
	appointment.BookingID = &booking.ID

	events.PublishAsync(ctx, s.publisher,
		events.New(events.AppointmentConverted, appointment.ID, actor.ID, map[string]string{"appointment_id": appointment.ID, "booking_id": booking.ID}),
		events.New(events.BookingCreated, booking.ID, actor.ID, res),
	)

	appointmentService.InvalidateCache(ctx, s.cache, appointment.ID)
	bookingService.InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

// price prefers the explicit final price and falls back to a quote that is
// still valid at now.
func (s *serviceImpl) price(appointment appointmentModel.Appointment, req dto.ConvertAppointmentRequest, now time.Time) (float64, error) {
	if req.FinalPrice != nil {
		return shared.RoundMoney(*req.FinalPrice), nil
	}

	if !appointment.QuoteUsable(now) {
		return 0, failure.QuoteExpired() //nolint:wrapcheck
	}

	return *appointment.QuotedPrice, nil
}

func (s *serviceImpl) bookingFor(ctx context.Context, appointmentID string) (bookingModel.Booking, error) {
	booking, err := s.bookings.Get(ctx, gDto.And(gDto.Eq(bookingModel.TableName, bookingModel.FieldAppointmentID, appointmentID)))
	if err != nil {
		log.Error().Err(err).Str("appointment_id", appointmentID).Msg("failed to look up converted booking")

		return booking, fmt.Errorf("failed to look up converted booking: %w", err)
	}

	return booking, nil
}

// repair points a completed appointment at the booking that already
// references it. Failure only leaves the pointer for the next attempt.
func (s *serviceImpl) repair(ctx context.Context, appointment appointmentModel.Appointment, booking bookingModel.Booking, actorID string) {
	if appointment.BookingID != nil {
		return
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		affected, err := s.appointments.UpdateTx(ctx, tx, map[string]any{
			appointmentModel.FieldStatus:    appointmentModel.StatusConverted,
			appointmentModel.FieldBookingID: booking.ID,
			constant.FieldModifiedAt:        s.now(),
			constant.FieldModifiedBy:        actorID,
		}, convertible(appointment.ID))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected > 0 {
			s.metrics.IncConversion(model.OutcomeRepaired)
			log.Warn().Str("appointment_id", appointment.ID).Str("booking_id", booking.ID).Msg("repaired conversion pointer")
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("appointment_id", appointment.ID).Msg("failed to repair conversion pointer")

		return
	}

	appointmentService.InvalidateCache(ctx, s.cache, appointment.ID)
}

// lost resolves a conversion that another caller committed first.
func (s *serviceImpl) lost(ctx context.Context, appointment appointmentModel.Appointment) error {
	winner, err := s.bookingFor(ctx, appointment.ID)
	if err != nil {
		return err
	}

	if winner.ID == constant.Empty {
		s.metrics.IncConversion(model.OutcomeRejected)

		current, err := s.appointments.Get(ctx, shared.FilterByID(appointment.ID, appointmentModel.FieldID, appointmentModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		return failure.InvalidStateTransition(appointmentModel.EntityName, current.Status, appointmentModel.OpConvert) //nolint:wrapcheck
	}

	return s.duplicate(winner)
}

func (s *serviceImpl) duplicate(booking bookingModel.Booking) error {
	s.metrics.IncConversion(model.OutcomeDuplicate)

	var existing bookingDto.BookingResponse
	existing.FromModel(booking)

	log.Info().Str("booking_id", booking.ID).Msg("appointment already converted")

	return failure.DuplicateConversion(booking.ID, existing) //nolint:wrapcheck
}

// convertible guards the pointer write: completed and not yet pointing anywhere.
func convertible(appointmentID string) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(appointmentModel.TableName, appointmentModel.FieldID, appointmentID),
		gDto.Filter{ArgName: "current_status", Field: appointmentModel.FieldStatus, Table: appointmentModel.TableName, Operator: gDto.FilterOperatorEq, Value: appointmentModel.StatusCompleted},
		gDto.Filter{Field: appointmentModel.FieldBookingID, Table: appointmentModel.TableName, Operator: gDto.FilterIsNull},
	)
}
