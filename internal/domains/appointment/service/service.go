package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/appointment/model"
	"voyage/internal/domains/appointment/model/dto"
	"voyage/internal/domains/appointment/repository"
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

const (
	cachePrefix     = "appointment"
	cacheListPrefix = "appointment:list"
)

var allowedSortBy = []string{
	constant.FieldCreatedAt,
	model.FieldSlotDate,
	model.FieldStatus,
	model.FieldReferenceCode,
}

type Appointment interface {
	AvailableSlots(ctx context.Context, date string) (dto.AvailableSlotsResponse, error)
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (dto.AppointmentResponse, error)
	Get(ctx context.Context, id string) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAppointmentsResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetAppointmentsResponse, error)
	Confirm(ctx context.Context, id string) (dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleAppointmentRequest) (dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelAppointmentRequest) (dto.AppointmentResponse, error)
	Complete(ctx context.Context, id string, req dto.CompleteConsultationRequest) (dto.AppointmentResponse, error)
	MarkNoShow(ctx context.Context, id string) (dto.AppointmentResponse, error)
}

type serviceImpl struct {
	repo      repository.Appointment
	scheduler Scheduler
	tx        postgres.Transactor
	cache     cache.RedisCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	otel      otel.Otel
	now       Clock
}

func New(
	repo repository.Appointment,
	scheduler Scheduler,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Appointment {
	return NewWithClock(repo, scheduler, tx, redisCache, publisher, m, cfg, otel, timezone.Now)
}

func NewWithClock(
	repo repository.Appointment,
	scheduler Scheduler,
	tx postgres.Transactor,
	redisCache cache.RedisCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
	now Clock,
) Appointment {
	return &serviceImpl{
		repo:      repo,
		scheduler: scheduler,
		tx:        tx,
		cache:     redisCache,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		otel:      otel,
		now:       now,
	}
}

func (s *serviceImpl) AvailableSlots(ctx context.Context, date string) (res dto.AvailableSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AvailableSlots")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	day, err := timezone.ParseDay(date)
	if err != nil {
		return res, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	slots, err := s.scheduler.AvailableSlots(ctx, day)
	if err != nil {
		return res, fmt.Errorf("failed to get available slots: %w", err)
	}

	res.Date = day.Format(constant.DayFormat)
	res.Slots = slots

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)

	day, err := timezone.ParseDay(req.Date)
	if err != nil {
		return res, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	appointment := req.ToModel(actor.ID, day)

	// The claim goes first; its foreign key to appointments is deferred to commit.
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.scheduler.Reserve(ctx, tx, day, appointment.SlotLabel, appointment.ID); err != nil {
			return err //nolint:wrapcheck
		}

		if err := s.repo.InsertTx(ctx, tx, appointment); err != nil {
			if postgres.IsUniqueViolation(err) {
				return failure.SlotUnavailable(req.Date, appointment.SlotLabel) //nolint:wrapcheck
			}

			return fmt.Errorf("failed to insert appointment: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, failure.ErrSlotUnavailable) {
			s.metrics.IncSlotConflict()
		}

		log.Error().Err(err).Str("date", req.Date).Str("slot", req.Slot).Msg("failed to create appointment")

		return res, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.scheduler.Invalidate(ctx, day)
	s.metrics.IncAppointmentTransition(appointment.Status)
	s.afterChange(ctx, appointment, events.AppointmentCreated, actor.ID)

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	key := shared.BuildCacheKey(cachePrefix, id)
	if err := s.cache.Get(ctx, key, &res); err != nil {
		appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to get appointment")

			return res, fmt.Errorf("failed to get appointment: %w", err)
		}

		if appointment.ID == "" {
			return res, failure.NotFound("appointment not found") //nolint:wrapcheck
		}

		res.FromModel(appointment)

		if err := s.cache.Save(ctx, key, res, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache appointment")
		}
	}

	// Customers never learn that someone else's appointment exists.
	if !shared.ActorFromContext(ctx).Owns(res.CustomerID) {
		return dto.AppointmentResponse{}, failure.NotFound("appointment not found") //nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	params.Sanitize(allowedSortBy...)

	key := shared.BuildCacheKeyWithQuery(cacheListPrefix, params, filter)
	if err := s.cache.Get(ctx, key, &res); err == nil {
		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	if err := s.cache.Save(ctx, key, res, s.cfg.Cache.TTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache appointments")
	}

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetAppointmentsResponse, error) {
	actor := shared.ActorFromContext(ctx)

	return s.GetAll(ctx, params, gDto.And(gDto.Eq(model.TableName, model.FieldCustomerID, actor.ID)))
}

func (s *serviceImpl) Confirm(ctx context.Context, id string) (dto.AppointmentResponse, error) {
	return s.transition(ctx, id, model.OpConfirm, events.AppointmentConfirmed, func(_ *sqlx.Tx, appointment *model.Appointment, mod map[string]any) error {
		actor := shared.ActorFromContext(ctx)
		if appointment.AgentID == nil && actor.Role == constant.RoleAgent {
			appointment.AgentID = &actor.ID
			mod[model.FieldAgentID] = actor.ID
		}

		return nil
	})
}

func (s *serviceImpl) Reschedule(ctx context.Context, id string, req dto.RescheduleAppointmentRequest) (dto.AppointmentResponse, error) {
	day, err := timezone.ParseDay(req.Date)
	if err != nil {
		return dto.AppointmentResponse{}, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	var previous time.Time

	res, err := s.transition(ctx, id, model.OpReschedule, events.AppointmentRescheduled, func(tx *sqlx.Tx, appointment *model.Appointment, mod map[string]any) error {
		if appointment.SlotDate.Format(constant.DayFormat) == day.Format(constant.DayFormat) && appointment.SlotLabel == req.Slot {
			return failure.BadRequestFromString("appointment already holds this slot") //nolint:wrapcheck
		}

		// Claim first: on conflict the old slot is still held when the tx rolls back.
		if err := s.scheduler.Reserve(ctx, tx, day, req.Slot, appointment.ID); err != nil {
			return err //nolint:wrapcheck
		}

		if err := s.scheduler.Release(ctx, tx, appointment.SlotDate, appointment.SlotLabel, appointment.ID); err != nil {
			return err //nolint:wrapcheck
		}

		previous = appointment.SlotDate

		appointment.SlotDate = day
		appointment.SlotLabel = req.Slot
		appointment.RescheduleCount++

		mod[model.FieldSlotDate] = day
		mod[model.FieldSlotLabel] = req.Slot
		mod[model.FieldRescheduleCount] = appointment.RescheduleCount

		return nil
	})
	if err != nil {
		return res, err
	}

	s.scheduler.Invalidate(ctx, previous, day)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelAppointmentRequest) (dto.AppointmentResponse, error) {
	var day time.Time

	res, err := s.transition(ctx, id, model.OpCancel, events.AppointmentCancelled, func(tx *sqlx.Tx, appointment *model.Appointment, mod map[string]any) error {
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return failure.BadRequestFromString("cancellation reason is required") //nolint:wrapcheck
		}

		if err := s.scheduler.Release(ctx, tx, appointment.SlotDate, appointment.SlotLabel, appointment.ID); err != nil {
			return err //nolint:wrapcheck
		}

		day = appointment.SlotDate
		appointment.CancelReason = &reason
		mod[model.FieldCancelReason] = reason

		return nil
	})
	if err != nil {
		return res, err
	}

	s.scheduler.Invalidate(ctx, day)

	return res, nil
}

func (s *serviceImpl) Complete(ctx context.Context, id string, req dto.CompleteConsultationRequest) (dto.AppointmentResponse, error) {
	var day time.Time

	res, err := s.transition(ctx, id, model.OpComplete, events.AppointmentCompleted, func(tx *sqlx.Tx, appointment *model.Appointment, mod map[string]any) error {
		if err := s.scheduler.Release(ctx, tx, appointment.SlotDate, appointment.SlotLabel, appointment.ID); err != nil {
			return err //nolint:wrapcheck
		}

		now := s.now()
		actor := shared.ActorFromContext(ctx)
		notes := strings.TrimSpace(req.Notes)
		interest := req.InterestLevel

		day = appointment.SlotDate
		appointment.Notes = &notes
		appointment.InterestLevel = &interest
		appointment.CompletedAt = &now
		appointment.AgentID = &actor.ID

		mod[model.FieldNotes] = notes
		mod[model.FieldInterestLevel] = interest
		mod[model.FieldCompletedAt] = now
		mod[model.FieldAgentID] = actor.ID

		if req.QuotedPrice != nil {
			price := shared.RoundMoney(*req.QuotedPrice)
			validUntil := now.AddDate(0, 0, s.cfg.Booking.QuoteValidityDays)

			appointment.QuotedPrice = &price
			appointment.QuoteValidUntil = &validUntil

			mod[model.FieldQuotedPrice] = price
			mod[model.FieldQuoteValidUntil] = validUntil
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	s.scheduler.Invalidate(ctx, day)

	return res, nil
}

func (s *serviceImpl) MarkNoShow(ctx context.Context, id string) (dto.AppointmentResponse, error) {
	var day time.Time

	res, err := s.transition(ctx, id, model.OpNoShow, events.AppointmentNoShow, func(tx *sqlx.Tx, appointment *model.Appointment, _ map[string]any) error {
		day = appointment.SlotDate

		return s.scheduler.Release(ctx, tx, appointment.SlotDate, appointment.SlotLabel, appointment.ID) //nolint:wrapcheck
	})
	if err != nil {
		return res, err
	}

	s.scheduler.Invalidate(ctx, day)

	return res, nil
}

type mutation func(tx *sqlx.Tx, appointment *model.Appointment, mod map[string]any) error

// transition applies op under a row lock. The update is still guarded by the
// expected current status so a concurrent writer can never be overwritten.
func (s *serviceImpl) transition(ctx context.Context, id, op, eventType string, mutate mutation) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".transition")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	scope.SetAttribute("operation", op)

	actor := shared.ActorFromContext(ctx)

	var appointment model.Appointment

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		appointment, err = s.repo.GetForUpdateTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			return fmt.Errorf("failed to lock appointment: %w", err)
		}

		if appointment.ID == "" || !actor.Owns(appointment.CustomerID) {
			return failure.NotFound("appointment not found") //nolint:wrapcheck
		}

		if staffOnly(op) && !actor.IsStaff() {
			return failure.ResourceRestrictedError
		}

		next, err := model.Next(op, appointment.Status)
		if err != nil {
			return err //nolint:wrapcheck
		}

		current := appointment.Status
		mod := map[string]any{}

		if err := mutate(tx, &appointment, mod); err != nil {
			return err
		}

		now := s.now()
		appointment.Status = next
		appointment.ModifiedAt = now
		appointment.ModifiedBy = actor.ID

		mod[model.FieldStatus] = next
		mod[constant.FieldModifiedAt] = now
		mod[constant.FieldModifiedBy] = actor.ID

		affected, err := s.repo.UpdateTx(ctx, tx, mod, gDto.And(
			gDto.Eq(model.TableName, model.FieldID, appointment.ID),
			gDto.Filter{ArgName: "current_status", Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: current},
		))
		if err != nil {
			// Another live appointment already sits on the target slot.
			if postgres.IsUniqueViolation(err) {
				return failure.SlotUnavailable(appointment.SlotDate.Format(constant.DayFormat), appointment.SlotLabel) //nolint:wrapcheck
			}

			return fmt.Errorf("failed to update appointment: %w", err)
		}

		if affected == 0 {
			return failure.InvalidStateTransition(model.EntityName, current, op) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, failure.ErrSlotUnavailable) {
			s.metrics.IncSlotConflict()
		}

		log.Error().Err(err).Str("id", id).Str("operation", op).Msg("failed to transition appointment")

		return res, fmt.Errorf("failed to %s appointment: %w", op, err)
	}

	s.metrics.IncAppointmentTransition(appointment.Status)
	s.afterChange(ctx, appointment, eventType, actor.ID)

	res.FromModel(appointment)

	return res, nil
}

func staffOnly(op string) bool {
	switch op {
	case model.OpConfirm, model.OpComplete, model.OpNoShow:
		return true
	default:
		return false
	}
}

// InvalidateCache drops the cached appointment and every cached listing.
func InvalidateCache(ctx context.Context, redisCache cache.RedisCache, id string) {
	if err := redisCache.Delete(ctx, shared.BuildCacheKey(cachePrefix, id)); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("failed to invalidate appointment cache")
	}

	shared.InvalidateCaches(ctx, redisCache, cacheListPrefix)
}

func (s *serviceImpl) afterChange(ctx context.Context, appointment model.Appointment, eventType, actorID string) {
	InvalidateCache(ctx, s.cache, appointment.ID)

	var payload dto.AppointmentResponse
	payload.FromModel(appointment)

	events.PublishAsync(ctx, s.publisher, events.New(eventType, appointment.ID, actorID, payload))
}
