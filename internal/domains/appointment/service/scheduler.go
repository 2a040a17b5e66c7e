package service

//go:generate go run go.uber.org/mock/mockgen -source=./scheduler.go -destination=../mocks/scheduler_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slices"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/internal/domains/appointment/model"
	"voyage/internal/domains/appointment/repository"
	"voyage/shared"
	"voyage/shared/cache"
	"voyage/shared/constant"
	"voyage/shared/failure"
	"voyage/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const slotCachePrefix = "slot:available"

// Clock is the time source used for past-date checks and quote validity.
type Clock func() time.Time

// Scheduler hands out consultation slots. A slot is held by at most one live
// appointment per day; Reserve and Release run inside the caller's transaction
// so the claim commits or rolls back together with the appointment row.
type Scheduler interface {
	AvailableSlots(ctx context.Context, day time.Time) ([]string, error)
	Reserve(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) error
	Release(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) error
	Invalidate(ctx context.Context, days ...time.Time)
}

type schedulerImpl struct {
	slots repository.Slot
	cache cache.RedisCache
	cfg   *config.Config
	otel  otel.Otel
	now   Clock
}

func NewScheduler(slots repository.Slot, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel) Scheduler {
	return NewSchedulerWithClock(slots, redisCache, cfg, otel, timezone.Now)
}

func NewSchedulerWithClock(slots repository.Slot, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel, now Clock) Scheduler {
	return &schedulerImpl{
		slots: slots,
		cache: redisCache,
		cfg:   cfg,
		otel:  otel,
		now:   now,
	}
}

func slotCacheKey(day time.Time) string {
	return shared.BuildCacheKey(slotCachePrefix, day.Format(constant.DayFormat))
}

// AvailableSlots lists unclaimed catalog slots for day in catalog order. The
// answer may be stale by up to the cache TTL; Reserve is the authority.
func (s *schedulerImpl) AvailableSlots(ctx context.Context, day time.Time) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".scheduler.AvailableSlots")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	key := slotCacheKey(day)

	if err = s.cache.Get(ctx, key, &res); err == nil {
		return res, nil
	}

	claimed, err := s.slots.Claimed(ctx, day)
	if err != nil {
		log.Error().Err(err).Str("date", day.Format(constant.DayFormat)).Msg("failed to list claimed slots")

		return nil, fmt.Errorf("failed to list claimed slots: %w", err)
	}

	res = make([]string, 0, len(model.SlotCatalog))

	for _, label := range model.SlotCatalog {
		if !slices.Contains(claimed, label) {
			res = append(res, label)
		}
	}

	if err := s.cache.Save(ctx, key, res, s.cfg.Booking.SlotCacheTTLSeconds); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache available slots")
	}

	return res, nil
}

func (s *schedulerImpl) Reserve(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".scheduler.Reserve")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	if !model.IsValidSlot(slot) {
		return failure.BadRequestFromString(fmt.Sprintf("unknown slot %q", slot)) //nolint:wrapcheck
	}

	if timezone.StartOfDay(day).Before(timezone.StartOfDay(s.now())) {
		return failure.BadRequestFromString("date must not be in the past") //nolint:wrapcheck
	}

	claimed, err := s.slots.Claim(ctx, tx, model.SlotReservation{
		SlotDate:      day,
		SlotLabel:     slot,
		AppointmentID: appointmentID,
		ReservedAt:    s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}

	if !claimed {
		return failure.SlotUnavailable(day.Format(constant.DayFormat), slot) //nolint:wrapcheck
	}

	return nil
}

func (s *schedulerImpl) Release(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".scheduler.Release")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	if err = s.slots.Release(ctx, tx, day, slot, appointmentID); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}

	return nil
}

// Invalidate drops cached availability after a claim change has committed.
func (s *schedulerImpl) Invalidate(ctx context.Context, days ...time.Time) {
	for _, day := range days {
		if err := s.cache.Delete(ctx, slotCacheKey(day)); err != nil {
			log.Warn().Err(err).Str("date", day.Format(constant.DayFormat)).Msg("failed to invalidate slot cache")
		}
	}
}
