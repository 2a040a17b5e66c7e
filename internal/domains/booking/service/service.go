package service

import (
	"context"
	"fmt"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/booking/model"
	"voyage/internal/domains/booking/model/dto"
	"voyage/internal/domains/booking/repository"
	"voyage/shared"
	"voyage/shared/cache"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/events"
	"voyage/shared/failure"
	"voyage/shared/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

var allowedSortBy = []string{
	constant.FieldCreatedAt,
	model.FieldFinalAmount,
	model.FieldStatus,
	model.FieldReferenceCode,
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	tx        postgres.Transactor
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	tx postgres.Transactor,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	booking := req.ToModel(actor.ID, s.cfg.Booking.DefaultCurrency)

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.InsertTx(ctx, tx, booking)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.IncBookingCreated(booking.Kind, booking.Status)

	res.FromModel(booking)
	events.PublishAsync(ctx, s.publisher, events.New(events.BookingCreated, booking.ID, actor.ID, res))

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	req.Sanitize(allowedSortBy...)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error) {
	actor := shared.ActorFromContext(ctx)

	return s.GetAll(ctx, req, gDto.And(gDto.Eq(model.TableName, model.FieldCustomerID, actor.ID)))
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get booking")

			return res, fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return res, failure.NotFound("booking not found") // nolint:wrapcheck
		}

		res.FromModel(booking)

		go func(snapshot dto.BookingResponse) {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, snapshot, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save booking to cache")
			}
		}(res)
	}

	if !shared.ActorFromContext(ctx).Owns(res.CustomerID) {
		return dto.BookingResponse{}, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return res, nil
}

// InvalidateCache drops every cached view of a booking after a committed change.
func InvalidateCache(ctx context.Context, redisCache cache.RedisCache, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := redisCache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to invalidate booking cache")
		}

		shared.InvalidateCaches(c, redisCache, cacheGetAllBooking)
		shared.InvalidateCaches(c, redisCache, cacheCountBooking)
	}()
}
