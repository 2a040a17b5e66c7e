//go:build wireinject
// +build wireinject

package di

import (
	"voyage/config"
	"voyage/infras/jwt"
	"voyage/infras/kafka"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/infras/redis"
	"voyage/infras/s3"
	"voyage/permissions"
	"voyage/shared/cache"
	"voyage/shared/events"
	"voyage/shared/metrics"
	"voyage/transport/http"
	"voyage/transport/http/middleware"
	"voyage/transport/http/router"

	appointmentRepository "voyage/internal/domains/appointment/repository"
	appointmentService "voyage/internal/domains/appointment/service"
	bookingRepository "voyage/internal/domains/booking/repository"
	bookingService "voyage/internal/domains/booking/service"
	conversionService "voyage/internal/domains/conversion/service"
	corporateRepository "voyage/internal/domains/corporate/repository"
	corporateService "voyage/internal/domains/corporate/service"

	"github.com/google/wire"

	appointmentHandler "voyage/internal/handlers/appointment"
	bookingHandler "voyage/internal/handlers/booking"
	corporateHandler "voyage/internal/handlers/corporate"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	kafka.New,
	s3.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewPublisher,
	events.NewShutdown,
	metrics.NewDefault,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentRepository.NewSlot,
	appointmentService.NewScheduler,
	appointmentService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingRepository.NewTransaction,
	bookingService.New,
	bookingService.NewLedger,
)

var conversionDomain = wire.NewSet(
	conversionService.New,
)

var corporateDomain = wire.NewSet(
	corporateRepository.New,
	corporateRepository.NewCompany,
	corporateRepository.NewEmployee,
	corporateRepository.NewRate,
	corporateRepository.NewBudget,
	corporateService.New,
)

var domains = wire.NewSet(
	appointmentDomain,
	bookingDomain,
	conversionDomain,
	corporateDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	appointmentHandler.New,
	bookingHandler.New,
	corporateHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
