package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
	"voyage/config"
	"voyage/shared/constant"
	"voyage/shared/events"
	"voyage/transport/http/middleware"
	"voyage/transport/http/response"
	"voyage/transport/http/router"

	_ "voyage/docs" // swagger spec

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const readHeaderTimeout = 10 * time.Second

type HTTP struct {
	Config        *config.Config
	Router        router.Router
	AppMiddleware middleware.AppMiddleware
	flush         events.Shutdown
	state         atomic.Int32
	mux           *chi.Mux
	server        *http.Server
}

func New(cfg *config.Config, r router.Router, appMiddleware middleware.AppMiddleware, flush events.Shutdown) *HTTP {
	return &HTTP{
		Config:        cfg,
		Router:        r,
		AppMiddleware: appMiddleware,
		flush:         flush,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) Serve() {
	h.setup()
	h.setupGracefulShutdown()

	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// ServeHTTP lets serverless runtimes drive the router without a listener.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.mux == nil {
		h.setup()
	}

	h.mux.ServeHTTP(w, r)
}

func (h *HTTP) setup() {
	h.setupRoutes()
	h.state.Store(int32(ServerStateReady))
}

func (h *HTTP) setupRoutes() {
	h.mux = chi.NewRouter()

	h.mux.Use(chiMiddleware.RequestID)
	h.mux.Use(chiMiddleware.RealIP)
	h.mux.Use(chiMiddleware.Recoverer)

	if h.Config.App.CORS.Enable {
		h.mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   h.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   h.Config.App.CORS.AllowedHeaders,
			AllowCredentials: h.Config.App.CORS.AllowCredentials,
			MaxAge:           h.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	h.mux.Use(h.AppMiddleware.Tracing)
	h.mux.Use(h.AppMiddleware.RateLimit())

	h.mux.Get("/healthz", h.health)
	h.mux.Handle("/metrics", promhttp.Handler())

	if h.Config.Server.Env != constant.ServerEnvProduction {
		h.mux.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	h.Router.SetupRoutes(h.mux)
}

func (h *HTTP) health(w http.ResponseWriter, _ *http.Request) {
	switch h.State() {
	case ServerStateReady:
		response.WithMessage(w, http.StatusOK, "OK")
	case ServerStateInGracePeriod:
		response.WithPreparingShutdown(w)
	default:
		response.WithUnhealthy(w)
	}
}

func (h *HTTP) setupGracefulShutdown() {
	serverStateCh := make(chan os.Signal, 1)

	signal.Notify(serverStateCh, os.Interrupt, syscall.SIGTERM)

	go h.respondToSigterm(serverStateCh)
}

func (h *HTTP) respondToSigterm(done chan os.Signal) {
	<-done

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		h.shutdown(0)

		return
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Msg("Received SIGTERM.")
	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

	h.state.Store(int32(ServerStateInGracePeriod))

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.state.Store(int32(ServerStateInCleanupPeriod))

	h.shutdown(time.Duration(shutdownConfig.CleanupPeriodSeconds) * time.Second)

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}

// shutdown drains in-flight requests, then pending domain events, sharing one
// deadline of at least a second.
func (h *HTTP) shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), max(timeout, time.Second))
	defer cancel()

	if h.server != nil {
		if err := h.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down HTTP server gracefully")
		}
	}

	if h.flush != nil {
		if err := h.flush(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to flush domain events")
		}
	}
}
