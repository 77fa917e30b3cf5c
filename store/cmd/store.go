package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/medstore/internal/backup"
	"github.com/Alturino/medstore/internal/common/constants"
	"github.com/Alturino/medstore/internal/config"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/middleware"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/service"
	"github.com/Alturino/medstore/store/internal/controller"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wires every controller of the store api on one router.
func NewRouter(svc *service.StoreService) *mux.Router {
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Use(otelmux.Middleware(constants.APP_STORE_SERVICE), middleware.Logging)
	router.Handle("/metrics", otelhttp.NewHandler(promhttp.Handler(), "metrics")).Methods(http.MethodGet)

	controller.AttachMedicineController(router, svc)
	controller.AttachCartController(router, svc)
	controller.AttachBackupController(router, svc)
	controller.AttachReportController(router, svc)
	return router
}

// RunStoreService serves the store api until c is cancelled. When a backup
// schedule is configured, Scheduled backups run alongside the server.
func RunStoreService(c context.Context, cfg *config.Config, svc *service.StoreService) error {
	c, span := inOtel.Tracer.Start(c, "RunStoreService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_STORE_SERVICE).
		Str(log.KeyTag, "main RunStoreService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.APP_STORE_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("initialized otel sdk")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "shutting down otel").Logger()
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := inOtel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()

	if cfg.Backup.Schedule != "" {
		logger = logger.With().Str(log.KeyProcess, "initializing backup scheduler").Logger()
		logger.Info().Msg("initializing backup scheduler")
		c = logger.WithContext(c)
		scheduler, err := backup.NewScheduler(c, cfg.Backup.Schedule, svc)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		scheduler.Start()
		logger.Info().Msg("started backup scheduler")
		defer func() {
			logger := logger.With().Str(log.KeyProcess, "stopping backup scheduler").Logger()
			logger.Info().Msg("stopping backup scheduler")
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				logger.Error().Err(err).Msg("backup still running while shutting down")
				return
			}
			logger.Info().Msg("stopped backup scheduler")
		}()
	}

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      NewRouter(svc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	logger.Info().Msg("initialized server")

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("encounter error=%w while running server", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		return nil
	case <-c.Done():
	}

	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown server")
	return nil
}
