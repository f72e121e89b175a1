package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/reconcile"
	"hotel-pms/routes"
	"hotel-pms/services"
)

func main() {
	_ = godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.ConnectDatabase(); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connected")

	store := services.NewSyncStore(config.DB)
	runner := reconcile.NewRunner(store, log.Logger, settings.SyncWorkers)

	roomService := services.NewRoomService(config.DB)
	bookingService := services.NewBookingService(config.DB, runner)
	guestService := services.NewGuestService(config.DB)
	availabilityService := services.NewAvailabilityService(config.DB)
	activityService := services.NewActivityService(config.DB)

	if settings.SyncOnStart {
		batch, err := runner.ReconcileAll(context.Background(), time.Now())
		if err != nil {
			log.Error().Err(err).Msg("startup reconciliation failed")
		} else {
			log.Info().
				Str("run_id", batch.RunID).
				Int("updated", batch.Summary.Updated).
				Int("unchanged", batch.Summary.Unchanged).
				Int("skipped", batch.Summary.Skipped).
				Int("errors", batch.Summary.Errors).
				Msg("startup reconciliation complete")
		}
	}

	router := routes.SetupRouter(
		controllers.NewRoomController(roomService, runner),
		controllers.NewBookingController(bookingService),
		controllers.NewGuestController(guestService),
		controllers.NewSyncController(runner),
		controllers.NewAvailabilityController(availabilityService),
		controllers.NewActivityController(activityService),
		settings.CORSOrigins,
	)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", settings.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
