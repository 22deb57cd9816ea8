package main

import (
	"context"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-cache/internal/api/http"
	"github.com/i474232898/weather-cache/internal/config"
	"github.com/i474232898/weather-cache/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background refresher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	cfg, log, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	c, err := build(cfg, log)
	if err != nil {
		return err
	}

	// Refresher keeps the configured locations warm.
	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, c.cache, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := newApp(cfg, c, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
		return err
	}
	return nil
}

func newApp(cfg *config.AppConfig, c *components, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-cache",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(ctx *fiber.Ctx) error {
		locations := c.store.Keys()
		slices.Sort(locations)
		return ctx.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-cache",
			"entries":   len(locations),
			"locations": locations,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, c.cache, httpapi.Options{
		Geocoder:        c.geocoder,
		DefaultLocation: cfg.DefaultLocation,
		Logger:          log,
	})
	return app
}
