package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-data-aggregation/internal/api/http"
	"github.com/i474232898/weather-data-aggregation/internal/config"
	"github.com/i474232898/weather-data-aggregation/internal/export"
	"github.com/i474232898/weather-data-aggregation/internal/logging"
	"github.com/i474232898/weather-data-aggregation/internal/scheduler"
	"github.com/i474232898/weather-data-aggregation/internal/store"
	"github.com/i474232898/weather-data-aggregation/internal/weather"
	"github.com/i474232898/weather-data-aggregation/internal/weather/providers"
)

type startUpOptions struct {
	Config string `short:"c" long:"config" description:"Path to a YAML config file. Environment variables override it."`
}

func main() {
	options := &startUpOptions{}
	if _, err := flags.Parse(options); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// Load configuration.
	cfg, err := config.Load(options.Config)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	snapshots, closeStore, err := buildStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer closeStore()

	provs := buildProviders(cfg, httpClient, log)

	opts := []weather.Option{weather.WithLogger(log)}
	if cfg.Influx.Addr != "" {
		sink, err := export.NewInfluxSink(export.InfluxConfig{
			Addr:     cfg.Influx.Addr,
			Username: cfg.Influx.User,
			Password: cfg.Influx.Password,
			Database: cfg.Influx.Database,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to configure influx export")
		}
		defer sink.Close()
		opts = append(opts, weather.WithSinks(sink))
	}

	// Core service orchestrating providers and store.
	service := weather.NewService(snapshots, provs, opts...)

	// Scheduler that periodically fetches and stores data.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service, log)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-data-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-data-aggregation",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.DisplayUnits())

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}

// buildStore returns the SQLite store when a path is configured and the
// in-memory store otherwise.
func buildStore(cfg *config.AppConfig) (weather.Store, func(), error) {
	if cfg.SQLitePath == "" {
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}, nil
	}
	db, err := store.NewSQLite(cfg.SQLitePath, cfg.StoreMaxAge)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// buildProviders instantiates the enabled providers in configured order,
// skipping any whose credentials are missing.
func buildProviders(cfg *config.AppConfig, client *http.Client, log logrus.FieldLogger) []weather.Provider {
	var provs []weather.Provider
	for _, name := range cfg.Providers {
		var p weather.Provider
		switch name {
		case config.ProviderWttrIn:
			p = providers.NewWttrInProvider(client)
		case config.ProviderWeatherAPI:
			if cfg.WeatherAPIKey == "" {
				log.WithField(logging.FieldProvider, name).Warn("WEATHERAPI_API_KEY not set; provider disabled")
				continue
			}
			p = providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey)
		case config.ProviderOpenWeather:
			if cfg.OpenWeatherAPIKey == "" {
				log.WithField(logging.FieldProvider, name).Warn("OPENWEATHER_API_KEY not set; provider disabled")
				continue
			}
			p = providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey)
		case config.ProviderOpenMeteo:
			// Open-Meteo needs coordinates; without a geocoder only
			// locations with lat/lon configured can be served.
			var geo providers.Geocoder
			if cfg.GeocoderAPIKey != "" {
				geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
			}
			p = providers.NewOpenMeteoProvider(client, geo)
		default:
			continue
		}

		if cfg.CacheTTL > 0 {
			p = providers.NewCached(p, cfg.CacheTTL)
		}
		provs = append(provs, p)
	}
	return provs
}
