package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/api"
	"github.com/bobby-s-dev/sentinel-backend/internal/config"
	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/bobby-s-dev/sentinel-backend/internal/observability"
	"github.com/bobby-s-dev/sentinel-backend/internal/scheduler"
	"github.com/bobby-s-dev/sentinel-backend/internal/services"
	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger = newLogger(cfg.Server.LogLevel)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("Starting Sentinel backend")

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	monitor := client.NewHealthMonitor(client.MonitorConfig{
		MinRequests:  cfg.Health.MinRequests,
		FailureRatio: cfg.Health.FailureRatio,
		Window:       cfg.Health.Window,
		OpenTimeout:  cfg.Health.OpenTimeout,
	}, metrics, logger)

	base := client.NewBaseClient(client.ClientConfig{
		UserAgent:      cfg.Upstream.UserAgent,
		DefaultTimeout: cfg.SWPC.Timeout,
	}, monitor, metrics, logger)

	aggregator := services.NewAggregator(base, logger)

	resolver := services.NewTileResolver(map[models.LayerType]client.TileSource{
		models.LayerRadar:       client.NewRainViewerTiles(cfg.Maps.RainViewerHost, "radar", 600),
		models.LayerRadarStatic: client.NewRainViewerTiles(cfg.Maps.RainViewerHost, "radar", 86400),
		models.LayerClouds:      client.NewRainViewerTiles(cfg.Maps.RainViewerHost, "satellite", 600),
		models.LayerTemp:        &client.OpenWeatherTiles{BaseURL: cfg.Maps.OWMTileURL, APIKey: cfg.Maps.OWMAPIKey, Layer: "temp_new", MaxAge: 3600},
		models.LayerCloudsOWM:   &client.OpenWeatherTiles{BaseURL: cfg.Maps.OWMTileURL, APIKey: cfg.Maps.OWMAPIKey, Layer: "clouds_new", MaxAge: 3600},
		models.LayerOWM:         &client.OpenWeatherTiles{BaseURL: cfg.Maps.OWMTileURL, APIKey: cfg.Maps.OWMAPIKey, MaxAge: 3600},
	})
	tiles := services.NewTileProxy(resolver, base, cfg.Maps.TileTimeout, metrics, logger)

	svc := api.Services{
		Solar: services.NewSolarService(aggregator, services.SWPCEndpoints{
			SolarIndicesURL: cfg.SWPC.SolarIndicesURL,
			KpURL:           cfg.SWPC.KpURL,
			WindURL:         cfg.SWPC.WindURL,
			XrayURL:         cfg.SWPC.XrayURL,
		}, cfg.SWPC.Timeout, clock, metrics, logger),
		Radar:   services.NewRadarService(aggregator, cfg.Maps.RainViewerMapsURL, cfg.Maps.InfoTimeout, clock, logger),
		Tiles:   tiles,
		Meteo:   services.NewMeteoService(client.NewOpenMeteoClient(base, cfg.Meteo.URL, cfg.Meteo.Timeout), logger),
		Transit: services.NewTransitService(client.NewTransitClient(base, cfg.Transit.URL, cfg.Transit.Timeout), logger),
		Moon:    services.NewMoonService(client.NewHorizonsClient(base, cfg.Moon.URL, cfg.Moon.Timeout), clock, logger),
		Health:  monitor,
	}

	healthScheduler := scheduler.NewScheduler(monitor, tiles, cfg.Health.ReportSchedule, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          api.ErrorHandler,
		DisableStartupMessage: true,
	})

	handler := api.NewHandler(svc, cfg.Moon.DefaultLat, cfg.Moon.DefaultLon, logger)
	api.SetupRoutes(app, handler, cfg.Server.CORSOrigins)

	if err := healthScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.L()
	}
	return logger
}
