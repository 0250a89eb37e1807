package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Sjnjen/safety-for-her/internal/adapters/http"
	"github.com/Sjnjen/safety-for-her/internal/adapters/ipapi"
	natsadapter "github.com/Sjnjen/safety-for-her/internal/adapters/nats"
	"github.com/Sjnjen/safety-for-her/internal/adapters/newsapi"
	"github.com/Sjnjen/safety-for-her/internal/adapters/overpass"
	"github.com/Sjnjen/safety-for-her/internal/adapters/staticdata"
	"github.com/Sjnjen/safety-for-her/internal/adapters/valkey"
	"github.com/Sjnjen/safety-for-her/internal/core/domain"
	"github.com/Sjnjen/safety-for-her/internal/core/usecases"
	"github.com/Sjnjen/safety-for-her/internal/pkg/config"
	"github.com/Sjnjen/safety-for-her/internal/pkg/logging"
	"github.com/Sjnjen/safety-for-her/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("safety-for-her-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("safety-for-her-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache + contact persistence
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	contactStore := valkey.NewContactStore(cache)

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// External providers
	provider := ipapi.New(cfg.Location.URL, time.Duration(cfg.Location.TimeoutSeconds)*time.Second)
	places := overpass.New(cfg.Overpass.URL, time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)
	news := newsapi.New(cfg.News.URL, cfg.News.APIKey, time.Duration(cfg.News.TimeoutSeconds)*time.Second)
	incidents := staticdata.NewIncidentSource()

	// Use cases
	markerSvc := usecases.NewMarkerService(publisher)
	defaultCenter := domain.GeoPoint{Lat: cfg.Location.DefaultLat, Lon: cfg.Location.DefaultLon}
	mapSvc := usecases.NewMapService(markerSvc, provider, places, incidents, cache,
		defaultCenter, cfg.Map.DefaultZoom, cfg.Map.ServiceRadius)
	contactSvc := usecases.NewContactService(contactStore)
	trackingSvc := usecases.NewTrackingService(provider, publisher,
		time.Duration(cfg.Tracking.IntervalSeconds)*time.Second)
	newsSvc := usecases.NewNewsService(news, cache, publisher)
	reportSvc := usecases.NewReportService(provider, publisher)
	alertSvc := usecases.NewAlertService()

	// Restore persisted contacts and seed the map
	if err := contactSvc.Load(ctx); err != nil {
		slog.Warn("contact restore failed, starting empty", "error", err)
	}
	if err := mapSvc.Initialize(ctx); err != nil {
		slog.Warn("map initialization incomplete", "error", err)
	}

	// Periodic news refresh, broadcast to live clients
	if cfg.News.RefreshMinutes > 0 {
		go newsSvc.AutoRefresh(ctx, time.Duration(cfg.News.RefreshMinutes)*time.Minute)
	}

	deps := &http.Dependencies{
		Map:      mapSvc,
		Markers:  markerSvc,
		Contacts: contactSvc,
		Tracking: trackingSvc,
		News:     newsSvc,
		Reports:  reportSvc,
		Alerts:   alertSvc,
		NATS:     natsConn,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Safety For Her API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// End any running tracking session before the process goes away
	trackingSvc.Stop()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
