package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsefit/coach-backend/internal/actor"
	"github.com/pulsefit/coach-backend/internal/app"
	"github.com/pulsefit/coach-backend/internal/db"
	"github.com/pulsefit/coach-backend/internal/middleware"
	"github.com/pulsefit/coach-backend/internal/observability"
	"github.com/pulsefit/coach-backend/internal/platform/cryptoutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/realtime"
	"github.com/pulsefit/coach-backend/internal/server"
	"github.com/pulsefit/coach-backend/internal/services"
	"github.com/pulsefit/coach-backend/internal/usecase"

	"github.com/google/uuid"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (no-op unless OTEL_ENABLED)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "coach-backend",
		Environment: cfg.LogMode,
		Version:     version,
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("postgres auto migration failed", "error", err)
	}

	// Credential sealing
	box, err := cryptoutil.NewBox(cfg.CredentialsSecret)
	if err != nil {
		log.Fatal("credential box init failed", "error", err)
	}

	// Coach model
	var ai services.CoachAI
	if cfg.OpenAIKey != "" {
		ai, err = services.NewOpenAICoach(log, cfg.OpenAIKey)
		if err != nil {
			log.Fatal("coach model init failed", "error", err)
		}
	} else {
		log.Warn("no OPENAI_API_KEY set, coach replies are canned")
		ai = services.NewOfflineCoach(log)
	}

	// Event bus
	var bus services.EventBus
	if cfg.RedisAddr != "" {
		bus, err = services.NewRedisBus(log, cfg.RedisAddr, cfg.EventChannel)
		if err != nil {
			log.Fatal("redis bus init failed", "error", err)
		}
	} else {
		log.Warn("no REDIS_ADDR set, events are dropped")
		bus = services.NopBus{}
	}
	defer bus.Close()

	// Wearable providers
	clients := usecase.IntegrationClients{}
	for _, pc := range cfg.Providers {
		client, err := services.NewHTTPIntegrationClient(log, pc.Name, pc.BaseURL, pc.ClientID, pc.ClientSecret)
		if err != nil {
			log.Fatal("integration client init failed", "provider", pc.Name, "error", err)
		}
		clients[pc.Name] = client
	}

	// Actors
	registry := actor.NewRegistry(&actor.Shared{
		DB:      postgresService.DB(),
		Box:     box,
		AI:      ai,
		Bus:     bus,
		Clients: clients,
		Log:     log,
	})
	defer registry.Close()

	gateway := realtime.NewGateway(log, func(ctx context.Context, userID uuid.UUID) (realtime.ActorHandle, error) {
		return registry.Actor(ctx, userID)
	})

	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		Registry:       registry,
		Gateway:        gateway,
		AuthMiddleware: middleware.NewAuthMiddleware(log, cfg.JWTSecret),
		AllowOrigins:   cfg.AllowOrigins,
	})

	// Maintenance ticker
	tickerStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				registry.TickAll()
			case <-tickerStop:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	close(tickerStop)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := postgresService.Close(); err != nil {
		log.Error("postgres close failed", "error", err)
	}
	if otelShutdown != nil {
		if err := otelShutdown(ctx); err != nil {
			log.Error("otel shutdown failed", "error", err)
		}
	}
}
