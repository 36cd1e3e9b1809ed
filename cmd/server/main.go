package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mbergo/guardrails/cmd"
	"github.com/mbergo/guardrails/internal/catalog"
	"github.com/mbergo/guardrails/internal/config"
	"github.com/mbergo/guardrails/internal/gateway"
	"github.com/mbergo/guardrails/internal/guardrail"
	"github.com/mbergo/guardrails/internal/history"
	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/internal/llm/google"
	"github.com/mbergo/guardrails/internal/llm/openai"
	"github.com/mbergo/guardrails/internal/platform/logger"
	"github.com/mbergo/guardrails/internal/platform/otel"
	"github.com/mbergo/guardrails/internal/server"
	"github.com/mbergo/guardrails/internal/store/cache"
	"github.com/mbergo/guardrails/internal/store/cache/memory"
	"github.com/mbergo/guardrails/internal/store/cache/redis"
	"github.com/mbergo/guardrails/internal/store/sqlite"
	"github.com/mbergo/guardrails/pkg/api"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logCfg := logger.DefaultConfig()
	logCfg.Env = cfg.Server.Env
	logger.Initialize(logCfg)
	defer logger.Sync()

	log := logger.Get()

	if cfg.Server.UpdateCheck {
		go cmd.CheckForUpdates()
	}

	shutdownTracer, err := otel.InitTracer("guardrails-api", cmd.AppVersion, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	repo, err := sqlite.NewSQLiteStorage(cfg.Store.DSN)
	if err != nil {
		log.Fatal("Failed to open reference store", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	var cacheSvc cache.CacheService
	if cfg.Redis.Enabled {
		redisCache, err := redis.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		cacheSvc = redisCache
		log.Info("Catalog cache backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		cacheSvc = memory.NewMemoryCache()
	}

	adapters := llm.AdapterSet{
		api.ProviderGoogle: google.NewAdapter(cfg.Google.BaseURL),
		api.ProviderOpenAI: openai.NewAdapter(cfg.OpenAI.BaseURL),
	}
	creds := llm.Credentials{
		api.ProviderGoogle: cfg.Google.APIKey,
		api.ProviderOpenAI: cfg.OpenAI.APIKey,
	}
	for _, p := range api.Providers() {
		if _, ok := creds.Resolve(p); !ok {
			log.Warn("Provider has no API key configured; its catalog and calls will degrade",
				zap.String("provider", string(p)))
		}
	}

	fetcher := catalog.NewFetcher(adapters, creds, nil)
	catalogSvc := catalog.NewService(log, fetcher, cacheSvc, cfg.Catalog.TTL())

	ring := history.NewRing(cfg.History.Size)
	recorder := history.NewRecorder(log, ring)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder.Start(ctx)
	defer recorder.Stop()

	gatewaySvc := gateway.NewService(log, adapters, creds, nil, cfg.Server.RequestTimeout(), recorder)

	registry := guardrail.DefaultRegistry(repo.Reference())
	runner := guardrail.NewRunner(log, registry, gatewaySvc)

	srv := server.New(cfg, log, server.Deps{
		Version:   cmd.AppVersion,
		Gateway:   gatewaySvc,
		Catalog:   catalogSvc,
		Guardrail: registry,
		Runner:    runner,
		History:   ring,
		Creds:     creds,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("Starting guardrails API",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("version", cmd.AppVersion))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
