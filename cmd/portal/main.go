package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dynamicfusion/expense-portal/internal/api"
	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
	"github.com/dynamicfusion/expense-portal/internal/core/service"
	"github.com/dynamicfusion/expense-portal/internal/gateway"
	"github.com/dynamicfusion/expense-portal/internal/infrastructure/db/redis"
	"github.com/dynamicfusion/expense-portal/internal/pkg/config"
	"github.com/dynamicfusion/expense-portal/internal/session"
	"github.com/dynamicfusion/expense-portal/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()
	rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connection failed")
	}
	defer rdb.Close()

	backend := gateway.New(cfg.BackendURL, cfg.BackendTimeout, log)

	sessions := session.NewStore(cfg.SessionTTL)
	sessions.OnChange(func(id string, ev ports.SessionEvent) {
		switch ev {
		case ports.SessionCreated:
			metrics.SessionsActive.Inc()
		case ports.SessionDestroyed:
			metrics.SessionsActive.Dec()
		}
	})

	e := api.NewRouter(api.Deps{
		Backend:    backend,
		Sessions:   sessions,
		Auth:       service.NewAuthService(backend, sessions, log),
		Tokens:     redis.NewAttachmentTokenStore(rdb, cfg.AttachmentTokenTTL),
		Redis:      rdb,
		SessionTTL: cfg.SessionTTL,
		Logger:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	log.Info().Msg("portal stopped")
}
