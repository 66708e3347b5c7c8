package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multistore/internal/api"
	"multistore/internal/web"
	"multistore/pkg/config"
	"multistore/pkg/logger"
	"multistore/pkg/memstore"
	"multistore/pkg/metrics"
	"multistore/pkg/middleware"
	"multistore/pkg/mongo"
	"multistore/pkg/postgres"
	"multistore/pkg/sqlite"
	"multistore/pkg/store"

	_ "multistore/docs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName = "api-service"
	initTimeout = 15 * time.Second
)

// @title           Multi-Store User API
// @version         1.0
// @description     The same five user operations served over MongoDB, PostgreSQL, SQLite and an in-memory store.
// @host            localhost:3000
// @BasePath        /api
// @schemes         http
func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env, serviceName)
	if err != nil {
		os.Stderr.WriteString("build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("starting api-service", zap.String("port", cfg.Port))

	stores := []store.UserStore{
		mongo.NewUserStore(cfg.Mongo, log),
		postgres.NewUserStore(cfg.Postgres, log),
		sqlite.NewUserStore(cfg.SQLite.Path, log),
		memstore.NewUserStore(),
	}
	initStores(stores, log)
	defer closeStores(stores, log)

	handlers := make([]*api.UserHandler, 0, len(stores))
	for _, s := range stores {
		if s.Name() == memstore.Backend {
			handlers = append(handlers, api.NewUserHandler(s, false, middleware.RequireHeader(cfg.APIKeyHeader)))
			continue
		}
		handlers = append(handlers, api.NewUserHandler(s, true))
	}

	assets, err := web.Assets(cfg.StaticDir)
	if err != nil {
		log.Fatal("failed to load static assets", zap.String("dir", cfg.StaticDir), zap.Error(err))
	}

	router := api.NewRouter(api.RouterConfig{
		Log:          log,
		Metrics:      metrics.NewHTTPMetrics(serviceName),
		Assets:       assets,
		Handlers:     handlers,
		APIKeyHeader: cfg.APIKeyHeader,
	})

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("server exited gracefully")
}

// initStores connects every backend independently. A backend that fails
// stays mounted and answers 503.
func initStores(stores []store.UserStore, log *zap.Logger) {
	for _, s := range stores {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		err := s.Init(ctx)
		cancel()
		if err != nil {
			log.Error("backend init failed", zap.String("backend", s.Name()), zap.Error(err))
			continue
		}
		log.Info("backend ready", zap.String("backend", s.Name()))
	}
}

func closeStores(stores []store.UserStore, log *zap.Logger) {
	for _, s := range stores {
		if err := s.Close(); err != nil {
			log.Warn("backend close failed", zap.String("backend", s.Name()), zap.Error(err))
		}
	}
}
