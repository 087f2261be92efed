package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/grading-assistant/api/swagger"
	"github.com/noah-isme/grading-assistant/internal/drafts"
	"github.com/noah-isme/grading-assistant/internal/handler"
	"github.com/noah-isme/grading-assistant/internal/remote"
	"github.com/noah-isme/grading-assistant/internal/repository"
	"github.com/noah-isme/grading-assistant/internal/service"
	"github.com/noah-isme/grading-assistant/pkg/cache"
	"github.com/noah-isme/grading-assistant/pkg/config"
	"github.com/noah-isme/grading-assistant/pkg/database"
	"github.com/noah-isme/grading-assistant/pkg/logger"
	"github.com/noah-isme/grading-assistant/pkg/storage"
)

// @title Grading Assistant API
// @version 0.1.0
// @description Stages grades locally and syncs them to the remote gradebook
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewLocalStorage(cfg.DataDir)
	if err != nil {
		logr.Fatal("failed to prepare data dir", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
	}

	var db *sqlx.DB
	if cfg.History.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr),
		metrics,
		cfg.Remote.AssignmentsCacheTTL,
		logr,
		redisClient != nil,
	)
	connections := service.NewConnectionService(repository.NewConnectionRepository(store, logr), validate, cacheSvc, logr)

	var stateRepo service.ClientStateRepository
	if redisClient != nil {
		stateRepo = repository.NewRedisClientStateRepository(redisClient)
	} else {
		stateRepo = repository.NewFileClientStateRepository(store)
	}
	clientState := service.NewClientStateService(stateRepo, logr)

	history := newHistoryService(ctx, db, cfg.History, logr)
	history.Start(ctx)

	factory := service.NewRemoteFactory(remote.Options{
		Timeout:  cfg.Remote.Timeout,
		PerPage:  cfg.Remote.PerPage,
		Logger:   logr,
		Observer: metrics,
	})
	gateway := service.NewSyncGateway(validate, metrics, history, logr)
	catalog := service.NewCatalogService(connections, factory, gateway, cacheSvc, cfg.Remote.AssignmentsCacheTTL, logr)
	session := service.NewSessionService(service.SessionDeps{
		Connections: connections,
		Factory:     factory,
		Gateway:     gateway,
		State:       clientState,
		Metrics:     metrics,
		Policy: drafts.ReconcilePolicy{
			AdvanceStatusBase: cfg.Sync.AdvanceStatusBase,
			AdvanceRubricBase: cfg.Sync.AdvanceRubricBase,
		},
		Logger: logr,
	})

	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		session.RunAutosave(ctx, cfg.Session.AutosaveInterval)
	}()

	checks := map[string]handler.ReadinessCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}

	r := newRouter(cfg, logr, metrics, routeHandlers{
		config:  handler.NewConfigHandler(connections),
		catalog: handler.NewCatalogHandler(catalog),
		session: handler.NewSessionHandler(session),
		state:   handler.NewStateHandler(clientState),
		history: handler.NewHistoryHandler(history),
		metrics: handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	<-autosaveDone
	history.Stop()
	logr.Info("server stopped")
}

func newHistoryService(ctx context.Context, db *sqlx.DB, cfg config.HistoryConfig, logr *zap.Logger) *service.HistoryService {
	historyCfg := service.HistoryConfig{Workers: cfg.Workers, Retries: cfg.Retries}
	if db == nil {
		return service.NewHistoryService(nil, historyCfg, logr)
	}
	repo := repository.NewHistoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logr.Fatal("failed to prepare history schema", zap.Error(err))
	}
	return service.NewHistoryService(repo, historyCfg, logr)
}
