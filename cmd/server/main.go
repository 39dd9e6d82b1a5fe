package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/clock"
	"github.com/chiragcj27/chariot-sub001/internal/config"
	"github.com/chiragcj27/chariot-sub001/internal/database"
	"github.com/chiragcj27/chariot-sub001/internal/handler"
	"github.com/chiragcj27/chariot-sub001/internal/logger"
	"github.com/chiragcj27/chariot-sub001/internal/metrics"
	"github.com/chiragcj27/chariot-sub001/internal/middleware"
	"github.com/chiragcj27/chariot-sub001/internal/queue"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/router"
	"github.com/chiragcj27/chariot-sub001/internal/service"
)

func main() {
	cfg := config.Load()

	log := logger.InitLogger(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: cfg.ServiceName,
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(strings.ReplaceAll(cfg.ServiceName, "-", "_"), reg)

	sellers, products, db := openStores(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.RabbitURL)
	} else {
		log.Warn("RABBITMQ_URL not set, lifecycle events are disabled")
	}

	clk := clock.System{}
	life := service.NewLifecycle(service.Dependencies{
		Sellers:       sellers,
		Products:      products,
		Clock:         clk,
		Publisher:     publisher,
		Logger:        log,
		Metrics:       m,
		MaxAttempts:   cfg.MaxAttempts,
		CascadeSweeps: cfg.CascadeSweeps,
	})

	if cfg.RabbitURL != "" {
		consumer := &queue.Consumer{
			URL:     cfg.RabbitURL,
			LogDir:  cfg.LifecycleLogDir,
			Retrier: life,
			Logger:  log.Named("consumer"),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("lifecycle consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID)
	e.Use(logger.Middleware(log))
	e.Use(m.Middleware())

	deps := router.Deps{
		Admin:      handler.NewAdminHandler(life, clk),
		Seller:     handler.NewSellerHandler(life, clk),
		Storefront: handler.NewStorefrontHandler(life),
		JWTSecret:  cfg.JWTSecret,
		Gatherer:   reg,
	}
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		deps.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		deps.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	} else {
		log.Warn("redis unavailable, running without rate limiting and response cache")
	}
	router.Register(e, deps)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStores returns the configured stores.  db is nil for the memory
// store.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.SellerStore, repository.ProductStore, *sql.DB) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store, state is lost on restart")
		mem := repository.NewMemoryStore()
		return mem.Sellers(), mem.Products(), nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.Migrate(migrateCtx, db); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	log.Info("database ready", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	return repository.NewSellerRepo(db), repository.NewProductRepo(db), db
}
