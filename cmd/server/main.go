// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"stayledger/internal/platform/config"
	"stayledger/internal/platform/httpserver"
	"stayledger/internal/platform/logger"
	"stayledger/internal/platform/middleware"
	platformredis "stayledger/internal/platform/redis"
	"stayledger/internal/tracking/cache"
	"stayledger/internal/tracking/handler"
	"stayledger/internal/tracking/metrics"
	"stayledger/internal/tracking/service"
	"stayledger/internal/tracking/store"
	httptransport "stayledger/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trackingStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	trackingMetrics := metrics.New()
	resultCache := cache.New(redisClient, cfg.Redis.ResultTTL, log)

	trackingService, err := service.New(trackingStore,
		service.WithLogger(log),
		service.WithMetrics(trackingMetrics),
		service.WithResultCache(resultCache),
	)
	if err != nil {
		log.Error("service init failed", "error", err.Error())
		os.Exit(1)
	}

	var validator middleware.JWTValidator
	if cfg.JWTSigningKey != "" {
		validator = middleware.NewHMACValidator(cfg.JWTSigningKey)
	}

	trackingHandler := handler.New(trackingService, log)
	router := httptransport.NewRouter(trackingHandler, log, validator)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting stayledger", "addr", cfg.Addr, "auth", validator != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

// buildStore selects persistence: postgres when a DSN is configured,
// otherwise the in-memory store.
func buildStore(ctx context.Context, cfg config.Server) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}
