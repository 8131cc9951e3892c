package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/smartsupply-backend/internal/api/routes"
	"github.com/georgemunganga/smartsupply-backend/internal/config"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/database/migrate"
	"github.com/georgemunganga/smartsupply-backend/internal/journal"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	"github.com/georgemunganga/smartsupply-backend/internal/metrics"
	supplyredis "github.com/georgemunganga/smartsupply-backend/internal/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.WarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	db, err := database.Open(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if cfg.DB.AutoMigrate {
		if err := migrate.Up(ctx, db.DB, db.Driver(), logg); err != nil {
			return err
		}
	}

	var idempotency supplyredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, redisErr := supplyredis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() { err = multierr.Append(err, client.Close()) }()
		idempotency = client
	} else {
		logg.Warn(ctx, "redis not configured, Idempotency-Key headers are ignored")
	}

	j, err := journal.New(cfg.Journal.Dir, logg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          db,
			Journal:     j,
			Metrics:     metrics.New(reg),
			Gatherer:    reg,
			Idempotency: idempotency,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logg.WithFields(gctx, map[string]any{
			"env":  cfg.App.Env,
			"addr": server.Addr,
		}), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
