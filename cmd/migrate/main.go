package main

import (
	"context"
	"flag"
	"os"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/georgemunganga/smartsupply-backend/internal/config"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/database/migrate"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|reset|redo|up-to|down-to")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.WarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	db, err := database.Open(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer db.Close()

	if err := migrate.Run(ctx, db.DB, db.Driver(), logg, *cmd, flag.Args()...); err != nil {
		logg.Error(ctx, "migration failed", err)
		db.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migration finished")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialise", err)
	os.Exit(1)
}
