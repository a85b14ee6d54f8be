package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/seed"
	"blogicum/internal/store"
)

func main() {
	file := flag.String("file", "", "YAML file with categories and locations (built-in set when empty)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}

	data := seed.Default()
	if *file != "" {
		if data, err = seed.Load(*file); err != nil {
			slog.Error("load seed file", "error", err)
			os.Exit(1)
		}
	}

	res, err := seed.Apply(context.Background(), store.New(conn), data, time.Now().UTC())
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed done",
		"categories_created", res.CategoriesCreated,
		"categories_skipped", res.CategoriesSkipped,
		"locations_created", res.LocationsCreated,
		"locations_skipped", res.LocationsSkipped,
	)
}
