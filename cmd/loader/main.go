package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"breadcrumb-analytics/internal/config"
	"breadcrumb-analytics/internal/ingest"
	"breadcrumb-analytics/internal/store"
)

func main() {
	noClear := flag.Bool("no-clear", false, "do not clear existing breadcrumbs for the date before loading")
	dbName := flag.String("db", "", "override the database name in the configured DSN")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Default to yesterday: the day whose file is complete.
	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if flag.NArg() > 0 {
		date = flag.Arg(0)
		if _, err := time.Parse("2006-01-02", date); err != nil {
			log.Fatalf("date must be YYYY-MM-DD: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dsn := cfg.DatabaseURL
	if *dbName != "" {
		dsn, err = store.WithDBName(dsn, *dbName)
		if err != nil {
			log.Fatalf("compose DSN: %v", err)
		}
	}
	db, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	if err := store.Ping(ctx, db); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	path := ingest.DayFilePath(cfg.OutputDir, date)
	log.Printf("loading breadcrumbs for %s from %s", date, path)
	inserted, err := ingest.LoadDayFile(ctx, db, path, date, !*noClear, nil)
	if err != nil {
		log.Fatalf("load error: %v", err)
	}
	log.Printf("loaded %d rows for %s", inserted, date)
}
