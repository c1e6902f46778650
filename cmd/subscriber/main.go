package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"breadcrumb-analytics/internal/config"
	"breadcrumb-analytics/internal/ingest"
	"breadcrumb-analytics/internal/metrics"
	"breadcrumb-analytics/internal/publisher"
	"breadcrumb-analytics/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	if err := store.Ping(ctx, db); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	days, err := ingest.NewDayFiles(cfg.OutputDir)
	if err != nil {
		log.Fatalf("output dir error: %v", err)
	}
	defer days.Close()

	sub, err := publisher.NewNATSSubscriber(cfg.NATSURL, wrapPublisherMetrics(mcol), func(rec ingest.Record) {
		if err := days.Write(rec); err != nil {
			log.Printf("write record: %v", err)
			return
		}
		if mcol != nil {
			mcol.RecordsReceived.Inc()
		}
	})
	if err != nil {
		log.Fatalf("nats error: %v", err)
	}
	defer sub.Close()

	log.Printf("listening for breadcrumbs, writing day files to %s", cfg.OutputDir)

	// When the date rolls over, close the finished day's file and load it.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("shutdown complete")
			return
		case <-ticker.C:
			current := time.Now().UTC().Format("2006-01-02")
			for _, date := range days.CloseOld(current) {
				path := ingest.DayFilePath(cfg.OutputDir, date)
				log.Printf("starting load for %s", date)
				inserted, err := ingest.LoadDayFile(ctx, db, path, date, true, mcol)
				if err != nil {
					log.Printf("load error for %s: %v", date, err)
					continue
				}
				log.Printf("load completed for %s: %d rows", date, inserted)
			}
		}
	}
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &subMetrics{c: c}
}

type subMetrics struct{ c *metrics.Collector }

func (p *subMetrics) PublishedInc()                  { p.c.RecordsPublished.Inc() }
func (p *subMetrics) PublishErrInc()                 { p.c.PublishErrs.Inc() }
func (p *subMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *subMetrics) SetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
