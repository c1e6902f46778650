package main

import (
	"context"
	"log"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"breadcrumb-analytics/internal/config"
	"breadcrumb-analytics/internal/ingest"
	"breadcrumb-analytics/internal/metrics"
	"breadcrumb-analytics/internal/publisher"
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

	pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
	if err != nil {
		log.Fatalf("nats error: %v", err)
	}
	defer pub.Close()

	ids, err := ingest.ReadVehicleIDs(cfg.VehicleIDsFile)
	if err != nil {
		log.Fatalf("read vehicle ids: %v", err)
	}
	log.Printf("read %d vehicle ids from %s", len(ids), cfg.VehicleIDsFile)

	start := time.Now()
	var fetched, published, errors int64

	client := ingest.NewClient(cfg.APIBaseURL)
	err = client.FetchAll(ctx, ids, cfg.MaxWorkers, func(vehicleID int64, records []ingest.Record, err error) {
		if err != nil {
			log.Printf("vehicle %d: %v", vehicleID, err)
			atomic.AddInt64(&errors, 1)
			if mcol != nil {
				mcol.FetchErrs.Inc()
			}
			return
		}
		if mcol != nil {
			mcol.VehiclesProcessed.Inc()
			mcol.RecordsFetched.Add(float64(len(records)))
		}
		atomic.AddInt64(&fetched, int64(len(records)))
		log.Printf("received %d records for vehicle %d", len(records), vehicleID)

		if _, err := ingest.SaveRaw(cfg.RawDir, vehicleID, records); err != nil {
			log.Printf("save raw data for vehicle %d: %v", vehicleID, err)
		}

		for _, rec := range records {
			if err := pub.PublishRecord(rec); err != nil {
				log.Printf("publish error for vehicle %d: %v", vehicleID, err)
				atomic.AddInt64(&errors, 1)
				continue
			}
			atomic.AddInt64(&published, 1)
		}
	})
	if err != nil {
		log.Fatalf("fetch error: %v", err)
	}

	log.Printf("collection finished in %s: fetched %d, published %d, errors %d",
		time.Since(start).Round(time.Millisecond), fetched, published, errors)
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) PublishedInc()                  { p.c.RecordsPublished.Inc() }
func (p *pubMetrics) PublishErrInc()                 { p.c.PublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) SetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
