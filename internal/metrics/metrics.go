package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	VehiclesProcessed prometheus.Counter
	FetchErrs         prometheus.Counter
	RecordsFetched    prometheus.Counter

	RecordsPublished prometheus.Counter
	PublishErrs      prometheus.Counter
	NATSConnected    prometheus.Gauge
	PublishDuration  prometheus.Histogram

	RecordsReceived prometheus.Counter
	RecordsLoaded   prometheus.Counter
	ParseErrs       prometheus.Counter

	LoadDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		VehiclesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_vehicles_processed_total",
			Help: "Total vehicles fetched from the breadcrumb API.",
		}),
		FetchErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_fetch_errors_total",
			Help: "Total failed vehicle fetches.",
		}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_records_fetched_total",
			Help: "Total breadcrumb records fetched from the API.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		PublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "breadcrumbs_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "breadcrumbs_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		RecordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_records_received_total",
			Help: "Total records received from NATS and written to day files.",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_records_loaded_total",
			Help: "Total breadcrumb rows inserted into the database.",
		}),
		ParseErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breadcrumbs_parse_errors_total",
			Help: "Total records skipped for malformed timestamps or JSON.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "breadcrumbs_load_duration_seconds",
			Help:    "Duration of a full day-file load.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
	}

	reg.MustRegister(
		c.VehiclesProcessed, c.FetchErrs, c.RecordsFetched,
		c.RecordsPublished, c.PublishErrs, c.NATSConnected, c.PublishDuration,
		c.RecordsReceived, c.RecordsLoaded, c.ParseErrs, c.LoadDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
