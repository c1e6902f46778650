package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	NATSURL         string
	APIBaseURL      string
	VehicleIDsFile  string
	RawDir          string
	OutputDir       string
	MaxWorkers      int
	LogNATSSubjects bool
	MetricsAddr     string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database URL: prefer DATABASE_URL / PG_DSN, else build from PG* vars
	dsn := firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)
	if dsn == "" {
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		if db == "" {
			return nil, errors.New("PGDATABASE or DATABASE_URL must be set")
		}
		sslmode := getenvDefault("PGSSLMODE", "disable")
		if pass != "" {
			cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
		} else {
			cfg.DatabaseURL = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
		}
	} else {
		cfg.DatabaseURL = dsn
	}

	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")

	cfg.APIBaseURL = getenvDefault("API_BASE_URL", "https://busdata.cs.pdx.edu/api/getBreadCrumbs")
	cfg.VehicleIDsFile = getenvDefault("VEHICLE_IDS_FILE", "ids.txt")
	cfg.RawDir = getenvDefault("RAW_DIR", "./busdata/raw_data")
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", "./busdata/output")

	// Collector fetch parallelism
	if v := os.Getenv("MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_WORKERS: %q", v)
		}
		cfg.MaxWorkers = n
	} else {
		cfg.MaxWorkers = 10
	}

	// Debug logging for NATS publish subjects
	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.LogNATSSubjects = true
		default:
			cfg.LogNATSSubjects = false
		}
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
