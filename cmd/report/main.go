package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"breadcrumb-analytics/internal/breadcrumb"
	"breadcrumb-analytics/internal/classify"
	"breadcrumb-analytics/internal/config"
	"breadcrumb-analytics/internal/report"
	"breadcrumb-analytics/internal/store"
)

func main() {
	date := flag.String("date", "", "restrict to one calendar date (YYYY-MM-DD); all data when empty")
	dbName := flag.String("db", "", "override the database name in the configured DSN")
	top := flag.Int("top", 5, "how many trips to list in the fastest-trips report")
	latMin := flag.Float64("lat-min", 45.50, "window south edge")
	latMax := flag.Float64("lat-max", 45.52, "window north edge")
	lonMin := flag.Float64("lon-min", -122.68, "window west edge")
	lonMax := flag.Float64("lon-max", -122.66, "window east edge")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
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

	var readings []breadcrumb.Reading
	if *date != "" {
		readings, err = store.FetchReadingsForDate(ctx, db, *date)
	} else {
		readings, err = store.FetchReadings(ctx, db)
	}
	if err != nil {
		log.Fatalf("fetch readings: %v", err)
	}
	trips, err := store.FetchTrips(ctx, db)
	if err != nil {
		log.Fatalf("fetch trips: %v", err)
	}
	log.Printf("loaded %d readings, %d trips", len(readings), len(trips))

	fmt.Println("Readings per day of week")
	for _, dc := range report.ReadingsPerDayOfWeek(readings) {
		fmt.Printf("  %-9s %d\n", dc.Day, dc.Count)
	}

	fmt.Println("Average readings per day of week")
	for _, dc := range report.AvgReadingsPerDayOfWeek(readings) {
		fmt.Printf("  %-9s %d\n", dc.Day, dc.Count)
	}

	fmt.Println("Maximum speed")
	if max, ok := report.TopSpeed(readings); ok {
		fmt.Printf("  %.2f m/s\n", max)
	} else {
		fmt.Println("  no speed data")
	}

	fmt.Printf("Top %d trips by average speed\n", *top)
	for _, t := range report.FastestTrips(readings, *top) {
		fmt.Printf("  trip %d: %.2f m/s over %d readings near (%.4f, %.4f)\n",
			t.TripID, t.AvgSpeed, t.Count, t.AvgLat, t.AvgLon)
	}

	fmt.Println("Longest trip by duration")
	if lt, ok := report.LongestTrip(readings); ok {
		fmt.Printf("  trip %d: %s (%s to %s)\n", lt.TripID, lt.Duration,
			lt.Start.Format(time.RFC3339), lt.End.Format(time.RFC3339))
	} else {
		fmt.Println("  no trip data")
	}

	box := classify.BoundingBox{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax}
	fmt.Printf("Trips through window (%.4f..%.4f, %.4f..%.4f)\n", box.LatMin, box.LatMax, box.LonMin, box.LonMax)
	for _, id := range report.TripsThroughWindow(readings, box) {
		fmt.Printf("  trip %d\n", id)
	}

	fmt.Println("Distinct vehicles per speed")
	for _, b := range report.VehicleSpeedHistogram(readings, trips) {
		fmt.Printf("  %.2f m/s: %d vehicles\n", b.Speed, b.VehicleCount)
	}

	fmt.Println("Rush hour activity")
	printPeriods(report.RushHourActivity(readings))

	fmt.Println("Quadrant activity")
	printPeriods(report.QuadrantActivity(readings, classify.PortlandSplit))

	fmt.Println("Day type comparison")
	printPeriods(report.DayTypeComparison(readings))
}

func printPeriods(stats []report.PeriodStat) {
	for _, s := range stats {
		fmt.Printf("  %-9s %8d readings, avg speed %.2f m/s\n", s.Label, s.Count, s.AvgSpeed)
	}
}
