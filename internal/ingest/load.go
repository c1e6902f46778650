package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"breadcrumb-analytics/internal/metrics"
	"breadcrumb-analytics/internal/store"
)

// LoadDayFile loads one day's JSONL file into the database: parse, derive
// speeds, insert trips then breadcrumbs. When clearExisting is set the date's
// existing breadcrumbs are removed first so a file can be replayed without
// duplicates. Returns the number of breadcrumb rows inserted.
func LoadDayFile(ctx context.Context, db *sql.DB, path, date string, clearExisting bool, mcol *metrics.Collector) (int64, error) {
	start := time.Now()

	records, badLines, err := ReadDayFile(path)
	if err != nil {
		return 0, fmt.Errorf("read day file %s: %w", path, err)
	}
	log.Printf("read %d valid records from %s (%d undecodable lines)", len(records), path, badLines)
	if len(records) == 0 {
		return 0, nil
	}

	trips, readings, skipped := BuildTripsAndReadings(records)
	if skipped > 0 {
		log.Printf("skipped %d records with malformed timestamps", skipped)
	}
	if mcol != nil {
		mcol.ParseErrs.Add(float64(badLines + skipped))
	}

	if clearExisting {
		removed, err := store.DeleteDay(ctx, db, date)
		if err != nil {
			return 0, err
		}
		log.Printf("removed %d existing breadcrumbs for %s", removed, date)
	}

	if err := store.InsertTrips(ctx, db, trips); err != nil {
		return 0, err
	}
	log.Printf("inserted %d trips", len(trips))

	inserted, err := store.InsertReadings(ctx, db, readings)
	if err != nil {
		return inserted, err
	}
	if mcol != nil {
		mcol.RecordsLoaded.Add(float64(inserted))
		mcol.LoadDuration.Observe(time.Since(start).Seconds())
	}

	total, err := store.CountForDate(ctx, db, date)
	if err != nil {
		return inserted, err
	}
	log.Printf("total breadcrumbs in database for %s: %d", date, total)
	return inserted, nil
}
