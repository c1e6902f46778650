package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"breadcrumb-analytics/internal/breadcrumb"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// FetchReadings returns every breadcrumb reading, oldest first. Ordering is
// presentation convenience only; the aggregations downstream are
// order-independent.
func FetchReadings(ctx context.Context, db *sql.DB) ([]breadcrumb.Reading, error) {
	q := `SELECT tstamp, latitude, longitude, speed, trip_id FROM BreadCrumb ORDER BY tstamp`
	return scanReadings(db.QueryContext(ctx, q))
}

// FetchReadingsForDate returns the readings whose tstamp falls on the given
// calendar date (YYYY-MM-DD).
func FetchReadingsForDate(ctx context.Context, db *sql.DB, date string) ([]breadcrumb.Reading, error) {
	q := `SELECT tstamp, latitude, longitude, speed, trip_id FROM BreadCrumb WHERE DATE(tstamp) = $1 ORDER BY tstamp`
	return scanReadings(db.QueryContext(ctx, q, date))
}

func scanReadings(rows *sql.Rows, err error) ([]breadcrumb.Reading, error) {
	if err != nil {
		return nil, fmt.Errorf("query breadcrumbs: %w", err)
	}
	defer rows.Close()
	var readings []breadcrumb.Reading
	for rows.Next() {
		var r breadcrumb.Reading
		if err := rows.Scan(&r.TStamp, &r.Latitude, &r.Longitude, &r.Speed, &r.TripID); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// FetchTrips returns every trip record.
func FetchTrips(ctx context.Context, db *sql.DB) ([]breadcrumb.Trip, error) {
	q := `SELECT trip_id, route_id, vehicle_id, service_key, direction FROM Trip`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()
	var trips []breadcrumb.Trip
	for rows.Next() {
		var t breadcrumb.Trip
		if err := rows.Scan(&t.TripID, &t.RouteID, &t.VehicleID, &t.ServiceKey, &t.Direction); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteDay removes all breadcrumbs for a calendar date, so a day file can be
// reloaded without duplicates. Returns the number of rows removed.
func DeleteDay(ctx context.Context, db *sql.DB, date string) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM BreadCrumb WHERE DATE(tstamp) = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete breadcrumbs for %s: %w", date, err)
	}
	return res.RowsAffected()
}

// InsertTrips inserts trip records, skipping trip IDs already present.
func InsertTrips(ctx context.Context, db *sql.DB, trips []breadcrumb.Trip) error {
	if len(trips) == 0 {
		return nil
	}
	q := `INSERT INTO Trip (trip_id, route_id, vehicle_id, service_key, direction)
	      VALUES ($1, $2, $3, $4, $5)
	      ON CONFLICT (trip_id) DO NOTHING`
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range trips {
		if _, err := stmt.ExecContext(ctx, t.TripID, t.RouteID, t.VehicleID, t.ServiceKey, t.Direction); err != nil {
			return fmt.Errorf("insert trip %d: %w", t.TripID, err)
		}
	}
	return tx.Commit()
}

const insertBatchSize = 1000

// InsertReadings inserts breadcrumbs in batches of 1000 inside a single
// transaction. Returns the number of rows handed to the database.
func InsertReadings(ctx context.Context, db *sql.DB, readings []breadcrumb.Reading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO BreadCrumb (tstamp, latitude, longitude, speed, trip_id)
	                                     VALUES ($1, $2, $3, $4, $5)
	                                     ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var count int64
	for i := 0; i < len(readings); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(readings) {
			end = len(readings)
		}
		for _, r := range readings[i:end] {
			if _, err := stmt.ExecContext(ctx, r.TStamp, r.Latitude, r.Longitude, r.Speed, r.TripID); err != nil {
				return count, fmt.Errorf("insert breadcrumb: %w", err)
			}
			count++
		}
	}
	return count, tx.Commit()
}

// CountForDate reports how many breadcrumbs exist for a calendar date, used
// to verify a load.
func CountForDate(ctx context.Context, db *sql.DB, date string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM BreadCrumb WHERE DATE(tstamp) = $1`, date).Scan(&n)
	return n, err
}
