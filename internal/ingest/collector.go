package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Client fetches breadcrumb records from the TriMet breadcrumb API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ReadVehicleIDs reads one vehicle ID per line, skipping blanks.
func ReadVehicleIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("vehicle id %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	return ids, scanner.Err()
}

// FetchVehicle returns the day's records for one vehicle.
func (c *Client) FetchVehicle(ctx context.Context, vehicleID int64) ([]Record, error) {
	url := fmt.Sprintf("%s?vehicle_id=%d", c.BaseURL, vehicleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicle %d: %w", vehicleID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch vehicle %d: status %s", vehicleID, resp.Status)
	}
	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode vehicle %d: %w", vehicleID, err)
	}
	return records, nil
}

// FetchAll fetches every vehicle with at most workers requests in flight and
// hands each result to fn. fn runs concurrently and must be safe for that.
func (c *Client) FetchAll(ctx context.Context, ids []int64, workers int, fn func(vehicleID int64, records []Record, err error)) error {
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			records, err := c.FetchVehicle(ctx, id)
			fn(id, records, err)
			return nil
		})
	}
	return g.Wait()
}

// SaveRaw writes a vehicle's records to <dir>/vehicle_<id>_<date>.json for
// later replay or audit.
func SaveRaw(dir string, vehicleID int64, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("vehicle_%d_%s.json", vehicleID, time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("save raw data for vehicle %d: %w", vehicleID, err)
	}
	return path, nil
}
