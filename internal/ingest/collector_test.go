package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadVehicleIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	assert.NoError(t, os.WriteFile(path, []byte("3001\n\n  3002 \n3003\n"), 0o644))

	ids, err := ReadVehicleIDs(path)
	assert.NoError(t, err)
	assert.Equal(t, []int64{3001, 3002, 3003}, ids)
}

func TestReadVehicleIDsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	assert.NoError(t, os.WriteFile(path, []byte("3001\nbus\n"), 0o644))

	_, err := ReadVehicleIDs(path)
	assert.Error(t, err)
}

func TestFetchVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3001", r.URL.Query().Get("vehicle_id"))
		w.Write([]byte(`[{"EVENT_NO_TRIP":100,"VEHICLE_ID":3001,"ACT_TIME":60,"METERS":10}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	records, err := c.FetchVehicle(context.Background(), 3001)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int64(100), records[0].EventNoTrip)
	assert.Equal(t, int64(3001), records[0].VehicleID)
}

func TestFetchVehicleBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchVehicle(context.Background(), 3001)
	assert.Error(t, err)
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vehicle_id") == "2" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"EVENT_NO_TRIP":1}]`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	got := make(map[int64]bool)
	c := NewClient(srv.URL)
	err := c.FetchAll(context.Background(), []int64{1, 2, 3}, 2, func(id int64, records []Record, err error) {
		mu.Lock()
		defer mu.Unlock()
		got[id] = err == nil && len(records) == 1
	})
	assert.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 2: false, 3: true}, got)
}

func TestSaveRaw(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	path, err := SaveRaw(dir, 3001, []Record{{EventNoTrip: 100, VehicleID: 3001}})
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"EVENT_NO_TRIP": 100`)
}
