package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DayFilePath names the JSONL file for one calendar date.
func DayFilePath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("breadcrumbs_%s.jsonl", date))
}

// DayFiles appends records to per-date JSONL files, one open handle per date.
// Handles for past dates are closed as the date rolls over.
type DayFiles struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

func NewDayFiles(dir string) (*DayFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DayFiles{dir: dir, files: make(map[string]*os.File)}, nil
}

// Write appends one record to the file for its service date. Records whose
// timestamp cannot be parsed land in the current date's file rather than
// being dropped.
func (d *DayFiles) Write(rec Record) error {
	date := time.Now().UTC().Format("2006-01-02")
	if ts, err := ParseTimestamp(rec.OpdDate, rec.ActTime); err == nil {
		date = ts.Format("2006-01-02")
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[date]
	if !ok {
		f, err = os.OpenFile(DayFilePath(d.dir, date), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		d.files[date] = f
		log.Printf("opened day file for %s", date)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// CloseOld closes handles for every date except current and returns the
// closed dates, so the caller can kick off loads for completed days.
func (d *DayFiles) CloseOld(current string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var closed []string
	for date, f := range d.files {
		if date == current {
			continue
		}
		if err := f.Close(); err != nil {
			log.Printf("close day file %s: %v", date, err)
		}
		delete(d.files, date)
		closed = append(closed, date)
	}
	return closed
}

// Close closes every open handle.
func (d *DayFiles) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for date, f := range d.files {
		if err := f.Close(); err != nil {
			log.Printf("close day file %s: %v", date, err)
		}
		delete(d.files, date)
	}
}

// ReadDayFile reads a JSONL day file, skipping lines that fail to decode.
// badLines counts the skipped lines.
func ReadDayFile(path string) (records []Record, badLines int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(text, &rec); err != nil {
			log.Printf("skipping undecodable line %d in %s", line, path)
			badLines++
			continue
		}
		records = append(records, rec)
	}
	return records, badLines, scanner.Err()
}
