package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// History is the session's record list mirrored to a JSON file. All
// mutations funnel through Append and Clear so the persisted copy always
// matches memory. Not safe for concurrent use; the client drives it from a
// single event loop.
type History struct {
	path    string
	records []Record
}

// Load reads the history file at path. A missing, unreadable, or corrupt
// file yields an empty history rather than an error.
func Load(path string) *History {
	h := &History{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return h
	}
	h.records = records
	return h
}

// Records returns the history in insertion order. The caller must not
// mutate the returned slice.
func (h *History) Records() []Record { return h.records }

// Len returns the number of records.
func (h *History) Len() int { return len(h.records) }

// Append adds a record and re-persists the full history.
func (h *History) Append(rec Record) error {
	h.records = append(h.records, rec)
	if err := h.save(); err != nil {
		return fmt.Errorf("session.Append: %w", err)
	}
	return nil
}

// Clear removes all records and persists an empty array. The caller is
// responsible for obtaining user confirmation first.
func (h *History) Clear() error {
	h.records = nil
	if err := h.save(); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}

func (h *History) save() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	data, err := h.marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0o644)
}

func (h *History) marshal() ([]byte, error) {
	records := h.records
	if records == nil {
		records = []Record{} // persist [] rather than null
	}
	return json.MarshalIndent(records, "", "  ")
}

// Export writes the full history to path as a standalone JSON document.
func (h *History) Export(path string) error {
	data, err := h.marshal()
	if err != nil {
		return fmt.Errorf("session.Export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("session.Export: %w", err)
	}
	return nil
}

// ExportFilename returns the default export name for a given day,
// e.g. "optimizations-2026-08-26.json".
func ExportFilename(t time.Time) string {
	return "optimizations-" + t.Format("2006-01-02") + ".json"
}

// Aggregates computes the session summary on demand.
func (h *History) Aggregates() Summary {
	var s Summary
	for _, r := range h.records {
		s.Count++
		s.TotalCostUSD += r.TotalCostUSD
		s.TokensSaved += r.TokensSaved
		s.CostSavedUSD += r.CostSavedUSD
	}
	return s
}

// CumulativeCosts returns the running sum of total cost per record index.
func (h *History) CumulativeCosts() []float64 {
	series := make([]float64, len(h.records))
	var sum float64
	for i, r := range h.records {
		sum += r.TotalCostUSD
		series[i] = sum
	}
	return series
}
