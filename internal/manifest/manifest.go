// Package manifest records the outcome of a pipeline run: which months were
// stacked, skipped, or rendered, the per-band statistics, and the output
// paths. The manifest is persisted as JSON next to the results so re-runs
// and the viewer can see what the last run produced.
//
// Writes are atomic (temp file + rename) so a crash mid-write never leaves
// a truncated manifest behind.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"snowstack/internal/band"
)

// Version identifies the manifest file format.
const Version = "1"

// Status values for month entries.
const (
	StatusStacked      = "stacked"
	StatusSkipped      = "skipped"
	StatusRendered     = "rendered"
	StatusRenderFailed = "render_failed"
)

// MonthEntry records the pipeline outcome for one month.
type MonthEntry struct {
	Month          string                `json:"month"`
	Status         string                `json:"status"`
	Reason         string                `json:"reason,omitempty"`
	MissingBands   []string              `json:"missing_bands,omitempty"`
	StackPath      string                `json:"stack_path,omitempty"`
	TrueColorPath  string                `json:"true_color_path,omitempty"`
	FalseColorPath string                `json:"false_color_path,omitempty"`
	BandStats      map[string]band.Stats `json:"band_stats,omitempty"`
}

// Manifest describes one complete pipeline run.
type Manifest struct {
	Version    string       `json:"version"`
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Months     []MonthEntry `json:"months"`
}

// New creates a Manifest for a run starting now, with a fresh run ID.
func New() *Manifest {
	return &Manifest{
		Version:   Version,
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

// SetMonth records an entry, replacing any existing entry for the same
// month. Month order follows first insertion, which matches the lexical
// processing order of the pipeline.
func (m *Manifest) SetMonth(entry MonthEntry) {
	for i := range m.Months {
		if m.Months[i].Month == entry.Month {
			m.Months[i] = entry
			return
		}
	}
	m.Months = append(m.Months, entry)
}

// Month returns the entry for a month, if present.
func (m *Manifest) Month(name string) (MonthEntry, bool) {
	for _, e := range m.Months {
		if e.Month == name {
			return e, true
		}
	}
	return MonthEntry{}, false
}

// Counts returns how many months finished in each status.
func (m *Manifest) Counts() map[string]int {
	counts := make(map[string]int)
	for _, e := range m.Months {
		counts[e.Status]++
	}
	return counts
}

// Save writes the manifest atomically to path, stamping FinishedAt.
func (m *Manifest) Save(path string) error {
	m.FinishedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest into place: %w", err)
	}
	return nil
}

// Load reads a manifest previously written by Save.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
