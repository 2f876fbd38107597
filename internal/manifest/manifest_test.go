package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"snowstack/internal/band"
)

func TestNewManifest(t *testing.T) {
	m := New()
	if m.RunID == "" {
		t.Error("New manifest has empty run ID")
	}
	if m.Version != Version {
		t.Errorf("version = %q, want %q", m.Version, Version)
	}
	if m.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}

	other := New()
	if other.RunID == m.RunID {
		t.Error("two runs share a run ID")
	}
}

func TestSetMonthReplaces(t *testing.T) {
	m := New()
	m.SetMonth(MonthEntry{Month: "April", Status: StatusStacked})
	m.SetMonth(MonthEntry{Month: "July", Status: StatusSkipped, MissingBands: []string{"red"}})
	m.SetMonth(MonthEntry{Month: "April", Status: StatusRendered})

	if len(m.Months) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.Months))
	}
	if m.Months[0].Month != "April" || m.Months[0].Status != StatusRendered {
		t.Errorf("first entry = %+v, want rendered April in original position", m.Months[0])
	}

	entry, ok := m.Month("July")
	if !ok || entry.Status != StatusSkipped {
		t.Errorf("Month(July) = %+v, %v", entry, ok)
	}
	if _, ok := m.Month("December"); ok {
		t.Error("Month(December) found a missing entry")
	}
}

func TestCounts(t *testing.T) {
	m := New()
	m.SetMonth(MonthEntry{Month: "April", Status: StatusRendered})
	m.SetMonth(MonthEntry{Month: "May", Status: StatusRendered})
	m.SetMonth(MonthEntry{Month: "June", Status: StatusSkipped})

	counts := m.Counts()
	if counts[StatusRendered] != 2 || counts[StatusSkipped] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.json")

	m := New()
	m.SetMonth(MonthEntry{
		Month:          "July",
		Status:         StatusRendered,
		StackPath:      "Results/July.tif",
		TrueColorPath:  "Results/RGB/July_RGB.png",
		FalseColorPath: "Results/FalseColor/July_FalseColor.png",
		BandStats: map[string]band.Stats{
			"red": {Min: 0, Max: 75, Mean: 37.5},
		},
	})

	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if m.FinishedAt.IsZero() {
		t.Error("Save did not stamp FinishedAt")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RunID != m.RunID {
		t.Errorf("run ID = %q, want %q", loaded.RunID, m.RunID)
	}
	entry, ok := loaded.Month("July")
	if !ok {
		t.Fatal("loaded manifest is missing July")
	}
	if entry.BandStats["red"].Max != 75 {
		t.Errorf("red max = %v, want 75", entry.BandStats["red"].Max)
	}

	// No temp file may survive a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after Save")
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	first := New()
	if err := first.Save(path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second := New()
	if err := second.Save(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RunID != second.RunID {
		t.Errorf("loaded run ID = %q, want the later run %q", loaded.RunID, second.RunID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}
