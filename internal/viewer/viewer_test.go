package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDirs(t *testing.T, months ...string) (string, string) {
	t.Helper()
	trueDir := filepath.Join(t.TempDir(), "RGB")
	falseDir := filepath.Join(t.TempDir(), "FalseColor")
	for _, dir := range []string{trueDir, falseDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range months {
		for _, f := range []string{
			filepath.Join(trueDir, m+"_RGB.png"),
			filepath.Join(falseDir, m+"_FalseColor.png"),
		} {
			if err := os.WriteFile(f, []byte("png bytes"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return trueDir, falseDir
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		n       int
		want    string
		wantErr bool
	}{
		{1, "January", false},
		{4, "April", false},
		{12, "December", false},
		{0, "", true},
		{13, "", true},
		{-1, "", true},
	}

	for _, tt := range tests {
		got, err := MonthName(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("MonthName(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("MonthName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestHandleMonths(t *testing.T) {
	trueDir, falseDir := testDirs(t, "January", "July")
	srv := httptest.NewServer(New(trueDir, falseDir, nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/months")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var months []MonthInfo
	if err := json.NewDecoder(resp.Body).Decode(&months); err != nil {
		t.Fatalf("failed to decode months: %v", err)
	}
	if len(months) != 12 {
		t.Fatalf("got %d months, want 12", len(months))
	}
	if months[0].Name != "January" || !months[0].Available {
		t.Errorf("January = %+v, want available", months[0])
	}
	if months[6].Name != "July" || !months[6].Available {
		t.Errorf("July = %+v, want available", months[6])
	}
	if months[1].Name != "February" || months[1].Available {
		t.Errorf("February = %+v, want unavailable", months[1])
	}
	if months[6].TrueColorURL != "/images/true-color/7" {
		t.Errorf("July true-color URL = %q", months[6].TrueColorURL)
	}
}

func TestHandleImage(t *testing.T) {
	trueDir, falseDir := testDirs(t, "April")
	srv := httptest.NewServer(New(trueDir, falseDir, nil).Routes())
	defer srv.Close()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/images/true-color/4", http.StatusOK},
		{"/images/false-color/4", http.StatusOK},
		{"/images/true-color/5", http.StatusNotFound},
		{"/images/true-color/0", http.StatusBadRequest},
		{"/images/true-color/13", http.StatusBadRequest},
		{"/images/true-color/April", http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
	}
}

func TestHandleImageCaching(t *testing.T) {
	trueDir, falseDir := testDirs(t, "April")
	srv := httptest.NewServer(New(trueDir, falseDir, nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/images/true-color/4")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "max-age") {
		t.Errorf("Cache-Control = %q, want a max-age directive", cc)
	}
}

func TestHandleIndex(t *testing.T) {
	trueDir, falseDir := testDirs(t)
	srv := httptest.NewServer(New(trueDir, falseDir, nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}
