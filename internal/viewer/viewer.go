// Package viewer serves the rendered composites through a small HTTP
// browsing interface: a month slider backed by the true-color and
// false-color output directories. It performs no pixel transformation,
// only file serving and display.
package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// monthNames lists the twelve months in calendar order; the slider value
// 1–12 indexes into this list.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName resolves a 1-based calendar month number to its name.
func MonthName(n int) (string, error) {
	if n < 1 || n > 12 {
		return "", fmt.Errorf("month number %d out of range 1-12", n)
	}
	return monthNames[n-1], nil
}

// Server serves the viewer page and the rendered images.
type Server struct {
	trueColorDir   string
	falseColorDir  string
	allowedOrigins []string
}

// MonthInfo describes one month's outputs for the viewer frontend.
type MonthInfo struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	TrueColorURL  string `json:"true_color_url"`
	FalseColorURL string `json:"false_color_url"`
	Available     bool   `json:"available"`
}

// New creates a viewer Server over the two composite output directories.
func New(trueColorDir, falseColorDir string, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{
		trueColorDir:   trueColorDir,
		falseColorDir:  falseColorDir,
		allowedOrigins: allowedOrigins,
	}
}

// Routes wires middlewares and endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/api/months", s.handleMonths)
	r.Get("/images/true-color/{month}", s.handleImage(s.trueColorDir, "_RGB.png"))
	r.Get("/images/false-color/{month}", s.handleImage(s.falseColorDir, "_FalseColor.png"))

	return r
}

// handleMonths lists all twelve months with their image URLs and whether
// both composites exist on disk.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months := make([]MonthInfo, 0, len(monthNames))
	for i, name := range monthNames {
		n := i + 1
		months = append(months, MonthInfo{
			Number:        n,
			Name:          name,
			TrueColorURL:  fmt.Sprintf("/images/true-color/%d", n),
			FalseColorURL: fmt.Sprintf("/images/false-color/%d", n),
			Available:     s.available(name),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(months); err != nil {
		http.Error(w, "failed to encode months", http.StatusInternalServerError)
	}
}

// available reports whether both composites for a month exist.
func (s *Server) available(name string) bool {
	if _, err := os.Stat(filepath.Join(s.trueColorDir, name+"_RGB.png")); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(s.falseColorDir, name+"_FalseColor.png")); err != nil {
		return false
	}
	return true
}

// handleImage serves one composite image by month number (1-12).
func (s *Server) handleImage(dir, suffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil {
			http.Error(w, "month must be a number between 1 and 12", http.StatusBadRequest)
			return
		}
		name, err := MonthName(n)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		path := filepath.Join(dir, name+suffix)
		if _, err := os.Stat(path); err != nil {
			http.Error(w, fmt.Sprintf("no image for %s", name), http.StatusNotFound)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=60")
		http.ServeFile(w, r, path)
	}
}

// handleIndex serves the month-slider page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Evolution of snow in the South-West Alps</title>
<style>
  body { font-family: sans-serif; margin: 2rem; }
  .panes { display: flex; gap: 1rem; }
  .panes figure { flex: 1; margin: 0; }
  .panes img { width: 100%; }
  .missing { color: #888; }
</style>
</head>
<body>
<h1>Evolution of snow in the South-West Alps: Piedmont, Italy</h1>
<p>Monthly Sentinel-2 composites. Drag the slider to choose a month.</p>
<input id="month" type="range" min="1" max="12" value="1" step="1">
<h2 id="month-name"></h2>
<div class="panes">
  <figure>
    <figcaption>True-color image</figcaption>
    <img id="true-color" alt="true-color composite">
  </figure>
  <figure>
    <figcaption>False-color image</figcaption>
    <img id="false-color" alt="false-color composite">
  </figure>
</div>
<script>
let months = [];
const slider = document.getElementById('month');
function show() {
  const m = months[slider.value - 1];
  if (!m) return;
  document.getElementById('month-name').textContent =
    m.name + (m.available ? '' : ' (not rendered)');
  document.getElementById('true-color').src = m.true_color_url;
  document.getElementById('false-color').src = m.false_color_url;
}
fetch('/api/months').then(r => r.json()).then(data => { months = data; show(); });
slider.addEventListener('input', show);
</script>
</body>
</html>
`
