// SPDX-License-Identifier: MPL-2.0

package dashboard

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

type (
	// Server is the dashboard HTTP server.
	Server struct {
		// ResultsDir is where baseline result files live.
		ResultsDir string
		// LogDir is where sweep summaries live.
		LogDir string
		// StaticDir serves the dashboard assets. Empty disables it.
		StaticDir string
		// LaunchSweep starts a sweep in the background. Nil disables the
		// run-benchmark endpoint.
		LaunchSweep func()
		// Logger receives request logging. Nil uses the default logger.
		Logger *log.Logger
	}

	// Data is the /api/data response.
	Data struct {
		// Baseline maps size preset to GFLOPS from the baseline summary.
		Baseline map[string]float64 `json:"baseline"`
		// Sweeps are recent sweep summaries, newest first.
		Sweeps []SweepSummary `json:"sweeps"`
		// Timestamp is the response time in Unix seconds.
		Timestamp int64 `json:"timestamp"`
	}

	// SweepSummary is the subset of a sweep's TOML summary the dashboard
	// exposes.
	SweepSummary struct {
		GeneratedAt   time.Time `toml:"generated_at" json:"generated_at"`
		LogPath       string    `toml:"log_path" json:"log_path"`
		SweepExitCode int       `toml:"sweep_exit_code" json:"sweep_exit_code"`
		Performance   struct {
			Attempted            int     `toml:"attempted" json:"attempted"`
			Successful           int     `toml:"successful" json:"successful"`
			SuccessRate          float64 `toml:"success_rate" json:"success_rate"`
			SuccessRateAvailable bool    `toml:"success_rate_available" json:"success_rate_available"`
		} `toml:"performance" json:"performance"`
		Priorities []string `toml:"priorities" json:"priorities"`
	}
)

func (s *Server) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// Handler returns the dashboard's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/system", s.handleSystem)
	mux.HandleFunc("POST /api/run-benchmark", s.handleRunBenchmark)
	if s.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.StaticDir)))
	}
	return mux
}

// ListenAndServe runs the dashboard server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger().Info("dashboard listening", "addr", addr, "results", s.ResultsDir)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data := Data{
		Baseline:  LoadBaseline(filepath.Join(s.ResultsDir, "baseline_summary.txt")),
		Sweeps:    s.loadSweepSummaries(),
		Timestamp: time.Now().Unix(),
	}
	s.writeJSON(w, data)
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, ReadSystemInfo())
}

func (s *Server) handleRunBenchmark(w http.ResponseWriter, r *http.Request) {
	if s.LaunchSweep == nil {
		http.Error(w, "sweep launching not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Type = "baseline"
	}

	s.logger().Info("launching background sweep", "type", req.Type)
	go s.LaunchSweep()

	s.writeJSON(w, map[string]string{"status": "started", "type": req.Type})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("failed to encode response", "err", err)
	}
}

// loadSweepSummaries reads every *_summary.toml in LogDir, newest first.
// Unreadable or malformed summaries are skipped.
func (s *Server) loadSweepSummaries() []SweepSummary {
	paths, err := filepath.Glob(filepath.Join(s.LogDir, "*_summary.toml"))
	if err != nil {
		return nil
	}

	var summaries []SweepSummary
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var summary SweepSummary
		if err := toml.Unmarshal(data, &summary); err != nil {
			s.logger().Warn("skipping malformed summary", "path", path, "err", err)
			continue
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
	})
	return summaries
}
