package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/pipeline"
)

var servePort int

// runState tracks the single active run behind the control API.
type runState struct {
	mu     sync.Mutex
	runner *pipeline.Runner
	stats  *model.RunStats
}

func (s *runState) current() *pipeline.Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control API",
	Long:  "Exposes run start, pause, resume, stop, progress, and lead retrieval over HTTP. One run may be active at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg, err := loadRegistry()
		if err != nil {
			return eris.Wrap(err, "load profiles")
		}

		state := &runState{}

		r := chi.NewRouter()
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				BaseURL    string `json:"base_url"`
				TotalPages int    `json:"total_pages"`
				Profile    string `json:"profile"`
				Demo       bool   `json:"demo"`
				NoEnrich   bool   `json:"no_enrich"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.BaseURL == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "base_url is required"})
				return
			}
			if body.TotalPages < 1 {
				body.TotalPages = 1
			}

			profile, err := resolveProfile(reg, body.Profile, body.BaseURL)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}

			state.mu.Lock()
			if state.runner != nil && state.runner.Running() {
				state.mu.Unlock()
				writeJSON(w, http.StatusConflict, map[string]string{"error": "a run is already active"})
				return
			}
			runner := buildRunner(body.BaseURL, body.Demo)
			state.runner = runner
			state.stats = nil
			state.mu.Unlock()

			go func() {
				stats, err := runner.Run(ctx, pipeline.Job{
					BaseURL:        body.BaseURL,
					TotalPages:     body.TotalPages,
					Profile:        profile,
					SkipEnrichment: body.NoEnrich,
					Dedup:          cfg.Pipeline.Dedup,
				}, nil)
				if err != nil {
					zap.L().Error("run failed", zap.String("base_url", body.BaseURL), zap.Error(err))
					return
				}
				state.mu.Lock()
				state.stats = stats
				state.mu.Unlock()
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":   "accepted",
				"base_url": body.BaseURL,
			})
		})

		r.Get("/runs/current", func(w http.ResponseWriter, _ *http.Request) {
			runner := state.current()
			if runner == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run"})
				return
			}
			writeJSON(w, http.StatusOK, runner.Progress())
		})

		r.Get("/runs/current/stats", func(w http.ResponseWriter, _ *http.Request) {
			state.mu.Lock()
			stats := state.stats
			state.mu.Unlock()
			if stats == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not finished"})
				return
			}
			writeJSON(w, http.StatusOK, stats)
		})

		r.Get("/runs/current/leads", func(w http.ResponseWriter, _ *http.Request) {
			runner := state.current()
			if runner == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run"})
				return
			}
			writeJSON(w, http.StatusOK, runner.Leads())
		})

		control := func(name string, apply func(*pipeline.Runner)) http.HandlerFunc {
			return func(w http.ResponseWriter, _ *http.Request) {
				runner := state.current()
				if runner == nil {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run"})
					return
				}
				apply(runner)
				zap.L().Info("run control", zap.String("action", name))
				writeJSON(w, http.StatusOK, map[string]string{"status": name})
			}
		}
		r.Post("/runs/current/pause", control("paused", func(rn *pipeline.Runner) { rn.Pause() }))
		r.Post("/runs/current/resume", control("resumed", func(rn *pipeline.Runner) { rn.Resume() }))
		r.Post("/runs/current/stop", control("stopping", func(rn *pipeline.Runner) { rn.Stop() }))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
