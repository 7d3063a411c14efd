package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospector/internal/scheduler"
	"github.com/sells-group/prospector/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin server with scheduled batch enrichment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Scheduled batch runs. The manual POST /batch trigger covers
		// administrative runs between schedules.
		c := cron.New()
		if cfg.Server.BatchSchedule != "" {
			_, err := c.AddFunc(cfg.Server.BatchSchedule, func() {
				result, err := env.Scheduler.Run(ctx, scheduler.Params{})
				if err != nil {
					zap.L().Error("serve: scheduled batch failed", zap.Error(err))
					return
				}
				zap.L().Info("serve: scheduled batch complete",
					zap.Int("selected", result.Selected),
					zap.Int("enriched", result.Enriched),
					zap.Int("failed", result.Failed),
				)
			})
			if err != nil {
				return eris.Wrapf(err, "serve: parse batch schedule %q", cfg.Server.BatchSchedule)
			}
			c.Start()
			defer c.Stop()
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("serve: starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "serve: listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("serve: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *engineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/enrich/{id}", func(w http.ResponseWriter, req *http.Request) {
		recordID := chi.URLParam(req, "id")

		summary, err := env.Orchestrator.EnrichRecord(req.Context(), recordID, 0)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "record not found")
				return
			}
			zap.L().Error("serve: enrich failed",
				zap.String("record_id", recordID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "enrichment failed")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Post("/batch", func(w http.ResponseWriter, req *http.Request) {
		var params scheduler.Params
		if req.Body != nil && req.ContentLength > 0 {
			if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		result, err := env.Scheduler.Run(req.Context(), params)
		if err != nil {
			zap.L().Error("serve: batch failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "batch failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		stats, err := env.Report.Collect(req.Context())
		if err != nil {
			zap.L().Error("serve: stats failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "stats collection failed")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	r.Get("/budget", func(w http.ResponseWriter, req *http.Request) {
		usage, err := env.Tracker.Usage(req.Context())
		if err != nil {
			zap.L().Error("serve: budget usage failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "budget lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, usage)
	})

	r.Get("/records/{id}/runs", func(w http.ResponseWriter, req *http.Request) {
		recordID := chi.URLParam(req, "id")

		runs, err := env.Store.ListRunSummaries(req.Context(), recordID, 20)
		if err != nil {
			zap.L().Error("serve: list runs failed",
				zap.String("record_id", recordID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "run lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
