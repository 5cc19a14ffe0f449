package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/confirm"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/sufficiency"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Route("/v1", func(r chi.Router) {
			r.Post("/analyze", env.handleAnalyze)
			r.Post("/confirm", env.handleConfirm)
			r.Post("/sufficiency", env.handleSufficiency)
			r.Get("/inventory", env.handleInventory)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type analyzeRequest struct {
	UserID      string                  `json:"user_id"`
	Detections  []model.RawDetection    `json:"detections"`
	Constraints model.SafetyConstraints `json:"constraints"`
}

func (e *engine) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	classified := e.classifier.ClassifyBatch(r.Context(), req.UserID, req.Detections, req.Constraints)
	writeJSON(w, http.StatusOK, map[string]any{"detections": classified})
}

type confirmRequest struct {
	UserID     string                      `json:"user_id"`
	Detections []model.ClassifiedDetection `json:"detections"`
	Decisions  []confirm.Decision          `json:"decisions"`
}

func (e *engine) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := e.workflow.Apply(r.Context(), req.UserID, req.Detections, req.Decisions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type sufficiencyRequest struct {
	UserID         string              `json:"user_id"`
	Requirements   []model.Requirement `json:"requirements"`
	TargetServings int                 `json:"target_servings"`
	BaseServings   int                 `json:"base_servings"`
}

func (e *engine) handleSufficiency(w http.ResponseWriter, r *http.Request) {
	var req sufficiencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.BaseServings == 0 {
		req.BaseServings = 1
	}
	for i, reqt := range req.Requirements {
		req.Requirements[i].CanonicalName = e.registry.Canonicalize(reqt.CanonicalName).Name
	}

	res, err := e.checker.Check(r.Context(), req.UserID, req.Requirements, req.TargetServings, req.BaseServings)
	if err != nil {
		var invalid *sufficiency.InvalidServingsError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("sufficiency check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sufficiency check failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *engine) handleInventory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	snap, err := e.inventory.Resolve(r.Context(), userID)
	if err != nil {
		zap.L().Error("inventory resolve failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "inventory unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
