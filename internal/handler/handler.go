// Package handler is the thin HTTP layer over the reconciliation service.
// It delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epicsync/internal/project"
	"epicsync/internal/reconcile"
)

// Service is the slice of the reconciliation service the handlers need.
type Service interface {
	SyncRecord(ctx context.Context, projectID, recordID, eventID string) error
	SweepProject(ctx context.Context, projectID string) (reconcile.Summary, error)
}

// Handler wires the invocation endpoints to the reconciliation service.
type Handler struct {
	service  Service
	projects project.Store
	logger   *slog.Logger
	secret   string
}

// New constructs the handler. secret, when non-empty, is required as a
// bearer token on mutation routes; the hook and sweep endpoints are
// platform-internal calls, not a public API.
func New(service Service, projects project.Store, logger *slog.Logger, secret string) *Handler {
	return &Handler{
		service:  service,
		projects: projects,
		logger:   logger,
		secret:   secret,
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.requireSecret)
		r.Get("/projects", h.handleListProjects)
		r.Post("/projects/{projectID}/hooks/record-saved", h.handleRecordSaved)
		r.Post("/projects/{projectID}/sweep", h.handleSweep)
	})
	return r
}

func (h *Handler) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.secret != "" && r.Header.Get("Authorization") != "Bearer "+h.secret {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.projects.ListEnabled(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list projects failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	ids := make([]string, 0, len(enabled))
	for _, p := range enabled {
		ids = append(ids, p.ProjectID)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": ids})
}

// recordSavedRequest is the save-hook payload. Instrument and instance are
// accepted for parity with the platform's hook signature but unused.
type recordSavedRequest struct {
	Record     string `json:"record"`
	EventID    string `json:"event_id"`
	Instrument string `json:"instrument"`
	Instance   int    `json:"instance"`
}

func (h *Handler) handleRecordSaved(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req recordSavedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Record == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record is required"})
		return
	}

	err := h.service.SyncRecord(r.Context(), projectID, req.Record, req.EventID)
	if errors.Is(err, project.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown project"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "record sync failed",
			"project_id", projectID,
			"record_id", req.Record,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	summary, err := h.service.SweepProject(r.Context(), projectID)
	if errors.Is(err, project.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown project"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sweep failed", "project_id", projectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
