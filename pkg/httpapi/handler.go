package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/scribeworks/compliance/pkg/audit"
	"github.com/scribeworks/compliance/pkg/common/logger"
	"github.com/scribeworks/compliance/pkg/common/models"
	"github.com/scribeworks/compliance/pkg/compliance"
	"github.com/scribeworks/compliance/pkg/retention"
)

type Handler struct {
	anonymizer *compliance.Anonymizer
	trail      *audit.Trail
	retention  *retention.Manager
}

func NewHandler(anonymizer *compliance.Anonymizer, trail *audit.Trail, retentionMgr *retention.Manager) *Handler {
	return &Handler{
		anonymizer: anonymizer,
		trail:      trail,
		retention:  retentionMgr,
	}
}

// Register mounts the API routes. Pass the /api/v1 subrouter so callers can
// attach auth middleware to the whole surface in one place.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/sanitize", h.handleSanitize).Methods(http.MethodPost)
	r.HandleFunc("/audit/access", h.handleLogAccess).Methods(http.MethodPost)
	r.HandleFunc("/audit/report", h.handleAuditReport).Methods(http.MethodGet)
	r.HandleFunc("/retention/schedule", h.handleCleanupSchedule).Methods(http.MethodGet)
	r.HandleFunc("/retention/eligibility", h.handleEligibility).Methods(http.MethodGet)
}

func (h *Handler) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req models.SanitizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Data == nil {
		http.Error(w, "data is required", http.StatusBadRequest)
		return
	}

	sanitized := h.anonymizer.Process(req.Data)
	writeJSON(w, http.StatusOK, models.SanitizeResponse{
		Standard: string(h.anonymizer.Standard()),
		Data:     sanitized,
	})
}

func (h *Handler) handleLogAccess(w http.ResponseWriter, r *http.Request) {
	var req models.AccessLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Action == "" {
		http.Error(w, "user_id and action are required", http.StatusBadRequest)
		return
	}

	h.trail.LogAccess(req.UserID, req.Action, req.Resource, req.Granted)
	writeJSON(w, http.StatusCreated, models.AccessLogResponse{
		Recorded: true,
		Entries:  h.trail.Len(),
	})
}

func (h *Handler) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	report, err := h.trail.ExportReport(format)
	if err != nil {
		if errors.Is(err, audit.ErrUnsupportedFormat) {
			http.Error(w, "unsupported format", http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to export audit report")
		http.Error(w, "failed to export report", http.StatusInternalServerError)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}

func (h *Handler) handleCleanupSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.retention.CleanupSchedule(),
	})
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}
	createdAt, err := time.Parse(time.RFC3339, r.URL.Query().Get("created_at"))
	if err != nil {
		http.Error(w, "created_at must be RFC3339", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, models.EligibilityResponse{
		Category:  category,
		CreatedAt: createdAt,
		Retain:    h.retention.CheckEligibility(category, createdAt),
	})
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
