package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/scribeworks/compliance/pkg/audit"
	"github.com/scribeworks/compliance/pkg/common/logger"
	"github.com/scribeworks/compliance/pkg/compliance"
	"github.com/scribeworks/compliance/pkg/retention"
)

func TestMain(m *testing.M) {
	logger.Init("httpapi-test")
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*mux.Router, *audit.Trail) {
	t.Helper()
	anonymizer, err := compliance.NewAnonymizer(compliance.StandardGDPR, compliance.DefaultRules())
	if err != nil {
		t.Fatalf("failed to create anonymizer: %v", err)
	}
	trail := audit.NewTrail()
	handler := NewHandler(anonymizer, trail, retention.NewManager())

	router := mux.NewRouter()
	router.HandleFunc("/health", HealthCheck).Methods(http.MethodGet)
	handler.Register(router.PathPrefix("/api/v1").Subrouter())
	return router, trail
}

func TestHandleSanitize(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"data":{"email":"alice@example.com","ip_address":"192.168.1.5","note":"hello"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sanitize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Standard string                 `json:"standard"`
		Data     map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Standard != "GDPR" {
		t.Errorf("standard = %q", resp.Standard)
	}
	if resp.Data["email"] != "a***e@example.com" {
		t.Errorf("email = %v", resp.Data["email"])
	}
	if resp.Data["ip_address"] != "192.168.***.***" {
		t.Errorf("ip_address = %v", resp.Data["ip_address"])
	}
	if resp.Data["note"] != "hello" {
		t.Errorf("unmatched field changed: %v", resp.Data["note"])
	}
}

func TestHandleSanitizeRejectsMissingData(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sanitize", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLogAccessAndReport(t *testing.T) {
	router, trail := newTestRouter(t)

	body := `{"user_id":"alice","action":"READ","resource":"records","granted":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/access", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if trail.Len() != 1 {
		t.Fatalf("trail length = %d, want 1", trail.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit/report?format=csv", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "timestamp,user_id,action,outcome") {
		t.Errorf("unexpected csv: %q", rec.Body.String())
	}
}

func TestHandleAuditReportUnsupportedFormat(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/report?format=xml", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCleanupSchedule(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/retention/schedule", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Items []retention.ScheduleItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Items) != 4 {
		t.Errorf("expected 4 schedule rows, got %d", len(resp.Items))
	}
}

func TestHandleEligibility(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/retention/eligibility?category=temp_files&created_at=2020-01-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Retain bool `json:"retain"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Retain {
		t.Error("2020 temp_files should be past retention")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/retention/eligibility?category=temp_files", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing created_at should 400, got %d", rec.Code)
	}
}
