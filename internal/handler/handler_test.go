package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicsync/internal/project"
	"epicsync/internal/reconcile"
)

// stubService records calls and returns canned results.
type stubService struct {
	syncCalls  []string
	sweepCalls []string
	syncErr    error
	sweepErr   error
	summary    reconcile.Summary
}

func (s *stubService) SyncRecord(_ context.Context, projectID, recordID, eventID string) error {
	s.syncCalls = append(s.syncCalls, projectID+"/"+recordID+"/"+eventID)
	return s.syncErr
}

func (s *stubService) SweepProject(_ context.Context, projectID string) (reconcile.Summary, error) {
	s.sweepCalls = append(s.sweepCalls, projectID)
	return s.summary, s.sweepErr
}

func newTestHandler(svc *stubService, secret string) *Handler {
	projects := project.NewMemoryStore(
		project.Settings{ProjectID: "17", Enabled: true},
		project.Settings{ProjectID: "22", Enabled: false},
		project.Settings{ProjectID: "30", Enabled: true},
	)
	return New(svc, projects, slog.New(slog.NewTextHandler(io.Discard, nil)), secret)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&stubService{}, "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProjects(t *testing.T) {
	h := newTestHandler(&stubService{}, "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"17", "30"}, body["projects"], "disabled projects excluded")
}

func TestRecordSavedHook(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(svc, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/17/hooks/record-saved",
		strings.NewReader(`{"record":"1001","event_id":"41","instrument":"screening"}`))
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.syncCalls, 1)
	assert.Equal(t, "17/1001/41", svc.syncCalls[0])
}

func TestRecordSavedHookRejectsMissingRecord(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(svc, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/17/hooks/record-saved",
		strings.NewReader(`{"event_id":"41"}`))
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.syncCalls)
}

func TestRecordSavedHookUnknownProject(t *testing.T) {
	svc := &stubService{syncErr: fmt.Errorf("load project settings: %w", project.ErrNotFound)}
	h := newTestHandler(svc, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/99/hooks/record-saved",
		strings.NewReader(`{"record":"1001","event_id":"41"}`))
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweepReturnsSummary(t *testing.T) {
	svc := &stubService{summary: reconcile.Summary{ProjectID: "17", Fetched: 10, Planned: 4, Saved: 4}}
	h := newTestHandler(svc, "")

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/17/sweep", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary reconcile.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 4, summary.Saved)
	assert.Equal(t, []string{"17"}, svc.sweepCalls)
}

func TestSweepInternalError(t *testing.T) {
	svc := &stubService{sweepErr: fmt.Errorf("fetch records: store down")}
	h := newTestHandler(svc, "")

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/17/sweep", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSecretRequired(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(svc, "s3cret")
	router := h.Router()

	// No token.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/17/sweep", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.sweepCalls)

	// Correct token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/17/sweep", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
