package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"playerscout/internal/api"
	"playerscout/internal/search"
	"playerscout/models"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Search(ctx context.Context, name string) (*models.SearchResponse, error) {
	args := m.Called(ctx, name)
	resp, _ := args.Get(0).(*models.SearchResponse)
	return resp, args.Error(1)
}

func riquiPuig() *models.SearchResponse {
	return &models.SearchResponse{
		Success: true,
		Data: &models.PlayerRecord{
			GeneralInfo: models.GeneralInfo{Name: "Riqui Puig", Age: 24, Club: "LA Galaxy", Position: "MF (CM)"},
			ScoutingReport: []models.ScoutingMetric{
				{Stat: "Progressive Passes", Per90: 8.1, Percentile: 96},
				{Stat: "Tackles", Per90: 1.2, Percentile: 30},
			},
			PlayerOverview: &models.PlayerOverview{OverallRating: 86, Summary: "Creative midfielder"},
		},
	}
}

type testServer struct {
	*Server
	sessions *api.Sessions
}

func newTestServer(t *testing.T, lookup *MockLookup, opts search.Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := api.NewSSEHub()
	sessions := api.NewSessions(lookup, opts, hub, time.Hour)
	t.Cleanup(func() {
		sessions.Close()
		hub.Close()
	})

	srv, err := NewServer(os.DirFS(".."), sessions, hub)
	require.NoError(t, err)
	return &testServer{Server: srv, sessions: sessions}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestServer_IndexRedirectsToNewSession(t *testing.T) {
	s := newTestServer(t, new(MockLookup), search.Options{})

	w := s.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/sessions/"))
	assert.Equal(t, 1, s.sessions.Count())

	page := s.do(http.MethodGet, location, "")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Search for a player...")
	assert.Contains(t, page.Body.String(), `id="player"`)
}

func TestServer_ExpiredSessionPageRedirects(t *testing.T) {
	s := newTestServer(t, new(MockLookup), search.Options{})

	w := s.do(http.MethodGet, "/sessions/6f1c2d7e-8a3b-4c5d-9e0f-112233445566", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/api/sessions/6f1c2d7e-8a3b-4c5d-9e0f-112233445566", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SearchRevealAndFragment(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("Search", mock.Anything, "riqui").Return(riquiPuig(), nil)
	s := newTestServer(t, lookup, search.Options{RequestTimeout: time.Minute})

	id := s.createSession(t)

	w := s.do(http.MethodPost, "/api/sessions/"+id+"/search", `{"query": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/"+id+"/analysis", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/"+id+"/search", `{"query": "  riqui "}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	session, err := s.sessions.Get(id)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.Workflow.Wait(ctx))

	fragment := s.do(http.MethodGet, "/sessions/"+id+"/fragment", "")
	require.Equal(t, http.StatusOK, fragment.Code)
	body := fragment.Body.String()
	assert.Contains(t, body, "Riqui Puig")
	assert.Contains(t, body, `data-status="succeeded"`)
	assert.Contains(t, body, "analyze-button")
	assert.NotContains(t, body, "Creative midfielder")

	w = s.do(http.MethodPost, "/api/sessions/"+id+"/analysis", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	fragment = s.do(http.MethodGet, "/sessions/"+id+"/fragment", "")
	assert.Contains(t, fragment.Body.String(), "Creative midfielder")
	assert.NotContains(t, fragment.Body.String(), "analyze-button")

	w = s.do(http.MethodGet, "/api/sessions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Snapshot search.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, search.StatusSucceeded, state.Snapshot.Status)
	assert.Equal(t, search.AnalysisRevealed, state.Snapshot.Analysis)
	assert.Equal(t, "riqui", state.Snapshot.Query)
}

func TestServer_SearchConflictsWhilePending(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("Search", mock.Anything, "messi").Return(riquiPuig(), nil)
	clock := clockwork.NewFakeClock()
	s := newTestServer(t, lookup, search.Options{MinDisplay: time.Hour, Clock: clock})

	id := s.createSession(t)

	w := s.do(http.MethodPost, "/api/sessions/"+id+"/search", `{"query": "messi"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/"+id+"/search", `{"query": "messi"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	fragment := s.do(http.MethodGet, "/sessions/"+id+"/fragment", "")
	assert.Contains(t, fragment.Body.String(), `data-can-submit="false"`)

	w = s.do(http.MethodPost, "/api/sessions/"+id+"/clear", "")
	assert.Equal(t, http.StatusOK, w.Code)

	session, err := s.sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, search.StatusIdle, session.Workflow.Snapshot().Status)
}

func TestServer_DeleteSession(t *testing.T) {
	s := newTestServer(t, new(MockLookup), search.Options{})
	id := s.createSession(t)

	w := s.do(http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, s.sessions.Count())

	w = s.do(http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_HealthAndStatic(t *testing.T) {
	s := newTestServer(t, new(MockLookup), search.Options{})
	s.createSession(t)

	w := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Sessions)

	w = s.do(http.MethodGet, "/static/js/scout.js", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
