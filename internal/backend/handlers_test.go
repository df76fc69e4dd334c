package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"playerscout/adapters/fixtures"
	"playerscout/internal/analysis"
	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByName(ctx context.Context, name string) (*models.PlayerRecord, error) {
	args := m.Called(ctx, name)
	record, _ := args.Get(0).(*models.PlayerRecord)
	return record, args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, record *models.PlayerRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(record *models.PlayerRecord) (*models.PlayerOverview, error) {
	args := m.Called(record)
	overview, _ := args.Get(0).(*models.PlayerOverview)
	return overview, args.Error(1)
}

func get(t *testing.T, h http.Handler, path string) (int, models.SearchResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestSearchPlayer_FixturesWithAnalysis(t *testing.T) {
	store, err := fixtures.LoadDir("../../fixtures")
	require.NoError(t, err)
	srv := NewServer(store, analysis.NewAnalyzer(nil), []string{"*"})

	code, resp := get(t, srv.Handler(), "/api/player/search?name=riqui%20puig")
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Riqui Puig", resp.Data.GeneralInfo.Name)
	require.NotNil(t, resp.Data.PlayerOverview)
	assert.Equal(t, 86, resp.Data.PlayerOverview.OverallRating)

	stored, err := store.FindByName(context.Background(), "Riqui Puig")
	require.NoError(t, err)
	assert.True(t, stored.HasOverview(), "analyzed overview is written back")
}

func TestSearchPlayer_Rejections(t *testing.T) {
	store, err := fixtures.LoadDir("../../fixtures")
	require.NoError(t, err)
	h := NewServer(store, nil, nil).Handler()

	tests := []struct {
		name    string
		path    string
		code    int
		message string
	}{
		{"missing name", "/api/player/search", http.StatusBadRequest, "No name provided"},
		{"blank name", "/api/player/search?name=%20%20", http.StatusBadRequest, "No name provided"},
		{"unknown player", "/api/player/search?name=zidane", http.StatusOK, "Player not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := get(t, h, tt.path)
			assert.Equal(t, tt.code, code)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestSearchPlayer_StoreFailure(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByName", mock.Anything, "messi").
		Return(nil, errors.DatabaseError("query failed", fmt.Errorf("connection refused")))

	code, resp := get(t, NewServer(repo, nil, nil).Handler(), "/api/player/search?name=messi")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "query failed")
	repo.AssertExpectations(t)
}

func TestSearchPlayer_AnalyzerFailureServesRecord(t *testing.T) {
	record := &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "Lionel Messi"}}
	repo := new(MockRepository)
	repo.On("FindByName", mock.Anything, "messi").Return(record, nil)
	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", record).Return(nil, errors.ValidationError("age is required"))

	code, resp := get(t, NewServer(repo, analyzer, nil).Handler(), "/api/player/search?name=messi")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Data.PlayerOverview)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSearchPlayer_StoredOverviewIsNotRecomputed(t *testing.T) {
	record := &models.PlayerRecord{
		GeneralInfo:    models.GeneralInfo{Name: "Lionel Messi"},
		PlayerOverview: &models.PlayerOverview{OverallRating: 99},
	}
	repo := new(MockRepository)
	repo.On("FindByName", mock.Anything, "messi").Return(record, nil)
	analyzer := new(MockAnalyzer)

	_, resp := get(t, NewServer(repo, analyzer, nil).Handler(), "/api/player/search?name=messi")
	require.NotNil(t, resp.Data)
	assert.Equal(t, 99, resp.Data.PlayerOverview.OverallRating)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything)
}

func TestInfoRoutes(t *testing.T) {
	h := NewServer(fixtures.NewStore(), nil, nil).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"Server is running"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var welcome map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &welcome))
	assert.Equal(t, Version, welcome["version"])
	assert.NotEmpty(t, welcome["message"])
}
