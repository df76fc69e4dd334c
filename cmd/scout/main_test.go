package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"playerscout/internal/search"
	"playerscout/models"

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

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func riquiPuig() *models.SearchResponse {
	return &models.SearchResponse{
		Success: true,
		Data: &models.PlayerRecord{
			GeneralInfo: models.GeneralInfo{Name: "Riqui Puig", Age: 24, Club: "LA Galaxy", Position: "MF (CM)"},
			PlayerOverview: &models.PlayerOverview{
				OverallRating: 86,
				Summary:       "Riqui Puig is a young MF (CM) with standout progressive passing.",
			},
		},
	}
}

func newTestWorkflow(t *testing.T, lookup *MockLookup) *search.Workflow {
	t.Helper()
	wf := search.NewWorkflow(lookup, search.Options{RequestTimeout: time.Minute})
	t.Cleanup(wf.Close)
	return wf
}

func TestRunSearch_RevealsAnalysis(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("Search", mock.Anything, "riqui puig").Return(riquiPuig(), nil)
	wf := newTestWorkflow(t, lookup)

	snap, err := runSearch(context.Background(), wf, "  riqui puig ", true)
	require.NoError(t, err)
	assert.Equal(t, search.StatusSucceeded, snap.Status)
	assert.Equal(t, search.AnalysisRevealed, snap.Analysis)
	assert.Equal(t, "Riqui Puig", snap.Record.GeneralInfo.Name)
}

func TestRunSearch_FailureAndBlankQuery(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("Search", mock.Anything, "nobody").
		Return(&models.SearchResponse{Success: false, Error: "Player not found"}, nil)
	wf := newTestWorkflow(t, lookup)

	_, err := runSearch(context.Background(), wf, "   ", false)
	assert.Error(t, err)

	snap, err := runSearch(context.Background(), wf, "nobody", true)
	require.NoError(t, err)
	assert.Equal(t, search.StatusFailed, snap.Status)
	assert.Equal(t, "Player not found", snap.Error)
	assert.Equal(t, search.AnalysisNotRequested, snap.Analysis)
}

func TestREPL_SearchAnalyzeQuit(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("Search", mock.Anything, "riqui").Return(riquiPuig(), nil)
	wf := newTestWorkflow(t, lookup)

	in, input := io.Pipe()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runREPL(context.Background(), wf, in, out)
	}()

	send := func(line string) {
		_, err := io.WriteString(input, line+"\n")
		require.NoError(t, err)
	}

	send("analyze")
	send("search riqui")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Riqui Puig")
	}, 2*time.Second, 10*time.Millisecond)

	send("search")
	send("analyze")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "standout progressive passing")
	}, 2*time.Second, 10*time.Millisecond)

	send("bogus")
	send("quit")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("repl did not exit on quit")
	}

	text := out.String()
	assert.Contains(t, text, "No analysis available for the current result.")
	assert.Contains(t, text, `Searching for "riqui"...`)
	assert.Contains(t, text, "Enter a player name to search.")
	assert.Contains(t, text, `Unknown command "bogus"`)
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	wf := newTestWorkflow(t, new(MockLookup))
	out := &syncBuffer{}

	err := runREPL(context.Background(), wf, strings.NewReader("status\n"), out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No search yet.")
}
