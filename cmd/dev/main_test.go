package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"playerscout/adapters/fixtures"
	"playerscout/adapters/statsapi"
	"playerscout/internal/analysis"
	"playerscout/internal/backend"
	"playerscout/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSmoke_FixturesEndToEnd(t *testing.T) {
	store, err := fixtures.LoadDir("../../fixtures")
	require.NoError(t, err)

	srv := httptest.NewServer(backend.NewServer(store, analysis.NewAnalyzer(nil), nil).Handler())
	defer srv.Close()
	client := statsapi.NewClient(srv.URL, srv.Client())

	names := []string{"Lionel Messi", "Riqui Puig", "Walker Zimmerman", "Miles Robinson", "Zinedine Zidane"}
	results, err := runSmoke(context.Background(), client, names, 2)
	require.NoError(t, err)
	require.Len(t, results, len(names))

	ratings := map[string]int{
		"Lionel Messi":     99,
		"Riqui Puig":       86,
		"Walker Zimmerman": 73,
		"Miles Robinson":   71,
	}
	for _, r := range results[:4] {
		assert.True(t, r.OK(), "%s: %+v", r.Query, r)
		assert.Equal(t, ratings[r.Query], r.Rating, r.Query)
	}

	missing := results[4]
	assert.False(t, missing.OK())
	assert.Equal(t, search.StatusFailed, missing.Status)
	assert.Equal(t, "Player not found", missing.Error)
}
