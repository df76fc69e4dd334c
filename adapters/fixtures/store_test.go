package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir_RepositoryFixtures(t *testing.T) {
	store, err := LoadDir(filepath.Join("..", "..", "fixtures"))
	require.NoError(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	messi, err := store.FindByName(context.Background(), "messi")
	require.NoError(t, err)
	assert.Equal(t, "Lionel Messi", messi.GeneralInfo.Name)
	assert.Equal(t, 1599, messi.CurrentSeasonStats["MLS"].Minutes.Int())
	assert.InDelta(t, 79.1, messi.ScoutingReport[8].Per90, 1e-9)

	zimmerman, err := store.FindByName(context.Background(), "ZIMMERMAN")
	require.NoError(t, err)
	assert.Equal(t, "Nashville SC", zimmerman.GeneralInfo.Club)
}

func TestStore_FindByNameNotFound(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Upsert(context.Background(), &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "Riqui Puig"}}))

	_, err := store.FindByName(context.Background(), "Pedri")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestStore_UpsertReplacesByName(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "Riqui Puig", Age: 23}}))
	require.NoError(t, store.Upsert(ctx, &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "riqui puig", Age: 24}}))

	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)
	record, err := store.FindByName(ctx, "Riqui Puig")
	require.NoError(t, err)
	assert.Equal(t, 24, record.GeneralInfo.Age)

	err = store.Upsert(ctx, &models.PlayerRecord{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoadDir_ObjectAndArrayFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a.json", `{"general_info": {"name": "Jordi Alba"}, "scouting_report": []}`)
	write("b.json", `[{"general_info": {"name": "Sergio Busquets"}}, {"general_info": {"name": "Luis Suárez"}}]`)
	write("notes.txt", `not a fixture`)

	store, err := LoadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, r := range store.All() {
		names = append(names, r.GeneralInfo.Name)
	}
	assert.Equal(t, []string{"Jordi Alba", "Sergio Busquets", "Luis Suárez"}, names)
}

func TestLoadDir_RejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"general_info": `), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestStore_MatchesOnFoldedNames(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "Florian Weiß", Age: 27}}))
	record, err := store.FindByName(ctx, "weiss")
	require.NoError(t, err)
	assert.Equal(t, "Florian Weiß", record.GeneralInfo.Name)

	require.NoError(t, store.Upsert(ctx, &models.PlayerRecord{GeneralInfo: models.GeneralInfo{Name: "FLORIAN WEISS", Age: 28}}))
	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)
}
