package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recept-slider/internal/common"
	"recept-slider/internal/recipe"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(t *testing.T, id string, at time.Time) Entry {
	t.Helper()
	m := recipe.DefaultMasses()
	pct, err := m.Percentages()
	require.NoError(t, err)
	scaled, err := m.Rescale(recipe.Basis)
	require.NoError(t, err)

	return Entry{
		ID:           id,
		Name:         "proef " + id,
		RecordedAt:   at,
		Percentages:  pct,
		Masses:       scaled,
		Prediction:   recipe.Prediction{Viscosity: 1520.46, PH: 9.1, DS: 42.5},
		ModelVersion: "20260101-120000",
	}
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := New(dir)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, common.JournalFileName))
	assert.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := New(filepath.Join(file, "sub"))
	assert.Error(t, err)
}

func TestStore_Close(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestStore_RecordAndRange(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(testEntry(t, "b", base.Add(time.Minute))))
	require.NoError(t, store.Record(testEntry(t, "a", base)))
	require.NoError(t, store.Record(testEntry(t, "c", base.Add(2*time.Minute))))

	all, err := store.Range(base, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID}, "oldest first")

	assert.Equal(t, "proef a", all[0].Name)
	assert.Equal(t, 1520.46, all[0].Prediction.Viscosity)
	assert.InDelta(t, 100, all[0].Percentages.Sum(), 1e-9)
	assert.InDelta(t, 1000, all[0].Masses.Total(), 0.1)

	some, err := store.Range(base.Add(30*time.Second), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "b", some[0].ID)

	none, err := store.Range(base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_RecordSetsTime(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Record(testEntry(t, "x", time.Time{})))

	entries, err := store.Range(time.Time{}, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, time.Now(), entries[0].RecordedAt, time.Minute)
}

func TestStore_SameInstantDifferentIDs(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(testEntry(t, "one", at)))
	require.NoError(t, store.Record(testEntry(t, "two", at)))

	entries, err := store.Range(at, at)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExportCSV(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(testEntry(t, "a", at)))

	var buf bytes.Buffer
	n, err := store.ExportCSV(&buf, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, recipe.FeatureColumns(), header[:recipe.NumIngredients])
	assert.Equal(t, recipe.TargetColumns(), header[recipe.NumIngredients:recipe.NumIngredients+3])
	assert.Equal(t, []string{"Naam", "Opgeslagen", "Model"}, header[recipe.NumIngredients+3:])

	row := rows[1]
	assert.Equal(t, "1520.46", row[recipe.NumIngredients])
	assert.Equal(t, "proef a", row[recipe.NumIngredients+3])
	assert.Equal(t, "2026-03-01T12:00:00Z", row[recipe.NumIngredients+4])
}
