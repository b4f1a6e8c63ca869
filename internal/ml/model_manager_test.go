package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recept-slider/internal/forest"
)

func TestModelManager_AddActivateRollback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	mm, err := NewModelManager(dir)
	require.NoError(t, err)

	_, ok := mm.Current()
	assert.False(t, ok)

	require.NoError(t, mm.AddVersion("v1", mm.PathFor("v1"), ModelMetrics{TrainingRows: 80}))
	require.NoError(t, mm.ActivateVersion("v1"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mm.AddVersion("v2", mm.PathFor("v2"), ModelMetrics{
		TrainingRows: 90,
		HeldOutRows:  10,
		Scores:       []forest.TargetScore{{Target: "DS", R2: 0.8, RMSE: 1.5}},
	}))
	require.NoError(t, mm.ActivateVersion("v2"))

	versions := mm.ListVersions()
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].Version, "newest first")
	assert.True(t, versions[0].IsActive)
	assert.False(t, versions[1].IsActive)

	prev, err := mm.Rollback()
	require.NoError(t, err)
	assert.Equal(t, "v1", prev.Version)
	assert.Equal(t, filepath.Join(dir, "model_rf_v1.json"), prev.Path)

	current, ok := mm.Current()
	require.True(t, ok)
	assert.Equal(t, "v1", current.Version)

	_, err = mm.Rollback()
	assert.Error(t, err, "nothing older than v1")

	assert.Error(t, mm.ActivateVersion("v9"))
}

func TestModelManager_Persistence(t *testing.T) {
	dir := t.TempDir()
	mm, err := NewModelManager(dir)
	require.NoError(t, err)
	require.NoError(t, mm.AddVersion("v1", "a.json", ModelMetrics{TrainingRows: 5}))
	require.NoError(t, mm.ActivateVersion("v1"))

	reloaded, err := NewModelManager(dir)
	require.NoError(t, err)

	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "v1", current.Version)
	assert.Equal(t, 5, current.Metrics.TrainingRows)
}

func TestModelManager_ReplaceVersion(t *testing.T) {
	mm, err := NewModelManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, mm.AddVersion("v1", "a.json", ModelMetrics{TrainingRows: 1}))
	require.NoError(t, mm.ActivateVersion("v1"))
	require.NoError(t, mm.AddVersion("v1", "b.json", ModelMetrics{TrainingRows: 2}))

	versions := mm.ListVersions()
	require.Len(t, versions, 1)
	assert.Equal(t, "b.json", versions[0].Path)
	assert.True(t, versions[0].IsActive)
}

func TestModelManager_CorruptRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_versions.json"), []byte("{not json"), 0o600))

	mm, err := NewModelManager(dir)
	require.NoError(t, err)
	assert.Empty(t, mm.ListVersions())

	_, err = mm.Rollback()
	assert.Error(t, err)
}
