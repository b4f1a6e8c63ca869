package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "model_rf.json", settings.ModelPath)
				assert.Equal(t, "models", settings.ModelsDir)
				assert.Equal(t, 8501, settings.Port)
				assert.True(t, settings.MetricsEnabled)
				assert.Equal(t, 12*time.Hour, settings.SessionTTL)
				assert.Equal(t, 5*time.Second, settings.RemoteTimeout)
				assert.Equal(t, "Sheet1", settings.Training.Sheet)
				assert.Equal(t, 0.2, settings.Training.TestSize)
				assert.Equal(t, int64(42), settings.Training.Seed)
				assert.Equal(t, 100, settings.Training.Trees)
				assert.Equal(t, 10, settings.Training.MaxDepth)
				assert.Empty(t, settings.DataPath)
				assert.Empty(t, settings.ModelURL)
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"MODEL_PATH":      "/opt/models/rf.json",
				"PORT":            "9000",
				"METRICS_ENABLED": "false",
				"SESSION_TTL":     "30m",
				"DATA_PATH":       "/var/lib/recept",
				"TRAIN_TREES":     "250",
				"TRAIN_SEED":      "7",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "/opt/models/rf.json", settings.ModelPath)
				assert.Equal(t, 9000, settings.Port)
				assert.False(t, settings.MetricsEnabled)
				assert.Equal(t, 30*time.Minute, settings.SessionTTL)
				assert.Equal(t, "/var/lib/recept", settings.DataPath)
				assert.Equal(t, 250, settings.Training.Trees)
				assert.Equal(t, int64(7), settings.Training.Seed)
			},
		},
		{
			name:    "port out of range",
			envVars: map[string]string{"PORT": "80"},
			wantErr: true,
		},
		{
			name:    "test size out of range",
			envVars: map[string]string{"TRAIN_TEST_SIZE": "0.95"},
			wantErr: true,
		},
		{
			name:    "tree depth out of range",
			envVars: map[string]string{"TRAIN_MAX_DEPTH": "100"},
			wantErr: true,
		},
		{
			name:    "session ttl too short",
			envVars: map[string]string{"SESSION_TTL": "10s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
model:
  path: custom_model.json
  dir: registry
  remoteTimeout: 2s
server:
  port: 8600
  metrics: false
  sessionTTL: 1h
system:
  dataPath: journal
  logLevel: debug
training:
  dataFile: experiments.xlsx
  sheet: Resultaten
  testSize: 0.25
  seed: 3
  trees: 50
  maxDepth: 8
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", configPath)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "custom_model.json", settings.ModelPath)
	assert.Equal(t, "registry", settings.ModelsDir)
	assert.Equal(t, 2*time.Second, settings.RemoteTimeout)
	assert.Equal(t, 8600, settings.Port)
	assert.False(t, settings.MetricsEnabled)
	assert.Equal(t, time.Hour, settings.SessionTTL)
	assert.Equal(t, "journal", settings.DataPath)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "experiments.xlsx", settings.Training.DataFile)
	assert.Equal(t, "Resultaten", settings.Training.Sheet)
	assert.Equal(t, 0.25, settings.Training.TestSize)
	assert.Equal(t, int64(3), settings.Training.Seed)
	assert.Equal(t, 50, settings.Training.Trees)
	assert.Equal(t, 8, settings.Training.MaxDepth)
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 8600\n"), 0o600))
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("PORT", "8700")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8700, settings.Port)
	assert.Equal(t, "model_rf.json", settings.ModelPath)
	assert.True(t, settings.MetricsEnabled)
}

func TestLoadFromYAML_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server: [port"), 0o600))
		t.Setenv("CONFIG_FILE", configPath)
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RECEPT_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RECEPT_DOTENV_PROBE") })

	require.NoError(t, loadDotEnv(envPath))
	assert.Equal(t, "from-file", os.Getenv("RECEPT_DOTENV_PROBE"))

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
}

func TestResolveModelPath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "model.json")
	assert.Equal(t, abs, ResolveModelPath(abs))
	assert.Equal(t, "", ResolveModelPath(""))
	assert.Equal(t, "does-not-exist.json", ResolveModelPath("does-not-exist.json"))
}
