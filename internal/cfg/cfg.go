package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"recept-slider/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath      string
	ModelsDir      string
	ModelURL       string
	RemoteTimeout  time.Duration
	DataPath       string
	Port           int
	MetricsEnabled bool
	SessionTTL     time.Duration
	LogLevel       string
	Training       TrainingSettings
}

// TrainingSettings drives the offline trainer.
type TrainingSettings struct {
	DataFile string
	Sheet    string
	TestSize float64
	Seed     int64
	Trees    int
	MaxDepth int
}

type ConfigFile struct {
	Model struct {
		Path          string `yaml:"path"`
		Dir           string `yaml:"dir"`
		URL           string `yaml:"url"`
		RemoteTimeout string `yaml:"remoteTimeout"`
	} `yaml:"model"`

	Server struct {
		Port       int    `yaml:"port"`
		Metrics    *bool  `yaml:"metrics"`
		SessionTTL string `yaml:"sessionTTL"`
	} `yaml:"server"`

	System struct {
		DataPath string `yaml:"dataPath"`
		LogLevel string `yaml:"logLevel"`
	} `yaml:"system"`

	Training struct {
		DataFile string  `yaml:"dataFile"`
		Sheet    string  `yaml:"sheet"`
		TestSize float64 `yaml:"testSize"`
		Seed     int64   `yaml:"seed"`
		Trees    int     `yaml:"trees"`
		MaxDepth int     `yaml:"maxDepth"`
	} `yaml:"training"`
}

func Load() (Settings, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Settings{}, err
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

// loadDotEnv merges a .env file into the process environment. Variables that
// are already set win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	remoteTimeout, err := time.ParseDuration(config.Model.RemoteTimeout)
	if err != nil {
		remoteTimeout = 5 * time.Second
	}

	sessionTTL, err := time.ParseDuration(config.Server.SessionTTL)
	if err != nil {
		sessionTTL = 12 * time.Hour
	}

	metricsEnabled := true
	if config.Server.Metrics != nil {
		metricsEnabled = *config.Server.Metrics
	}

	settings := Settings{
		ModelPath:      getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.Path, common.DefaultModelPath)),
		ModelsDir:      getEnvOrDefault(common.EnvModelsDir, orDefault(config.Model.Dir, common.DefaultModelsDir)),
		ModelURL:       getEnvOrDefault(common.EnvModelURL, config.Model.URL),
		RemoteTimeout:  getDurationOrDefault(common.EnvRemoteTimeout, remoteTimeout),
		DataPath:       getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		Port:           getIntFromEnvOrConfig(common.EnvPort, config.Server.Port, common.DefaultPort),
		MetricsEnabled: getBoolFromEnvOrConfig(common.EnvMetrics, metricsEnabled),
		SessionTTL:     getDurationOrDefault(common.EnvSessionTTL, sessionTTL),
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
		Training: TrainingSettings{
			DataFile: getEnvOrDefault(common.EnvDataFile, orDefault(config.Training.DataFile, common.DefaultDataFile)),
			Sheet:    getEnvOrDefault(common.EnvSheet, orDefault(config.Training.Sheet, common.DefaultSheet)),
			TestSize: getFloatFromEnvOrConfig(common.EnvTestSize, config.Training.TestSize, common.DefaultTestSize),
			Seed:     int64(getIntFromEnvOrConfig(common.EnvSeed, int(config.Training.Seed), common.DefaultSeed)),
			Trees:    getIntFromEnvOrConfig(common.EnvTrees, config.Training.Trees, common.DefaultTrees),
			MaxDepth: getIntFromEnvOrConfig(common.EnvMaxDepth, config.Training.MaxDepth, common.DefaultMaxDepth),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:      getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ModelsDir:      getEnvOrDefault(common.EnvModelsDir, common.DefaultModelsDir),
		ModelURL:       os.Getenv(common.EnvModelURL), // optional
		RemoteTimeout:  getDurationOrDefault(common.EnvRemoteTimeout, 5*time.Second),
		DataPath:       os.Getenv(common.EnvDataPath), // optional
		Port:           getIntOrDefault(common.EnvPort, common.DefaultPort),
		MetricsEnabled: getBoolOrDefault(common.EnvMetrics, true),
		SessionTTL:     getDurationOrDefault(common.EnvSessionTTL, 12*time.Hour),
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		Training: TrainingSettings{
			DataFile: getEnvOrDefault(common.EnvDataFile, common.DefaultDataFile),
			Sheet:    getEnvOrDefault(common.EnvSheet, common.DefaultSheet),
			TestSize: getFloatOrDefault(common.EnvTestSize, common.DefaultTestSize),
			Seed:     int64(getIntOrDefault(common.EnvSeed, common.DefaultSeed)),
			Trees:    getIntOrDefault(common.EnvTrees, common.DefaultTrees),
			MaxDepth: getIntOrDefault(common.EnvMaxDepth, common.DefaultMaxDepth),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// ResolveModelPath locates the model artifact. Relative paths are looked up
// next to the running executable first, then against the working directory.
func ResolveModelPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs range validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" && settings.ModelURL == "" {
		return fmt.Errorf("either a model path or a model URL is required")
	}

	if settings.Port < common.MinPort || settings.Port > common.MaxPort {
		return fmt.Errorf("port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.Port)
	}

	if settings.RemoteTimeout < 100*time.Millisecond || settings.RemoteTimeout > time.Minute {
		return fmt.Errorf("remote timeout must be between 100ms and 1m, got %v", settings.RemoteTimeout)
	}
	if settings.SessionTTL < common.MinSessionTTL*time.Minute || settings.SessionTTL > common.MaxSessionTTLH*time.Hour {
		return fmt.Errorf("session TTL must be between 1m and 720h, got %v", settings.SessionTTL)
	}

	t := settings.Training
	if t.Sheet == "" {
		return fmt.Errorf("training sheet name cannot be empty")
	}
	if t.TestSize < common.MinTestSize || t.TestSize > common.MaxTestSize {
		return fmt.Errorf("test size must be between 0 and 0.9, got %f", t.TestSize)
	}
	if t.Trees <= 0 || t.Trees > common.MaxTrees {
		return fmt.Errorf("tree count must be between 1 and %d, got %d", common.MaxTrees, t.Trees)
	}
	if t.MaxDepth <= 0 || t.MaxDepth > common.MaxTreeDepth {
		return fmt.Errorf("max depth must be between 1 and %d, got %d", common.MaxTreeDepth, t.MaxDepth)
	}

	return nil
}
