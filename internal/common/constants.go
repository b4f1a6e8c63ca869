package common

// Environment variable keys
const (
	EnvConfigFile    = "CONFIG_FILE"
	EnvModelPath     = "MODEL_PATH"
	EnvModelsDir     = "MODELS_DIR"
	EnvModelURL      = "MODEL_URL"
	EnvRemoteTimeout = "REMOTE_TIMEOUT"
	EnvDataPath      = "DATA_PATH"
	EnvPort          = "PORT"
	EnvMetrics       = "METRICS_ENABLED"
	EnvSessionTTL    = "SESSION_TTL"
	EnvLogLevel      = "LOG_LEVEL"
	EnvDataFile      = "TRAIN_DATA_FILE"
	EnvSheet         = "TRAIN_SHEET"
	EnvTestSize      = "TRAIN_TEST_SIZE"
	EnvSeed          = "TRAIN_SEED"
	EnvTrees         = "TRAIN_TREES"
	EnvMaxDepth      = "TRAIN_MAX_DEPTH"
)

// Configuration defaults
const (
	DefaultModelPath     = "model_rf.json"
	DefaultModelsDir     = "models"
	DefaultDataFile      = "samengevoegde_resultaten_met_eigen_data.xlsx"
	DefaultSheet         = "Sheet1"
	DefaultPort          = 8501
	DefaultLogLevel      = "info"
	DefaultTestSize      = 0.2
	DefaultSeed          = 42
	DefaultTrees         = 100
	DefaultMaxDepth      = 10
	DefaultSessionTTLStr = "12h"
)

// Export file naming
const (
	ExportFileName  = "opgeslagen_recepten.xlsx"
	ExportSheetName = "Recepten"
	ExportMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Storage layout
const (
	JournalFileName = "recept-journal.db"
	VersionsFile    = "model_versions.json"
)

// Validation constants
const (
	MinPort        = 1024
	MaxPort        = 65535
	MinTestSize    = 0.0
	MaxTestSize    = 0.9
	MaxTrees       = 5000
	MaxTreeDepth   = 64
	MinSessionTTL  = 1 // minutes
	MaxSessionTTLH = 24 * 30
)
