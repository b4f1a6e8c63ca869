package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"recept-slider/internal/common"
	"recept-slider/internal/forest"
)

// ModelVersion is one registered model artifact.
type ModelVersion struct {
	Version   string       `json:"version"`
	Path      string       `json:"path"`
	CreatedAt time.Time    `json:"created_at"`
	Metrics   ModelMetrics `json:"metrics"`
	IsActive  bool         `json:"is_active"`
}

// ModelMetrics records how a version was trained and, when the hold-out set
// was evaluated, how it scored.
type ModelMetrics struct {
	TrainingRows int                  `json:"training_rows"`
	HeldOutRows  int                  `json:"held_out_rows"`
	Scores       []forest.TargetScore `json:"scores,omitempty"`
}

// ModelManager keeps the version registry in <modelsDir>/model_versions.json,
// newest version first.
type ModelManager struct {
	mu           sync.Mutex
	modelsDir    string
	versionsFile string
	versions     []ModelVersion
}

func NewModelManager(modelsDir string) (*ModelManager, error) {
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create models directory: %w", err)
	}

	mm := &ModelManager{
		modelsDir:    modelsDir,
		versionsFile: filepath.Join(modelsDir, common.VersionsFile),
	}

	if err := mm.loadVersions(); err != nil {
		log.Warn().Err(err).Str("file", mm.versionsFile).Msg("Failed to load model versions, starting fresh")
		mm.versions = nil
	}

	return mm, nil
}

// Dir is where versioned artifacts are kept.
func (mm *ModelManager) Dir() string {
	return mm.modelsDir
}

// PathFor is the artifact path used for a version.
func (mm *ModelManager) PathFor(version string) string {
	return filepath.Join(mm.modelsDir, "model_rf_"+version+".json")
}

// AddVersion registers an artifact. Registering an existing version replaces
// its entry.
func (mm *ModelManager) AddVersion(version, modelPath string, metrics ModelMetrics) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	entry := ModelVersion{
		Version:   version,
		Path:      modelPath,
		CreatedAt: time.Now().UTC(),
		Metrics:   metrics,
	}

	replaced := false
	for i := range mm.versions {
		if mm.versions[i].Version == version {
			entry.IsActive = mm.versions[i].IsActive
			mm.versions[i] = entry
			replaced = true
		}
	}
	if !replaced {
		mm.versions = append(mm.versions, entry)
	}

	sort.SliceStable(mm.versions, func(i, j int) bool {
		return mm.versions[i].CreatedAt.After(mm.versions[j].CreatedAt)
	})

	return mm.saveVersions()
}

// ActivateVersion marks version as the active one.
func (mm *ModelManager) ActivateVersion(version string) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.activate(version)
}

func (mm *ModelManager) activate(version string) error {
	idx := mm.indexOf(version)
	if idx < 0 {
		return fmt.Errorf("version %s not found", version)
	}
	for i := range mm.versions {
		mm.versions[i].IsActive = i == idx
	}
	return mm.saveVersions()
}

// Rollback activates the version registered before the active one and returns
// it.
func (mm *ModelManager) Rollback() (ModelVersion, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	current := -1
	for i, v := range mm.versions {
		if v.IsActive {
			current = i
			break
		}
	}
	if current == -1 {
		return ModelVersion{}, fmt.Errorf("no active version found")
	}
	if current+1 >= len(mm.versions) {
		return ModelVersion{}, fmt.Errorf("no previous version available for rollback")
	}

	prev := mm.versions[current+1]
	if err := mm.activate(prev.Version); err != nil {
		return ModelVersion{}, err
	}
	prev.IsActive = true
	return prev, nil
}

// Current returns the active version, if any.
func (mm *ModelManager) Current() (ModelVersion, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	for _, v := range mm.versions {
		if v.IsActive {
			return v, true
		}
	}
	return ModelVersion{}, false
}

// ListVersions returns a copy of the registry, newest first.
func (mm *ModelManager) ListVersions() []ModelVersion {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return append([]ModelVersion(nil), mm.versions...)
}

func (mm *ModelManager) indexOf(version string) int {
	for i, v := range mm.versions {
		if v.Version == version {
			return i
		}
	}
	return -1
}

func (mm *ModelManager) loadVersions() error {
	data, err := os.ReadFile(mm.versionsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &mm.versions)
}

func (mm *ModelManager) saveVersions() error {
	data, err := json.MarshalIndent(mm.versions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(mm.versionsFile, data, 0o600)
}
