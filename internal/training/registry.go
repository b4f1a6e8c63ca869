package training

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"recept-slider/internal/forest"
	"recept-slider/internal/ml"
)

// Activate makes a registered version the active one and installs its
// artifact at modelPath, where the estimator loads it from.
func Activate(modelsDir, version, modelPath string) (ml.ModelVersion, error) {
	mm, err := ml.NewModelManager(modelsDir)
	if err != nil {
		return ml.ModelVersion{}, err
	}

	var target *ml.ModelVersion
	for _, v := range mm.ListVersions() {
		if v.Version == version {
			target = &v
			break
		}
	}
	if target == nil {
		return ml.ModelVersion{}, fmt.Errorf("version %s not found", version)
	}

	if err := install(target.Path, modelPath); err != nil {
		return ml.ModelVersion{}, err
	}
	if err := mm.ActivateVersion(version); err != nil {
		return ml.ModelVersion{}, err
	}
	target.IsActive = true

	log.Info().Str("version", version).Str("model_path", modelPath).Msg("Model version activated")
	return *target, nil
}

// Rollback re-activates the version registered before the active one.
func Rollback(modelsDir, modelPath string) (ml.ModelVersion, error) {
	mm, err := ml.NewModelManager(modelsDir)
	if err != nil {
		return ml.ModelVersion{}, err
	}

	current, ok := mm.Current()
	prev, err := mm.Rollback()
	if err != nil {
		return ml.ModelVersion{}, err
	}

	if err := install(prev.Path, modelPath); err != nil {
		if ok {
			if restoreErr := mm.ActivateVersion(current.Version); restoreErr != nil {
				log.Error().Err(restoreErr).Msg("Failed to restore active version")
			}
		}
		return ml.ModelVersion{}, err
	}

	log.Info().Str("version", prev.Version).Str("model_path", modelPath).Msg("Rolled back model")
	return prev, nil
}

// install validates the versioned artifact before copying it into place.
func install(src, dst string) error {
	model, err := forest.Load(src)
	if err != nil {
		return err
	}
	return model.Save(dst)
}
