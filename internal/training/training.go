// Package training turns a spreadsheet of past experiments into a model
// artifact and registers it as a new model version.
package training

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"recept-slider/internal/cfg"
	"recept-slider/internal/dataset"
	"recept-slider/internal/forest"
	"recept-slider/internal/ml"
	"recept-slider/internal/recipe"
)

type Config struct {
	DataFile  string
	Sheet     string
	TestSize  float64
	Params    forest.Params
	ModelPath string
	// ModelsDir holds versioned copies and the registry. Empty skips
	// registration.
	ModelsDir string
	// Evaluate scores the model on the held-out rows.
	Evaluate bool
}

// ConfigFromSettings maps loaded settings onto a training run.
func ConfigFromSettings(s cfg.Settings) Config {
	params := forest.DefaultParams()
	params.NumTrees = s.Training.Trees
	params.MaxDepth = s.Training.MaxDepth
	params.Seed = s.Training.Seed

	return Config{
		DataFile:  s.Training.DataFile,
		Sheet:     s.Training.Sheet,
		TestSize:  s.Training.TestSize,
		Params:    params,
		ModelPath: s.ModelPath,
		ModelsDir: s.ModelsDir,
	}
}

// Report summarises a finished run.
type Report struct {
	Version     string               `json:"version"`
	ModelPath   string               `json:"model_path"`
	Rows        int                  `json:"rows"`
	Dropped     int                  `json:"dropped"`
	TrainRows   int                  `json:"train_rows"`
	TestRows    int                  `json:"test_rows"`
	Scores      []forest.TargetScore `json:"scores,omitempty"`
	Importances map[string]float64   `json:"feature_importances"`
	Duration    time.Duration        `json:"duration"`
}

// Run loads the data, fits the forest and writes the artifact. Any failure
// aborts the run; nothing is retried.
func Run(ctx context.Context, c Config) (*Report, error) {
	start := time.Now()

	ds, err := dataset.Load(c.DataFile, c.Sheet, recipe.FeatureColumns(), recipe.TargetColumns())
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}

	train, test, err := ds.TrainTestSplit(c.TestSize, c.Params.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split training data: %w", err)
	}

	log.Info().
		Int("train_rows", train.Len()).
		Int("test_rows", test.Len()).
		Int("trees", c.Params.NumTrees).
		Int("max_depth", c.Params.MaxDepth).
		Int64("seed", c.Params.Seed).
		Msg("Fitting random forest")

	model, err := forest.Fit(ctx, train.X, train.Y, ds.FeatureNames, ds.TargetNames, c.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	report := &Report{
		Version:     ml.VersionFor(model.TrainedAt),
		ModelPath:   c.ModelPath,
		Rows:        ds.Len(),
		Dropped:     ds.Dropped,
		TrainRows:   train.Len(),
		TestRows:    test.Len(),
		Importances: make(map[string]float64, len(model.FeatureNames)),
	}
	for i, name := range model.FeatureNames {
		report.Importances[name] = model.Importances[i]
	}

	if c.Evaluate {
		if test.Len() == 0 {
			log.Warn().Msg("No held-out rows to evaluate")
		} else {
			report.Scores, err = model.Score(test.X, test.Y)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate model: %w", err)
			}
			for _, s := range report.Scores {
				log.Info().Str("target", s.Target).Float64("r2", s.R2).Float64("rmse", s.RMSE).Msg("Hold-out score")
			}
		}
	}

	if err := model.Save(c.ModelPath); err != nil {
		return nil, err
	}

	if c.ModelsDir != "" {
		if err := register(model, report, c.ModelsDir); err != nil {
			return nil, fmt.Errorf("failed to register model version: %w", err)
		}
	}

	report.Duration = time.Since(start)
	log.Info().
		Str("model_path", c.ModelPath).
		Str("version", report.Version).
		Dur("duration", report.Duration).
		Msg("Model trained")

	return report, nil
}

func register(model *forest.Forest, report *Report, modelsDir string) error {
	mm, err := ml.NewModelManager(modelsDir)
	if err != nil {
		return err
	}

	path := mm.PathFor(report.Version)
	if err := model.Save(path); err != nil {
		return err
	}

	metrics := ml.ModelMetrics{
		TrainingRows: report.TrainRows,
		HeldOutRows:  report.TestRows,
		Scores:       report.Scores,
	}
	if err := mm.AddVersion(report.Version, path, metrics); err != nil {
		return err
	}
	return mm.ActivateVersion(report.Version)
}
