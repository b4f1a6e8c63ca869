// Package ml serves viscosity, pH and DS predictions from a fitted forest.
// It covers local and remote predictors, the model version registry and the
// JSON prediction API.
package ml

import (
	"context"
	"errors"
	"time"

	"recept-slider/internal/recipe"
)

var (
	// ErrFeatureCount is returned when an input or model does not match the
	// ingredient catalog.
	ErrFeatureCount = errors.New("feature count mismatch")
	ErrInvalidInput = errors.New("invalid input")
)

// PredictorInterface is implemented by anything that maps ingredient
// percentages to a prediction.
type PredictorInterface interface {
	// Predict returns the estimated properties for one composition.
	Predict(ctx context.Context, p recipe.Percentages) (Result, error)

	// Info describes the model behind the predictor.
	Info() ModelInfo
}

// Result is a prediction plus the names of features whose input lies outside
// the range seen in training. OutOfRange is advisory.
type Result struct {
	recipe.Prediction
	OutOfRange []string `json:"outOfRange,omitempty"`
}

type ModelInfo struct {
	Version      string             `json:"version"`
	Source       string             `json:"source"`
	TrainedAt    time.Time          `json:"trained_at"`
	TrainingRows int                `json:"training_rows"`
	Trees        int                `json:"trees"`
	MaxDepth     int                `json:"max_depth"`
	Features     []string           `json:"features"`
	Targets      []string           `json:"targets"`
	Importances  map[string]float64 `json:"feature_importances,omitempty"`
}
