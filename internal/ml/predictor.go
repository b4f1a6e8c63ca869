package ml

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"recept-slider/internal/forest"
	"recept-slider/internal/recipe"
)

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
}

// ModelPredictor serves predictions from an in-process forest. The forest is
// shared read-only, so one predictor can serve every session.
type ModelPredictor struct {
	model     *forest.Forest
	metrics   MetricsInterface
	version   string
	startedAt time.Time

	predictions atomic.Int64
	failures    atomic.Int64
	lastError   atomic.Value // string
}

// HealthStatus is reported by the /health endpoint.
type HealthStatus struct {
	Healthy         bool    `json:"healthy"`
	ModelLoaded     bool    `json:"model_loaded"`
	ModelVersion    string  `json:"model_version"`
	PredictionCount int64   `json:"prediction_count"`
	ErrorRate       float64 `json:"error_rate"`
	LastError       string  `json:"last_error,omitempty"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// LoadModelPredictor reads a model artifact and wraps it in a predictor.
func LoadModelPredictor(path string, metrics MetricsInterface) (*ModelPredictor, error) {
	model, err := forest.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := NewModelPredictor(model, metrics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Info().
		Str("model_path", path).
		Str("version", p.version).
		Int("trees", len(model.Trees)).
		Int("training_rows", model.TrainingRows).
		Msg("Model loaded")
	return p, nil
}

// NewModelPredictor checks that the forest was trained on the catalog's
// feature and target columns.
func NewModelPredictor(model *forest.Forest, metrics MetricsInterface) (*ModelPredictor, error) {
	if err := model.CheckFeatures(recipe.FeatureColumns()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureCount, err)
	}
	if !slices.Equal(model.TargetNames, recipe.TargetColumns()) {
		return nil, fmt.Errorf("model targets %v do not match %v", model.TargetNames, recipe.TargetColumns())
	}

	p := &ModelPredictor{
		model:     model,
		metrics:   metrics,
		version:   VersionFor(model.TrainedAt),
		startedAt: time.Now(),
	}
	p.updateModelAge()
	return p, nil
}

// VersionFor formats a training time the way the model registry names
// versions.
func VersionFor(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}

func (p *ModelPredictor) Predict(ctx context.Context, pct recipe.Percentages) (Result, error) {
	return p.PredictFeatures(ctx, pct.Slice())
}

// PredictFeatures predicts from a raw feature row in catalog order.
func (p *ModelPredictor) PredictFeatures(ctx context.Context, features []float64) (Result, error) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, p.fail(err)
	}
	if err := validateFeatures(features); err != nil {
		return Result{}, p.fail(err)
	}

	out, err := p.model.Predict(features)
	if err != nil {
		return Result{}, p.fail(err)
	}
	pred, err := recipe.PredictionFromSlice(out)
	if err != nil {
		return Result{}, p.fail(err)
	}

	p.predictions.Add(1)
	if p.metrics != nil {
		p.metrics.MLPredictionsInc()
	}
	p.updateModelAge()

	return Result{Prediction: pred, OutOfRange: p.outOfRange(features)}, nil
}

func validateFeatures(features []float64) error {
	if len(features) != recipe.NumIngredients {
		return fmt.Errorf("%w: expected %d features, got %d", ErrFeatureCount, recipe.NumIngredients, len(features))
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

// outOfRange lists features that fall outside the min/max seen in training.
func (p *ModelPredictor) outOfRange(features []float64) []string {
	var names []string
	for i, v := range features {
		r := p.model.FeatureRanges[i]
		if v < r[0] || v > r[1] {
			names = append(names, recipe.Catalog[i].Name)
		}
	}
	return names
}

func (p *ModelPredictor) fail(err error) error {
	p.failures.Add(1)
	p.lastError.Store(err.Error())
	if p.metrics != nil {
		p.metrics.MLFailuresInc()
	}
	log.Debug().Err(err).Msg("prediction failed")
	return err
}

func (p *ModelPredictor) updateModelAge() {
	if p.metrics != nil && !p.model.TrainedAt.IsZero() {
		p.metrics.MLModelAgeSet(time.Since(p.model.TrainedAt).Seconds())
	}
}

func (p *ModelPredictor) Info() ModelInfo {
	importances := make(map[string]float64, len(p.model.FeatureNames))
	for i, name := range p.model.FeatureNames {
		importances[name] = p.model.Importances[i]
	}
	return ModelInfo{
		Version:      p.version,
		Source:       "local",
		TrainedAt:    p.model.TrainedAt,
		TrainingRows: p.model.TrainingRows,
		Trees:        len(p.model.Trees),
		MaxDepth:     p.model.Params.MaxDepth,
		Features:     p.model.FeatureNames,
		Targets:      p.model.TargetNames,
		Importances:  importances,
	}
}

// Health summarises prediction counts since startup.
func (p *ModelPredictor) Health() HealthStatus {
	predictions := p.predictions.Load()
	failures := p.failures.Load()

	status := HealthStatus{
		Healthy:         true,
		ModelLoaded:     p.model != nil,
		ModelVersion:    p.version,
		PredictionCount: predictions,
		UptimeSeconds:   time.Since(p.startedAt).Seconds(),
	}
	if total := predictions + failures; total > 0 {
		status.ErrorRate = float64(failures) / float64(total)
	}
	if s, ok := p.lastError.Load().(string); ok {
		status.LastError = s
	}
	return status
}
