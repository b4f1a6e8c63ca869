package ml

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"recept-slider/internal/recipe"
)

// FallbackPredictor asks the primary predictor first and answers from the
// secondary one when the primary fails. Input errors are not retried.
type FallbackPredictor struct {
	primary   PredictorInterface
	secondary PredictorInterface
	uses      atomic.Int64
}

func NewFallbackPredictor(primary, secondary PredictorInterface) *FallbackPredictor {
	return &FallbackPredictor{primary: primary, secondary: secondary}
}

func (p *FallbackPredictor) Predict(ctx context.Context, pct recipe.Percentages) (Result, error) {
	res, err := p.primary.Predict(ctx, pct)
	if err == nil || isInputError(err) || ctx.Err() != nil {
		return res, err
	}

	p.uses.Add(1)
	log.Warn().Err(err).Msg("Primary predictor failed, using fallback")
	return p.secondary.Predict(ctx, pct)
}

// Info describes the primary model.
func (p *FallbackPredictor) Info() ModelInfo {
	return p.primary.Info()
}

// Uses is the number of predictions answered by the fallback.
func (p *FallbackPredictor) Uses() int64 {
	return p.uses.Load()
}

func isInputError(err error) bool {
	return errors.Is(err, ErrFeatureCount) || errors.Is(err, ErrInvalidInput)
}
