package ml

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"recept-slider/internal/recipe"
)

// RemotePredictor forwards predictions to another estimator's JSON API.
type RemotePredictor struct {
	base    string
	rest    *resty.Client
	metrics MetricsInterface

	mu   sync.Mutex
	info *ModelInfo
}

func NewRemotePredictor(base string, timeout time.Duration, metrics MetricsInterface) *RemotePredictor {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	return &RemotePredictor{
		base:    strings.TrimRight(base, "/"),
		rest:    r,
		metrics: metrics,
	}
}

func (rp *RemotePredictor) Predict(ctx context.Context, pct recipe.Percentages) (Result, error) {
	start := time.Now()
	defer func() {
		if rp.metrics != nil {
			rp.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	var out PredictResponse
	resp, err := rp.rest.R().
		SetContext(ctx).
		SetBody(PredictRequest{Percentages: pct.Slice()}).
		SetResult(&out).
		Post(rp.base + PathPredict)
	if err != nil {
		return Result{}, rp.fail(fmt.Errorf("request failed: %w", err))
	}
	if resp.StatusCode() != 200 {
		return Result{}, rp.fail(fmt.Errorf("remote predictor: status %d, body: %s",
			resp.StatusCode(), strings.TrimSpace(resp.String())))
	}

	if rp.metrics != nil {
		rp.metrics.MLPredictionsInc()
	}
	return out.Result, nil
}

func (rp *RemotePredictor) fail(err error) error {
	if rp.metrics != nil {
		rp.metrics.MLFailuresInc()
	}
	return err
}

// Info returns the remote model description. A failed lookup is retried on
// the next call and reported as an unknown version meanwhile.
func (rp *RemotePredictor) Info() ModelInfo {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.info != nil {
		return *rp.info
	}

	var info ModelInfo
	resp, err := rp.rest.R().
		SetResult(&info).
		Get(rp.base + PathModel)
	if err != nil || resp.StatusCode() != 200 {
		if err == nil {
			err = fmt.Errorf("status %d", resp.StatusCode())
		}
		log.Warn().Err(err).Str("url", rp.base).Msg("Failed to fetch remote model info")
		return ModelInfo{Version: "unknown", Source: rp.base}
	}

	info.Source = rp.base
	rp.info = &info
	return info
}
