package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	PathPredict = "/api/predict"
	PathModel   = "/api/model"
	PathHealth  = "/health"
)

// ModelServer exposes a local predictor as a JSON API.
type ModelServer struct {
	predictor *ModelPredictor
	timeout   time.Duration
}

// PredictRequest carries ten percentages in catalog order.
type PredictRequest struct {
	Percentages []float64 `json:"percentages"`
	RequestID   string    `json:"request_id,omitempty"`
}

type PredictResponse struct {
	Result
	RequestID    string    `json:"request_id,omitempty"`
	ModelVersion string    `json:"model_version"`
	Latency      float64   `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewModelServer(predictor *ModelPredictor) *ModelServer {
	return &ModelServer{predictor: predictor, timeout: 5 * time.Second}
}

// Register mounts the API routes on r.
func (ms *ModelServer) Register(r *mux.Router) {
	r.HandleFunc(PathPredict, ms.handlePredict).Methods(http.MethodPost)
	r.HandleFunc(PathModel, ms.handleModelInfo).Methods(http.MethodGet)
	r.HandleFunc(PathHealth, ms.handleHealth).Methods(http.MethodGet)
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ms.timeout)
	defer cancel()

	result, err := ms.predictor.PredictFeatures(ctx, req.Percentages)
	if err != nil {
		status := http.StatusInternalServerError
		if isInputError(err) {
			status = http.StatusBadRequest
		} else {
			log.Error().Err(err).Msg("prediction failed")
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Result:       result,
		RequestID:    req.RequestID,
		ModelVersion: ms.predictor.version,
		Latency:      float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:    time.Now(),
	})
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := ms.predictor.Health()

	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ms.predictor.Info())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}
