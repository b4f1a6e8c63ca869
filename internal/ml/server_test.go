package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*ModelPredictor, http.Handler) {
	t.Helper()
	p, err := NewModelPredictor(trainedModel(t), &MockMetrics{})
	require.NoError(t, err)

	r := mux.NewRouter()
	NewModelServer(p).Register(r)
	return p, r
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestModelServer_Predict(t *testing.T) {
	p, h := newTestAPI(t)
	pct := defaultPercentages(t)

	rec := postJSON(t, h, PathPredict, PredictRequest{Percentages: pct.Slice(), RequestID: "r1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	want, err := p.PredictFeatures(context.Background(), pct.Slice())
	require.NoError(t, err)
	assert.Equal(t, want.Prediction, resp.Prediction)
	assert.Equal(t, "r1", resp.RequestID)
	assert.Equal(t, p.Info().Version, resp.ModelVersion)
}

func TestModelServer_BadRequests(t *testing.T) {
	_, h := newTestAPI(t)

	rec := postJSON(t, h, PathPredict, PredictRequest{Percentages: []float64{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expected 10 features")

	req := httptest.NewRequest(http.MethodPost, PathPredict, bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, PathPredict, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestModelServer_InfoAndHealth(t *testing.T) {
	p, h := newTestAPI(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathModel, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, p.Info().Version, info.Version)
	assert.Equal(t, 10, info.Trees)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.True(t, health.Healthy)
	assert.Equal(t, info.Version, health.ModelVersion)
}
