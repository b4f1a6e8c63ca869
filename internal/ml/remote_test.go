package ml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotePredictor(t *testing.T) {
	local, h := newTestAPI(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	metrics := &MockMetrics{}
	remote := NewRemotePredictor(srv.URL+"/", time.Second, metrics)

	pct := defaultPercentages(t)
	got, err := remote.Predict(context.Background(), pct)
	require.NoError(t, err)

	want, err := local.Predict(context.Background(), pct)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	predictions, failures, _ := metrics.Counts()
	assert.Equal(t, 1, predictions)
	assert.Equal(t, 0, failures)

	info := remote.Info()
	assert.Equal(t, local.Info().Version, info.Version)
	assert.Equal(t, srv.URL, info.Source)
}

func TestRemotePredictor_ServerError(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc(PathPredict, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	metrics := &MockMetrics{}
	remote := NewRemotePredictor(srv.URL, time.Second, metrics)

	_, err := remote.Predict(context.Background(), defaultPercentages(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	_, failures, _ := metrics.Counts()
	assert.Equal(t, 1, failures)

	info := remote.Info()
	assert.Equal(t, "unknown", info.Version)
}

func TestRemotePredictor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	remote := NewRemotePredictor(url, 200*time.Millisecond, nil)
	_, err := remote.Predict(context.Background(), defaultPercentages(t))
	assert.Error(t, err)
}
