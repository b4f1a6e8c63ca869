// Package metrics defines the Prometheus metrics of the estimator: model
// predictions, saved recipes, exports and sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Save rejection reasons.
const (
	ReasonZeroTotal = "zero_total"
	ReasonEmptyName = "empty_name"
	ReasonInvalid   = "invalid"
)

// Metrics holds all Prometheus metrics for the estimator.
type Metrics struct {
	// Prediction metrics
	MLPredictions prometheus.Counter   // Predictions served
	MLFailures    prometheus.Counter   // Predictions that returned an error
	MLModelAge    prometheus.Gauge     // Seconds since the model was trained
	MLLatency     prometheus.Histogram // Prediction latency in seconds

	// Recipe metrics
	RecipesSaved   prometheus.Counter
	SaveRejections *prometheus.CounterVec // by reason
	RecipesDeleted prometheus.Counter
	ListResets     prometheus.Counter
	Exports        prometheus.Counter

	// Session metrics
	ActiveSessions prometheus.Gauge
	WSConnections  prometheus.Gauge

	// Journal metrics
	JournalWrites prometheus.Counter
	JournalErrors prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with registerer. Tests pass a fresh
// prometheus.NewRegistry() to stay isolated from the global one.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	gatherer := prometheus.DefaultGatherer
	if g, ok := registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Metrics{
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of model predictions served",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of failed model predictions",
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_age_seconds",
			Help: "Seconds since the loaded model was trained",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		RecipesSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_saved_total",
			Help: "Total number of recipes saved",
		}),
		SaveRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_save_rejections_total",
			Help: "Recipe saves refused, by reason",
		}, []string{"reason"}),
		RecipesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipes_deleted_total",
			Help: "Total number of recipes deleted",
		}),
		ListResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_list_resets_total",
			Help: "Total number of recipe list resets",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_exports_total",
			Help: "Total number of spreadsheet exports served",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of live estimator sessions",
		}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Number of open live-update connections",
		}),
		JournalWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "journal_writes_total",
			Help: "Total number of prediction journal entries written",
		}),
		JournalErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "journal_errors_total",
			Help: "Total number of failed prediction journal writes",
		}),
		gatherer: gatherer,
	}
}

// Handler serves the registry these metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
