package metrics

// Wrapper adapts Metrics to the small method sets that other packages depend
// on, so they do not import prometheus.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) MLPredictionsInc() {
	w.m.MLPredictions.Inc()
}

func (w *Wrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
}

func (w *Wrapper) MLLatencyObserve(v float64) {
	w.m.MLLatency.Observe(v)
}

func (w *Wrapper) MLModelAgeSet(v float64) {
	w.m.MLModelAge.Set(v)
}

func (w *Wrapper) RecipeSaved() {
	w.m.RecipesSaved.Inc()
}

func (w *Wrapper) SaveRejected(reason string) {
	w.m.SaveRejections.WithLabelValues(reason).Inc()
}

func (w *Wrapper) RecipeDeleted() {
	w.m.RecipesDeleted.Inc()
}

func (w *Wrapper) ListReset() {
	w.m.ListResets.Inc()
}

func (w *Wrapper) ExportServed() {
	w.m.Exports.Inc()
}

func (w *Wrapper) SessionsSet(n int) {
	w.m.ActiveSessions.Set(float64(n))
}

func (w *Wrapper) WSConnectionsAdd(delta float64) {
	w.m.WSConnections.Add(delta)
}

func (w *Wrapper) JournalWriteInc() {
	w.m.JournalWrites.Inc()
}

func (w *Wrapper) JournalErrorInc() {
	w.m.JournalErrors.Inc()
}
