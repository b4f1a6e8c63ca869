// Package dashboard serves the interactive estimator: ingredient sliders with
// live predictions, a per-session list of saved recipes and its export.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"recept-slider/internal/ml"
	"recept-slider/internal/storage"
)

// Recorder receives estimator events for monitoring.
type Recorder interface {
	RecipeSaved()
	SaveRejected(reason string)
	RecipeDeleted()
	ListReset()
	ExportServed()
	SessionsSet(n int)
	WSConnectionsAdd(delta float64)
	JournalWriteInc()
	JournalErrorInc()
}

// Journal stores saved recipes outside the session.
type Journal interface {
	Record(e storage.Entry) error
}

type Options struct {
	Port       int
	SessionTTL time.Duration
	Recorder   Recorder
	// Journal is optional.
	Journal Journal
	// API mounts the JSON prediction endpoints when set.
	API *ml.ModelServer
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

// Server is the estimator web application.
type Server struct {
	predictor ml.PredictorInterface
	sessions  *Sessions
	recorder  Recorder
	journal   Journal
	router    *mux.Router
	server    *http.Server
	upgrader  websocket.Upgrader
	page      *template.Template

	mu        sync.Mutex
	isRunning bool
}

func New(predictor ml.PredictorInterface, opts Options) *Server {
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	s := &Server{
		predictor: predictor,
		sessions:  NewSessions(ttl, rec.SessionsSet),
		recorder:  rec,
		journal:   opts.Journal,
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		page:      template.Must(template.New("page").Parse(pageTemplate)),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/estimate", s.handleEstimate).Methods(http.MethodPost)
	r.HandleFunc("/recipes", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/recipes/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/recipes/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{id}/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/api/recipes", s.handleRecipesAPI).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	if opts.API != nil {
		opts.API.Register(r)
	}
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}
	s.router = r

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("estimator is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	log.Info().Str("address", s.server.Addr).Msg("Starting estimator server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown estimator server: %w", err)
	}
	s.isRunning = false
	log.Info().Msg("Estimator server stopped")
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecipeSaved()             {}
func (nopRecorder) SaveRejected(string)      {}
func (nopRecorder) RecipeDeleted()           {}
func (nopRecorder) ListReset()               {}
func (nopRecorder) ExportServed()            {}
func (nopRecorder) SessionsSet(int)          {}
func (nopRecorder) WSConnectionsAdd(float64) {}
func (nopRecorder) JournalWriteInc()         {}
func (nopRecorder) JournalErrorInc()         {}
