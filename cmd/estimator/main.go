package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recept-slider/internal/cfg"
	"recept-slider/internal/common"
	"recept-slider/internal/dashboard"
	"recept-slider/internal/metrics"
	"recept-slider/internal/ml"
	"recept-slider/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to config.yaml (overrides CONFIG_FILE)")
		port          = flag.Int("port", 0, "HTTP port (overrides config)")
		modelPath     = flag.String("model", "", "Model artifact to serve (overrides config)")
		exportJournal = flag.String("export-journal", "", "Write journaled recipes as CSV to this file and exit")
		since         = flag.Duration("since", 0, "Only export recipes saved within this duration")
	)
	flag.Parse()

	if *configPath != "" {
		os.Setenv(common.EnvConfigFile, *configPath)
	}
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *port != 0 {
		c.Port = *port
	}
	if *modelPath != "" {
		c.ModelPath = *modelPath
		c.ModelURL = ""
	}

	setupLogging(c.LogLevel)

	if *exportJournal != "" {
		if err := exportJournalCSV(c, *exportJournal, *since); err != nil {
			log.Fatal().Err(err).Msg("journal export failed")
		}
		return
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	predictor, api := initializePredictor(c, mw)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	opts := dashboard.Options{
		Port:       c.Port,
		SessionTTL: c.SessionTTL,
		Recorder:   mw,
		API:        api,
	}
	if store != nil {
		opts.Journal = store
	}
	if c.MetricsEnabled {
		opts.MetricsHandler = m.Handler()
	}
	server := dashboard.New(predictor, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info().
		Int("port", c.Port).
		Str("model", predictor.Info().Version).
		Bool("metrics", c.MetricsEnabled).
		Bool("journal", store != nil).
		Msg("Estimator ready")

	waitForShutdown(ctx, cancel, server, errCh)
}

func setupLogging(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// initializePredictor prefers a remote model server when MODEL_URL is set and
// keeps a readable local model as its fallback. Only a local model is
// re-exposed through the JSON API.
func initializePredictor(c cfg.Settings, mw ml.MetricsInterface) (ml.PredictorInterface, *ml.ModelServer) {
	path := cfg.ResolveModelPath(c.ModelPath)

	if c.ModelURL != "" {
		log.Info().Str("url", c.ModelURL).Msg("Using remote predictor")
		remote := ml.NewRemotePredictor(c.ModelURL, c.RemoteTimeout, mw)
		if path == "" {
			return remote, nil
		}
		local, err := ml.LoadModelPredictor(path, mw)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("No local fallback model")
			return remote, nil
		}
		log.Info().Str("path", path).Str("version", local.Info().Version).Msg("Local model loaded as fallback")
		return ml.NewFallbackPredictor(remote, local), nil
	}

	p, err := ml.LoadModelPredictor(path, mw)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to load model, run the trainer first")
	}
	info := p.Info()
	log.Info().
		Str("path", path).
		Str("version", info.Version).
		Int("trees", info.Trees).
		Int("training_rows", info.TrainingRows).
		Msg("Model loaded")

	return p, ml.NewModelServer(p)
}

// initializeStorage opens the recipe journal if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("journal initialization failed, continuing without persistence")
		return nil
	}
	return store
}

func exportJournalCSV(c cfg.Settings, path string, since time.Duration) error {
	if c.DataPath == "" {
		return fmt.Errorf("%s is not set, there is no journal to export", common.EnvDataPath)
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	end := time.Now()
	var start time.Time
	if since > 0 {
		start = end.Add(-since)
	}

	n, err := store.ExportCSV(f, start, end)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log.Info().Int("recipes", n).Str("file", path).Msg("Journal exported")
	return nil
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// drains open requests.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *dashboard.Server, errCh <-chan error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("estimator server failed")
		}
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("Estimator stopped")
}
