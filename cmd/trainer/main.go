package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"recept-slider/internal/cfg"
	"recept-slider/internal/common"
	"recept-slider/internal/ml"
	"recept-slider/internal/training"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to config.yaml (overrides CONFIG_FILE)")
		dataFile     = flag.String("data", "", "Spreadsheet with experiment results (.xlsx or .csv)")
		sheet        = flag.String("sheet", "", "Worksheet holding the data")
		outPath      = flag.String("out", "", "Where to write the model artifact")
		modelsDir    = flag.String("models-dir", "", "Directory for versioned models and the registry")
		noRegistry   = flag.Bool("no-registry", false, "Do not register the trained model as a new version")
		evaluate     = flag.Bool("evaluate", false, "Score the model on the held-out rows")
		trees        = flag.Int("trees", 0, "Number of trees")
		depth        = flag.Int("depth", 0, "Maximum tree depth")
		seed         = flag.Int64("seed", -1, "Random seed for the split and the forest")
		testSize     = flag.Float64("test-size", -1, "Share of rows held out, between 0 and 0.9")
		logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error")
		listVersions = flag.Bool("list-versions", false, "List registered model versions and exit")
		activate     = flag.String("activate", "", "Install the given registered version and exit")
		rollback     = flag.Bool("rollback", false, "Reinstall the previously active version and exit")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *configPath != "" {
		os.Setenv(common.EnvConfigFile, *configPath)
	}
	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level := settings.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(l)
	}

	c := training.ConfigFromSettings(settings)
	if *dataFile != "" {
		c.DataFile = *dataFile
	}
	if *sheet != "" {
		c.Sheet = *sheet
	}
	if *outPath != "" {
		c.ModelPath = *outPath
	}
	if *modelsDir != "" {
		c.ModelsDir = *modelsDir
	}
	if *trees > 0 {
		c.Params.NumTrees = *trees
	}
	if *depth > 0 {
		c.Params.MaxDepth = *depth
	}
	if *seed >= 0 {
		c.Params.Seed = *seed
	}
	if *testSize >= 0 {
		c.TestSize = *testSize
	}
	c.Evaluate = *evaluate

	switch {
	case *listVersions:
		printVersions(c.ModelsDir)
		return
	case *activate != "":
		v, err := training.Activate(c.ModelsDir, *activate, c.ModelPath)
		if err != nil {
			log.Fatal().Err(err).Str("version", *activate).Msg("Activation failed")
		}
		fmt.Printf("Activated %s -> %s\n", v.Version, c.ModelPath)
		return
	case *rollback:
		v, err := training.Rollback(c.ModelsDir, c.ModelPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		fmt.Printf("Rolled back to %s -> %s\n", v.Version, c.ModelPath)
		return
	}

	if *noRegistry {
		c.ModelsDir = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("=== Training Configuration ===")
	fmt.Printf("Data File: %s (sheet %s)\n", c.DataFile, c.Sheet)
	fmt.Printf("Model Path: %s\n", c.ModelPath)
	fmt.Printf("Models Dir: %s\n", c.ModelsDir)
	fmt.Printf("Trees: %d, Max Depth: %d, Seed: %d\n", c.Params.NumTrees, c.Params.MaxDepth, c.Params.Seed)
	fmt.Printf("Test Size: %.2f, Evaluate: %t\n", c.TestSize, c.Evaluate)
	fmt.Println("==============================")

	report, err := training.Run(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	printReport(report)
}

func printReport(r *training.Report) {
	fmt.Println()
	fmt.Println("=== Training Results ===")
	fmt.Printf("Version: %s\n", r.Version)
	fmt.Printf("Rows: %d (dropped %d), train %d, held out %d\n", r.Rows, r.Dropped, r.TrainRows, r.TestRows)
	fmt.Printf("Duration: %s\n", r.Duration)

	if len(r.Scores) > 0 {
		fmt.Println("\nHold-out scores:")
		for _, s := range r.Scores {
			fmt.Printf("  %-22s R2 %7.4f  RMSE %10.4f\n", s.Target, s.R2, s.RMSE)
		}
	}

	names := make([]string, 0, len(r.Importances))
	for name := range r.Importances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.Importances[names[i]] > r.Importances[names[j]]
	})

	fmt.Println("\nFeature importances:")
	for _, name := range names {
		fmt.Printf("  %-22s %.4f\n", name, r.Importances[name])
	}
	fmt.Printf("\nModel saved to %s\n", r.ModelPath)
}

func printVersions(modelsDir string) {
	mm, err := ml.NewModelManager(modelsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open model registry")
	}

	versions := mm.ListVersions()
	if len(versions) == 0 {
		fmt.Printf("No model versions registered in %s\n", modelsDir)
		return
	}

	for _, v := range versions {
		marker := " "
		if v.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  train %d  held out %d\n",
			marker, v.Version, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Metrics.TrainingRows, v.Metrics.HeldOutRows)
		for _, s := range v.Metrics.Scores {
			fmt.Printf("    %-22s R2 %7.4f  RMSE %10.4f\n", s.Target, s.R2, s.RMSE)
		}
	}
}
