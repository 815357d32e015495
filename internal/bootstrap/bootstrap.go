// Package bootstrap wires the classifier components shared by the
// entrypoints.
package bootstrap

import (
	"fmt"

	"github.com/ravenstack/ticket-classifier/internal/classifier"
	"github.com/ravenstack/ticket-classifier/internal/config"
	"github.com/ravenstack/ticket-classifier/internal/logger"
	"github.com/ravenstack/ticket-classifier/internal/processor"
	"github.com/ravenstack/ticket-classifier/internal/telemetry"
)

// App holds the wired classifier components.
type App struct {
	Config    *config.Config
	Log       logger.Logger
	Scorer    *classifier.HeuristicScorer
	Trainer   *classifier.WeakLabelTrainer
	Pipeline  *processor.Pipeline
	Telemetry *telemetry.Provider
}

// New loads configuration and builds the classification pipeline.
func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tp := telemetry.NewProvider()
	scorer := classifier.NewHeuristicScorer(classifier.DefaultRuleTable(), log)
	trainer := classifier.NewWeakLabelTrainer(scorer, log)
	pipeline := processor.NewPipeline(scorer, trainer, processor.Config{
		ConfidenceThreshold: cfg.Classifier.ConfidenceThreshold,
		FallbackMargin:      cfg.Classifier.FallbackMargin,
		Concurrency:         cfg.Classifier.Concurrency,
	}, log, tp)

	return &App{
		Config:    cfg,
		Log:       log,
		Scorer:    scorer,
		Trainer:   trainer,
		Pipeline:  pipeline,
		Telemetry: tp,
	}, nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}
