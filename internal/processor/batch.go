// Package processor orchestrates batch classification: one training pass
// per batch, then per-ticket prediction over a worker pool.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ravenstack/ticket-classifier/internal/classifier"
	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
	"github.com/ravenstack/ticket-classifier/internal/telemetry"
)

const defaultConcurrency = 10

// BatchStats are the aggregate diagnostics for one batch. Reporting
// only; they never feed back into classification.
type BatchStats struct {
	Total         int                  `json:"total"`
	TopicCounts   map[domain.Topic]int `json:"topic_counts"`
	AvgConfidence float64              `json:"avg_confidence"`
	// FallbackRate is the fraction of tickets where the gate selected
	// the heuristic distribution over the model's.
	FallbackRate float64 `json:"fallback_rate"`
	// Calibrated reports whether the batch's model carries probability
	// calibration.
	Calibrated bool  `json:"calibrated"`
	DurationMs int64 `json:"duration_ms"`
}

// Pipeline runs the two-stage classification over a batch of tickets.
type Pipeline struct {
	scorer      *classifier.HeuristicScorer
	trainer     *classifier.WeakLabelTrainer
	threshold   float64
	margin      float64
	concurrency int
	log         logger.Logger
	telemetry   *telemetry.Provider
}

// Config holds pipeline configuration.
type Config struct {
	ConfidenceThreshold float64
	FallbackMargin      float64
	Concurrency         int
}

// NewPipeline creates a pipeline over the given scorer and trainer.
func NewPipeline(scorer *classifier.HeuristicScorer, trainer *classifier.WeakLabelTrainer,
	cfg Config, log logger.Logger, tp *telemetry.Provider,
) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		scorer:      scorer,
		trainer:     trainer,
		threshold:   cfg.ConfidenceThreshold,
		margin:      cfg.FallbackMargin,
		concurrency: cfg.Concurrency,
		log:         log,
		telemetry:   tp,
	}
}

// Run trains once on the batch's weak labels, then predicts every
// ticket. Training completes before any prediction starts; predictions
// fan out over a worker pool against the read-only model. Output order
// matches input order.
func (p *Pipeline) Run(ctx context.Context, tickets []domain.Ticket) ([]domain.ClassifiedTicket, *BatchStats, error) {
	start := time.Now()

	if len(tickets) == 0 {
		return []domain.ClassifiedTicket{}, &BatchStats{TopicCounts: map[domain.Topic]int{}}, nil
	}

	var span trace.Span
	if p.telemetry != nil {
		ctx, span = p.telemetry.Tracer.Start(ctx, "pipeline.run",
			trace.WithAttributes(attribute.Int("batch_size", len(tickets))))
		defer span.End()
		p.telemetry.Metrics.BatchSize.Observe(float64(len(tickets)))
	}

	model, err := p.train(ctx, tickets)
	if err != nil {
		return nil, nil, err
	}

	predictor := classifier.NewHybridPredictor(p.scorer, model, p.threshold, p.margin)
	results := p.predictAll(ctx, tickets, predictor)

	stats := p.aggregate(results, model, time.Since(start))
	p.log.Info("batch complete",
		logger.Int("tickets", stats.Total),
		logger.Any("topic_counts", stats.TopicCounts),
		logger.Float64("avg_confidence", stats.AvgConfidence),
		logger.Float64("fallback_rate", stats.FallbackRate),
		logger.Bool("calibrated", stats.Calibrated),
		logger.Int64("duration_ms", stats.DurationMs))

	return results, stats, nil
}

func (p *Pipeline) train(ctx context.Context, tickets []domain.Ticket) (*classifier.TrainedModel, error) {
	trainStart := time.Now()

	var span trace.Span
	if p.telemetry != nil {
		_, span = p.telemetry.Tracer.Start(ctx, "pipeline.train")
		defer span.End()
	}

	model, err := p.trainer.Fit(tickets)
	if err != nil {
		return nil, fmt.Errorf("train weak-label model: %w", err)
	}
	if p.telemetry != nil {
		p.telemetry.ObserveTraining(time.Since(trainStart))
		if !model.Calibrated() {
			p.telemetry.Metrics.CalibrationFallbacks.Inc()
		}
	}
	return model, nil
}

func (p *Pipeline) predictAll(ctx context.Context, tickets []domain.Ticket,
	predictor *classifier.HybridPredictor,
) []domain.ClassifiedTicket {
	var span trace.Span
	if p.telemetry != nil {
		_, span = p.telemetry.Tracer.Start(ctx, "pipeline.predict")
		defer span.End()
	}

	results := make([]domain.ClassifiedTicket, len(tickets))
	now := time.Now().UTC()

	workers := p.concurrency
	if workers > len(tickets) {
		workers = len(tickets)
	}

	jobs := make(chan int, len(tickets))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ticket := tickets[i]
				results[i] = domain.ClassifiedTicket{
					Ticket:       ticket,
					Result:       predictor.Predict(ticket.Subject, ticket.Body),
					ClassifiedAt: now,
				}
			}
		}()
	}
	for i := range tickets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *Pipeline) aggregate(results []domain.ClassifiedTicket, model *classifier.TrainedModel, elapsed time.Duration) *BatchStats {
	stats := &BatchStats{
		Total:       len(results),
		TopicCounts: make(map[domain.Topic]int, domain.NumTopics),
		Calibrated:  model != nil && model.Calibrated(),
		DurationMs:  elapsed.Milliseconds(),
	}

	var confidenceSum float64
	fallbacks := 0
	for i := range results {
		r := &results[i].Result
		stats.TopicCounts[r.PredictedTopic]++
		confidenceSum += r.Confidence
		if !r.UsedModel {
			fallbacks++
		}
		if p.telemetry != nil {
			p.telemetry.ObservePrediction(string(r.PredictedTopic), r.Confidence, r.UsedModel)
		}
	}
	if stats.Total > 0 {
		stats.AvgConfidence = confidenceSum / float64(stats.Total)
		stats.FallbackRate = float64(fallbacks) / float64(stats.Total)
	}
	return stats
}
