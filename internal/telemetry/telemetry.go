// Package telemetry provides Prometheus metrics and an OpenTelemetry
// tracer for the ticket classifier service.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ticket-classifier"

// Metrics holds all classifier Prometheus metrics.
type Metrics struct {
	TicketsProcessed     prometheus.Counter
	TicketsFailed        prometheus.Counter
	BatchSize            prometheus.Histogram
	TrainingDuration     prometheus.Histogram
	PredictionsTotal     *prometheus.CounterVec
	TopicTotal           *prometheus.CounterVec
	Confidence           prometheus.Histogram
	HeuristicFallbacks   prometheus.Counter
	CalibrationFallbacks prometheus.Counter
}

// Provider wraps the tracer and metrics handles.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

var (
	initOnce      sync.Once
	sharedMetrics *Metrics
)

// NewProvider initializes telemetry. Metrics register against the
// default registry exactly once; subsequent providers share them.
func NewProvider() *Provider {
	initOnce.Do(func() {
		sharedMetrics = initMetrics()
	})
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: sharedMetrics,
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTraining records training duration for one batch.
func (p *Provider) ObserveTraining(d time.Duration) {
	p.Metrics.TrainingDuration.Observe(d.Seconds())
}

// ObservePrediction records one classification outcome.
func (p *Provider) ObservePrediction(topic string, confidence float64, usedModel bool) {
	p.Metrics.TicketsProcessed.Inc()
	p.Metrics.TopicTotal.WithLabelValues(topic).Inc()
	p.Metrics.Confidence.Observe(confidence)
	if usedModel {
		p.Metrics.PredictionsTotal.WithLabelValues("model").Inc()
	} else {
		p.Metrics.PredictionsTotal.WithLabelValues("heuristic").Inc()
		p.Metrics.HeuristicFallbacks.Inc()
	}
}

func initMetrics() *Metrics {
	return &Metrics{
		TicketsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ticket_classifier_tickets_processed_total",
			Help: "Total tickets classified",
		}),
		TicketsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ticket_classifier_tickets_failed_total",
			Help: "Total tickets that failed classification",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticket_classifier_batch_size",
			Help:    "Number of tickets per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		TrainingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticket_classifier_training_duration_seconds",
			Help:    "Time to fit the weak-label model for one batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PredictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_classifier_predictions_total",
			Help: "Predictions by distribution source (model or heuristic)",
		}, []string{"source"}),
		TopicTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_classifier_topic_total",
			Help: "Predicted topic distribution",
		}, []string{"topic"}),
		Confidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticket_classifier_confidence",
			Help:    "Confidence of the predicted topic",
			Buckets: []float64{0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),
		HeuristicFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ticket_classifier_heuristic_fallbacks_total",
			Help: "Predictions where the gate rejected the model distribution",
		}),
		CalibrationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ticket_classifier_calibration_fallbacks_total",
			Help: "Batches trained without probability calibration",
		}),
	}
}
