package classifier

import (
	"testing"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

func TestGateAccepts(t *testing.T) {
	dist := func(top, second float64) domain.Distribution {
		d := domain.Distribution{}
		for _, topic := range domain.LabelOrder {
			d[topic] = 0
		}
		d[domain.TopicBilling] = top
		d[domain.TopicTechnical] = second
		return d
	}

	tests := []struct {
		name string
		dist domain.Distribution
		want bool
	}{
		{"confident with margin", dist(0.7, 0.2), true},
		{"below threshold", dist(0.5, 0.1), false},
		{"margin too small", dist(0.6, 0.58), false},
		{"exactly at both boundaries", dist(0.55, 0.5), true},
		{"single positive class", dist(1, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GateAccepts(tt.dist, DefaultConfidenceThreshold, DefaultFallbackMargin)
			if got != tt.want {
				t.Errorf("GateAccepts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredictWithoutModelUsesHeuristic(t *testing.T) {
	p := NewHybridPredictor(newTestScorer(), nil, 0, 0)

	res := p.Predict("Question about my invoice", "I need a refund for a duplicate charge.")
	if res.UsedModel {
		t.Error("nil model must never report model usage")
	}
	if res.PredictedTopic != domain.TopicBilling {
		t.Errorf("PredictedTopic = %q, want %q", res.PredictedTopic, domain.TopicBilling)
	}
	if res.Confidence != res.Probabilities[res.PredictedTopic] {
		t.Errorf("confidence %g must equal the predicted topic's probability %g",
			res.Confidence, res.Probabilities[res.PredictedTopic])
	}
}

func TestPredictGateConsistency(t *testing.T) {
	model, err := newTestTrainer().Fit(trainingBatch())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	p := NewHybridPredictor(newTestScorer(), model, DefaultConfidenceThreshold, DefaultFallbackMargin)

	// The distribution source and the UsedModel flag must agree: one
	// gate decision drives both.
	for _, tt := range trainingBatch() {
		res := p.Predict(tt.Subject, tt.Body)
		modelDist := model.Distribution(tt.Subject, tt.Body)
		accepted := GateAccepts(modelDist, DefaultConfidenceThreshold, DefaultFallbackMargin)
		if res.UsedModel != accepted {
			t.Errorf("ticket %s: UsedModel = %v, gate decision = %v", tt.ID, res.UsedModel, accepted)
		}

		want := p.scorer.Distribution(tt.Subject, tt.Body)
		if accepted {
			want = modelDist
		}
		if res.PredictedTopic != want.ArgMax() {
			t.Errorf("ticket %s: PredictedTopic = %q, want %q", tt.ID, res.PredictedTopic, want.ArgMax())
		}
	}
}
