package classifier

import "github.com/ravenstack/ticket-classifier/internal/domain"

// Gate thresholds. A high top probability alone does not guarantee
// discriminative confidence when classes are close, so the gate also
// requires a margin over the runner-up.
const (
	DefaultConfidenceThreshold = 0.55
	DefaultFallbackMargin      = 0.05
)

// HybridPredictor selects between the heuristic distribution and the
// trained model's distribution via a confidence-and-margin gate. The
// gate is evaluated exactly once per ticket: the result drives both the
// final distribution and the fallback-rate diagnostic.
type HybridPredictor struct {
	scorer    *HeuristicScorer
	model     *TrainedModel
	threshold float64
	margin    float64
}

// NewHybridPredictor builds a predictor. A nil model means every
// prediction uses the heuristic distribution.
func NewHybridPredictor(scorer *HeuristicScorer, model *TrainedModel, threshold, margin float64) *HybridPredictor {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if margin <= 0 {
		margin = DefaultFallbackMargin
	}
	return &HybridPredictor{
		scorer:    scorer,
		model:     model,
		threshold: threshold,
		margin:    margin,
	}
}

// Predict classifies a single ticket.
func (p *HybridPredictor) Predict(subject, body string) domain.ClassificationResult {
	heuristic := p.scorer.Distribution(subject, body)

	final := heuristic
	usedModel := false
	if p.model != nil {
		modelDist := p.model.Distribution(subject, body)
		if GateAccepts(modelDist, p.threshold, p.margin) {
			final = modelDist
			usedModel = true
		}
	}

	topic := final.ArgMax()
	return domain.ClassificationResult{
		PredictedTopic: topic,
		Confidence:     final[topic],
		Probabilities:  final,
		UsedModel:      usedModel,
	}
}

// GateAccepts reports whether a model distribution passes the
// confidence-and-margin gate. With a single positive class the margin
// equals the top probability.
func GateAccepts(dist domain.Distribution, threshold, margin float64) bool {
	first, second := dist.TopTwo()
	return first >= threshold && first-second >= margin
}
