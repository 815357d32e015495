package domain

import "strings"

// Topic is one of the five canonical support ticket topics.
type Topic string

// Canonical topic labels.
const (
	TopicBilling   Topic = "Billing and Payment"
	TopicTechnical Topic = "Technical Issue"
	TopicUsage     Topic = "Product Usage"
	TopicAccount   Topic = "Account and Access"
	TopicFeedback  Topic = "General Feedback"
)

// LabelOrder is the fixed topic order. It defines output column order and
// breaks arg-max ties: on equal probability the earlier topic wins.
var LabelOrder = []Topic{
	TopicBilling,
	TopicTechnical,
	TopicUsage,
	TopicAccount,
	TopicFeedback,
}

// NumTopics is the size of the canonical label set.
const NumTopics = 5

// Distribution maps every canonical topic to a probability in [0,1].
// A well-formed distribution always materializes all five keys and sums
// to 1 within floating-point tolerance.
type Distribution map[Topic]float64

// Uniform returns the defined fallback distribution for text that matches
// nothing: 0.2 for every topic.
func Uniform() Distribution {
	d := make(Distribution, NumTopics)
	for _, t := range LabelOrder {
		d[t] = 1.0 / NumTopics
	}
	return d
}

// ArgMax returns the highest-probability topic, breaking ties by
// LabelOrder position.
func (d Distribution) ArgMax() Topic {
	best := LabelOrder[0]
	bestProb := d[best]
	for _, t := range LabelOrder[1:] {
		if d[t] > bestProb {
			best = t
			bestProb = d[t]
		}
	}
	return best
}

// TopTwo returns the highest and second-highest probabilities.
// With a single positive entry the second value is zero.
func (d Distribution) TopTwo() (first, second float64) {
	for _, t := range LabelOrder {
		p := d[t]
		if p > first {
			second = first
			first = p
		} else if p > second {
			second = p
		}
	}
	return first, second
}

// ProbabilityField returns the deterministic output field name for a
// topic's probability: "prob_" plus the label with spaces replaced by
// underscores.
func ProbabilityField(t Topic) string {
	return "prob_" + strings.ReplaceAll(string(t), " ", "_")
}

// ClassificationResult is the per-ticket output of the hybrid predictor.
type ClassificationResult struct {
	PredictedTopic Topic        `json:"predicted_topic"`
	Confidence     float64      `json:"confidence"`
	Probabilities  Distribution `json:"probabilities"`
	// UsedModel reports whether the gate selected the statistical model's
	// distribution. False means the heuristic distribution was used.
	UsedModel bool `json:"used_model"`
}
