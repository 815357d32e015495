package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
)

// ErrNoTickets is returned when Fit is called on an empty batch.
var ErrNoTickets = errors.New("no tickets to train on")

// LabelEncoder is the explicit topic-to-class-index mapping owned by the
// trainer. Classes are the distinct weak labels observed in the batch,
// in sorted order; canonical topics never observed have no index.
type LabelEncoder struct {
	classes []domain.Topic
	index   map[domain.Topic]int
}

// NewLabelEncoder builds an encoder over the distinct labels, sorted.
func NewLabelEncoder(labels []domain.Topic) *LabelEncoder {
	distinct := make(map[domain.Topic]bool, len(labels))
	for _, l := range labels {
		distinct[l] = true
	}
	classes := make([]domain.Topic, 0, len(distinct))
	for l := range distinct {
		classes = append(classes, l)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	index := make(map[domain.Topic]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

// Encode returns the class index of a topic.
func (e *LabelEncoder) Encode(t domain.Topic) int {
	return e.index[t]
}

// Topic returns the topic for a class index.
func (e *LabelEncoder) Topic(i int) domain.Topic {
	return e.classes[i]
}

// NumClasses returns the number of distinct classes.
func (e *LabelEncoder) NumClasses() int {
	return len(e.classes)
}

// TrainedModel is the fitted vectorizer plus classifier pair, scoped to
// one batch. Read-only after Fit; safe for concurrent prediction.
type TrainedModel struct {
	vec *Vectorizer
	enc *LabelEncoder
	cal *calibratedModel
	lin *linearModel
}

// Calibrated reports whether probability calibration succeeded. When
// false, probabilities are derived from decision margins.
func (m *TrainedModel) Calibrated() bool {
	return m.cal != nil
}

// Distribution returns the model's probability distribution for a
// ticket, materializing all five canonical topics. Topics never seen as
// a weak label in the training batch receive probability 0.
func (m *TrainedModel) Distribution(subject, body string) domain.Distribution {
	x := m.vec.Transform(TrainingDocument(subject, body))

	var probs []float64
	if m.cal != nil {
		probs = m.cal.predictProba(x)
	} else {
		probs = marginProbabilities(m.lin.decision(x))
	}

	dist := make(domain.Distribution, domain.NumTopics)
	for _, t := range domain.LabelOrder {
		dist[t] = 0
	}
	for c, p := range probs {
		dist[m.enc.Topic(c)] = p
	}
	return dist
}

// marginProbabilities converts raw decision margins into
// pseudo-probabilities when no calibrator is available: a logistic
// transform of the signed margin for two classes, a softmax for more.
func marginProbabilities(scores []float64) []float64 {
	switch len(scores) {
	case 0:
		return nil
	case 1:
		return []float64{1}
	case 2:
		p := 1 / (1 + math.Exp(-(scores[1] - scores[0])))
		return []float64{1 - p, p}
	default:
		max := scores[0]
		for _, s := range scores[1:] {
			if s > max {
				max = s
			}
		}
		probs := make([]float64, len(scores))
		var total float64
		for c, s := range scores {
			probs[c] = math.Exp(s - max)
			total += probs[c]
		}
		for c := range probs {
			probs[c] /= total
		}
		return probs
	}
}

// TrainingDocument concatenates subject and body (subject first) into
// the single document used for vectorization.
func TrainingDocument(subject, body string) string {
	return strings.TrimSpace(subject + " " + body)
}

// WeakLabelTrainer fits a calibrated statistical classifier on weak
// labels produced by the heuristic scorer.
type WeakLabelTrainer struct {
	scorer *HeuristicScorer
	log    logger.Logger
}

// NewWeakLabelTrainer creates a trainer over the given scorer.
func NewWeakLabelTrainer(scorer *HeuristicScorer, log logger.Logger) *WeakLabelTrainer {
	if log == nil {
		log = logger.NewNop()
	}
	return &WeakLabelTrainer{scorer: scorer, log: log}
}

// WeakLabels runs the heuristic scorer over the batch and returns the
// arg-max topic per ticket. Ties break by label order.
func (t *WeakLabelTrainer) WeakLabels(tickets []domain.Ticket) []domain.Topic {
	labels := make([]domain.Topic, len(tickets))
	for i, ticket := range tickets {
		labels[i] = t.scorer.Distribution(ticket.Subject, ticket.Body).ArgMax()
	}
	return labels
}

// Fit trains the statistical classifier on the batch's own weak labels.
// Calibration failure on small or degenerate batches downgrades to the
// uncalibrated classifier with a warning; vectorization failure is fatal.
func (t *WeakLabelTrainer) Fit(tickets []domain.Ticket) (*TrainedModel, error) {
	if len(tickets) == 0 {
		return nil, ErrNoTickets
	}

	docs := make([]string, len(tickets))
	for i, ticket := range tickets {
		docs[i] = TrainingDocument(ticket.Subject, ticket.Body)
	}
	labels := t.WeakLabels(tickets)
	enc := NewLabelEncoder(labels)

	vec, err := FitVectorizer(docs)
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	x := make([][]float64, len(docs))
	for i, doc := range docs {
		x[i] = vec.Transform(doc)
	}
	y := make([]int, len(labels))
	for i, label := range labels {
		y[i] = enc.Encode(label)
	}

	model := &TrainedModel{vec: vec, enc: enc}

	folds := calibrationFolds(enc.NumClasses())
	cal, calErr := fitCalibrated(x, y, enc.NumClasses(), folds)
	if calErr != nil {
		t.log.Warn("calibrated fit failed, falling back to uncalibrated classifier",
			logger.Int("tickets", len(tickets)),
			logger.Int("distinct_labels", enc.NumClasses()),
			logger.Int("folds", folds),
			logger.Error(calErr))
		model.lin = trainLinear(x, y, enc.NumClasses())
		return model, nil
	}

	model.cal = cal
	t.log.Info("trained calibrated classifier on weak labels",
		logger.Int("tickets", len(tickets)),
		logger.Int("vocabulary", vec.Dim()),
		logger.Int("distinct_labels", enc.NumClasses()),
		logger.Int("folds", folds))
	return model, nil
}
