package classifier

import "math/rand"

// Training hyperparameters for the one-vs-rest linear classifier. The
// seed fixes the SGD shuffle so the same batch always yields the same
// model.
const (
	randomSeed    = 42
	trainEpochs   = 30
	regStrength   = 1e-4
	hingeMarginAt = 1.0
)

// linearModel is a one-vs-rest linear margin classifier: one weight
// vector and bias per class, trained with class-balanced hinge loss.
// Read-only after training.
type linearModel struct {
	numClasses int
	dim        int
	weights    [][]float64
	bias       []float64
}

// trainLinear fits the model on dense TF-IDF rows x with encoded labels
// y in [0, numClasses). Classes are balanced: each sample is weighted by
// n / (numClasses * count(class)).
func trainLinear(x [][]float64, y []int, numClasses int) *linearModel {
	n := len(x)
	dim := 0
	if n > 0 {
		dim = len(x[0])
	}

	m := &linearModel{
		numClasses: numClasses,
		dim:        dim,
		weights:    make([][]float64, numClasses),
		bias:       make([]float64, numClasses),
	}

	counts := make([]int, numClasses)
	for _, label := range y {
		counts[label]++
	}
	classWeight := make([]float64, numClasses)
	for c := range classWeight {
		if counts[c] > 0 {
			classWeight[c] = float64(n) / (float64(numClasses) * float64(counts[c]))
		}
	}

	for c := 0; c < numClasses; c++ {
		m.weights[c] = trainBinary(x, y, c, classWeight, &m.bias[c])
	}
	return m
}

// trainBinary runs Pegasos-style SGD for one one-vs-rest binary problem.
func trainBinary(x [][]float64, y []int, class int, classWeight []float64, bias *float64) []float64 {
	n := len(x)
	dim := 0
	if n > 0 {
		dim = len(x[0])
	}
	w := make([]float64, dim)
	if n == 0 {
		return w
	}

	rng := rand.New(rand.NewSource(randomSeed)) //nolint:gosec // determinism, not crypto
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	t := 0
	for epoch := 0; epoch < trainEpochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			t++
			// Smoothed Pegasos schedule: bounded early steps,
			// 1/(lambda*t) asymptotically.
			eta := 1.0 / (regStrength*float64(t) + 1.0)

			sign := -1.0
			if y[i] == class {
				sign = 1.0
			}
			margin := sign * (dot(w, x[i]) + *bias)

			decay := 1.0 - eta*regStrength
			for d := range w {
				w[d] *= decay
			}
			if margin < hingeMarginAt {
				step := eta * classWeight[y[i]] * sign
				for d, v := range x[i] {
					w[d] += step * v
				}
				*bias += step
			}
		}
	}
	return w
}

// decision returns the per-class margins for one sample.
func (m *linearModel) decision(x []float64) []float64 {
	scores := make([]float64, m.numClasses)
	for c := 0; c < m.numClasses; c++ {
		scores[c] = dot(m.weights[c], x) + m.bias[c]
	}
	return scores
}

func dot(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}
