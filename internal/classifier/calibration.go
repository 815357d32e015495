package classifier

import (
	"fmt"
	"math"
)

// Calibration configuration.
const (
	maxCalibrationFolds = 3
	minCalibrationFolds = 2
	plattMaxIterations  = 100
	plattMinStep        = 1e-10
	plattSigma          = 1e-12
)

// calibrationFolds returns the cross-validation fold count for a batch
// with the given number of distinct weak labels: min(3, distinct),
// clamped to at least 2.
func calibrationFolds(distinctLabels int) int {
	k := distinctLabels
	if k > maxCalibrationFolds {
		k = maxCalibrationFolds
	}
	if k < minCalibrationFolds {
		k = minCalibrationFolds
	}
	return k
}

// plattSigmoid maps a decision margin f to a probability via
// 1 / (1 + exp(a*f + b)).
type plattSigmoid struct {
	a, b float64
}

func (s plattSigmoid) prob(f float64) float64 {
	v := s.a*f + s.b
	// Evaluate in a numerically stable form for either sign.
	if v >= 0 {
		return math.Exp(-v) / (1 + math.Exp(-v))
	}
	return 1 / (1 + math.Exp(v))
}

// fitPlatt fits sigmoid parameters on decision scores against binary
// targets using Newton's method with backtracking (Platt scaling as
// refined by Lin, Weng and Keerthi). Deterministic.
func fitPlatt(scores []float64, positive []bool) plattSigmoid {
	n := len(scores)
	var numPos, numNeg float64
	for _, p := range positive {
		if p {
			numPos++
		} else {
			numNeg++
		}
	}

	hiTarget := (numPos + 1) / (numPos + 2)
	loTarget := 1 / (numNeg + 2)
	targets := make([]float64, n)
	for i, p := range positive {
		if p {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	a := 0.0
	b := math.Log((numNeg + 1) / (numPos + 1))
	fval := plattObjective(scores, targets, a, b)

	for iter := 0; iter < plattMaxIterations; iter++ {
		var h11, h22, h21, g1, g2 float64
		h11, h22 = plattSigma, plattSigma
		for i, f := range scores {
			v := a*f + b
			var p, q float64
			if v >= 0 {
				p = math.Exp(-v) / (1 + math.Exp(-v))
				q = 1 / (1 + math.Exp(-v))
			} else {
				p = 1 / (1 + math.Exp(v))
				q = math.Exp(v) / (1 + math.Exp(v))
			}
			d2 := p * q
			h11 += f * f * d2
			h22 += d2
			h21 += f * d2
			d1 := targets[i] - p
			g1 += f * d1
			g2 += d1
		}
		if math.Abs(g1) < 1e-5 && math.Abs(g2) < 1e-5 {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for step >= plattMinStep {
			newA := a + step*dA
			newB := b + step*dB
			newF := plattObjective(scores, targets, newA, newB)
			if newF < fval+1e-4*step*gd {
				a, b, fval = newA, newB, newF
				break
			}
			step /= 2
		}
		if step < plattMinStep {
			break
		}
	}
	return plattSigmoid{a: a, b: b}
}

func plattObjective(scores, targets []float64, a, b float64) float64 {
	var sum float64
	for i, f := range scores {
		v := a*f + b
		if v >= 0 {
			sum += targets[i]*v + math.Log1p(math.Exp(-v))
		} else {
			sum += (targets[i]-1)*v + math.Log1p(math.Exp(v))
		}
	}
	return sum
}

// calibratedModel pairs a linear model trained on the full batch with a
// per-class Platt sigmoid fitted on cross-validated decision scores.
type calibratedModel struct {
	base     *linearModel
	sigmoids []plattSigmoid
}

// fitCalibrated trains the calibrated classifier using k-fold cross
// validation. It fails when any class has fewer samples than the fold
// count, or when fewer than two distinct classes exist; callers downgrade
// to the uncalibrated model on error.
func fitCalibrated(x [][]float64, y []int, numClasses, folds int) (*calibratedModel, error) {
	n := len(x)
	if numClasses < 2 {
		return nil, fmt.Errorf("calibration requires at least 2 classes, have %d", numClasses)
	}

	counts := make([]int, numClasses)
	for _, label := range y {
		counts[label]++
	}
	for c, count := range counts {
		if count < folds {
			return nil, fmt.Errorf("class %d has %d samples, fewer than %d folds", c, count, folds)
		}
	}

	// Stratified deterministic fold assignment: the j-th occurrence of a
	// class lands in fold j mod k, so every fold sees every class.
	foldOf := make([]int, n)
	seen := make([]int, numClasses)
	for i, label := range y {
		foldOf[i] = seen[label] % folds
		seen[label]++
	}

	cvScores := make([][]float64, n)
	for f := 0; f < folds; f++ {
		var trainX [][]float64
		var trainY []int
		for i := range x {
			if foldOf[i] != f {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
		fold := trainLinear(trainX, trainY, numClasses)
		for i := range x {
			if foldOf[i] == f {
				cvScores[i] = fold.decision(x[i])
			}
		}
	}

	sigmoids := make([]plattSigmoid, numClasses)
	scores := make([]float64, n)
	positive := make([]bool, n)
	for c := 0; c < numClasses; c++ {
		for i := range x {
			scores[i] = cvScores[i][c]
			positive[i] = y[i] == c
		}
		sigmoids[c] = fitPlatt(scores, positive)
	}

	return &calibratedModel{
		base:     trainLinear(x, y, numClasses),
		sigmoids: sigmoids,
	}, nil
}

// predictProba returns calibrated per-class probabilities, normalized to
// sum to 1 across the trained classes.
func (m *calibratedModel) predictProba(x []float64) []float64 {
	scores := m.base.decision(x)
	probs := make([]float64, len(scores))
	var total float64
	for c, f := range scores {
		probs[c] = m.sigmoids[c].prob(f)
		total += probs[c]
	}
	if total <= 0 {
		for c := range probs {
			probs[c] = 1 / float64(len(probs))
		}
		return probs
	}
	for c := range probs {
		probs[c] /= total
	}
	return probs
}
