package classifier

import (
	"math"
	"testing"
)

func TestCalibrationFolds(t *testing.T) {
	tests := []struct {
		distinct int
		want     int
	}{
		{1, 2}, {2, 2}, {3, 3}, {4, 3}, {5, 3},
	}
	for _, tt := range tests {
		if got := calibrationFolds(tt.distinct); got != tt.want {
			t.Errorf("calibrationFolds(%d) = %d, want %d", tt.distinct, got, tt.want)
		}
	}
}

func TestFitPlattSeparableScores(t *testing.T) {
	// Positive samples score high, negatives low.
	scores := []float64{2.1, 1.8, 2.4, 1.9, -1.7, -2.2, -1.9, -2.5}
	positive := []bool{true, true, true, true, false, false, false, false}

	s := fitPlatt(scores, positive)
	if s.prob(2.0) <= s.prob(-2.0) {
		t.Errorf("higher score must yield higher probability: %g vs %g",
			s.prob(2.0), s.prob(-2.0))
	}
	if p := s.prob(2.0); p <= 0.5 {
		t.Errorf("probability at positive scores = %g, want > 0.5", p)
	}
	if p := s.prob(-2.0); p >= 0.5 {
		t.Errorf("probability at negative scores = %g, want < 0.5", p)
	}
}

func TestFitCalibratedRejectsDegenerateBatches(t *testing.T) {
	x := [][]float64{{1, 0}, {0, 1}, {1, 1}}

	if _, err := fitCalibrated(x, []int{0, 0, 0}, 1, 2); err == nil {
		t.Error("single class must fail calibration")
	}
	// Class 1 has one sample, fewer than two folds.
	if _, err := fitCalibrated(x, []int{0, 0, 1}, 2, 2); err == nil {
		t.Error("class smaller than fold count must fail calibration")
	}
}

func TestPredictProbaNormalized(t *testing.T) {
	x := [][]float64{
		{1, 0, 0}, {0.9, 0.1, 0}, {0.8, 0, 0.2}, {1, 0.2, 0},
		{0, 1, 0}, {0.1, 0.9, 0}, {0, 0.8, 0.2}, {0.2, 1, 0},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}

	cal, err := fitCalibrated(x, y, 2, 2)
	if err != nil {
		t.Fatalf("fitCalibrated: %v", err)
	}

	probs := cal.predictProba([]float64{0.95, 0.05, 0})
	var sum float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("probability %g outside [0, 1]", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %g, want 1", sum)
	}
	if probs[0] <= probs[1] {
		t.Errorf("sample near class 0 centroid: got %v", probs)
	}
}
