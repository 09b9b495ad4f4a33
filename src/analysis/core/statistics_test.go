package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestCalculateMeanStd(t *testing.T) {
	tests := []struct {
		name         string
		data         []float64
		expectedMean float64
		expectedStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single value", []float64{42}, 42, 0},
		{"uniform", []float64{10, 10, 10}, 10, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := CalculateMeanStd(tt.data)
			assert.InDelta(t, tt.expectedMean, mean, 1e-9)
			assert.InDelta(t, tt.expectedStd, std, 1e-9)
		})
	}
}

// -----------------------------------------------------------------------------

func TestCalculateChangePercent(t *testing.T) {
	assert.InDelta(t, 0.5, CalculateChangePercent(15, 10), 1e-9)
	assert.InDelta(t, -0.25, CalculateChangePercent(7.5, 10), 1e-9)
	assert.Zero(t, CalculateChangePercent(5, 0), "zero baseline has no defined change")
}

// -----------------------------------------------------------------------------

func TestCalculateZScore(t *testing.T) {
	assert.InDelta(t, 2.0, CalculateZScore(14, 10, 2), 1e-9)
	assert.Zero(t, CalculateZScore(14, 10, 0), "zero deviation yields no score")
}
