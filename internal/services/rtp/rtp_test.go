package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		diff float64
		want Status
	}{
		{name: "on_target", diff: 0, want: StatusOptimal},
		{name: "upper_band_edge", diff: 2.0, want: StatusOptimal},
		{name: "lower_band_edge", diff: -2.0, want: StatusOptimal},
		{name: "above_band", diff: 2.01, want: StatusHigh},
		{name: "below_band", diff: -2.01, want: StatusLow},
		{name: "far_above", diff: 40, want: StatusHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, classify(tt.diff))
		})
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 33.33, round2(100.0/3.0), 1e-9)
	assert.InDelta(t, 0.0, round2(0.004), 1e-9)
	assert.InDelta(t, -2.5, round2(-2.499), 1e-9)
}
