package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileRanks(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{name: "empty", in: nil, want: []float64{}},
		{name: "single", in: []float64{7}, want: []float64{1}},
		{name: "distinct", in: []float64{3, 1, 2}, want: []float64{1, 1.0 / 3, 2.0 / 3}},
		// ties share the mean of positions 2 and 3
		{name: "ties", in: []float64{1, 5, 5, 9}, want: []float64{0.25, 0.625, 0.625, 1}},
		{name: "all equal", in: []float64{2, 2, 2}, want: []float64{2.0 / 3, 2.0 / 3, 2.0 / 3}},
		{name: "negatives", in: []float64{-1, 0, -3}, want: []float64{2.0 / 3, 1, 1.0 / 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentileRanks(tt.in)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestQuantile(t *testing.T) {
	assert.Equal(t, 0.0, Quantile(nil, 0.75))
	assert.Equal(t, 4.0, Quantile([]float64{4}, 0.75))
	// positions 0..3, q=0.75 -> 2.25 between 3 and 4
	assert.InDelta(t, 3.25, Quantile([]float64{4, 1, 3, 2}, 0.75), 1e-12)
	assert.InDelta(t, 2.5, Quantile([]float64{1, 2, 3, 4}, 0.5), 1e-12)
	assert.Equal(t, 1.0, Quantile([]float64{1, 2}, -1))
	assert.Equal(t, 2.0, Quantile([]float64{1, 2}, 2))
}
