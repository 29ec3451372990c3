package knowledge

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a      []float32
		b      []float32
		expect float64
	}{
		{
			name:   "identical vectors score one",
			a:      []float32{0.3, -1.2, 4.5},
			b:      []float32{0.3, -1.2, 4.5},
			expect: 1,
		},
		{
			name:   "orthogonal vectors score zero",
			a:      []float32{1, 0},
			b:      []float32{0, 1},
			expect: 0,
		},
		{
			name:   "opposite vectors score minus one",
			a:      []float32{1, 0},
			b:      []float32{-1, 0},
			expect: -1,
		},
		{
			name:   "length mismatch falls back to zero",
			a:      []float32{1, 2, 3},
			b:      []float32{1, 2},
			expect: 0,
		},
		{
			name:   "zero vector falls back to zero",
			a:      []float32{0, 0, 0},
			b:      []float32{1, 2, 3},
			expect: 0,
		},
		{
			name:   "both vectors zero",
			a:      []float32{0, 0},
			b:      []float32{0, 0},
			expect: 0,
		},
		{
			name:   "empty vectors",
			a:      nil,
			b:      nil,
			expect: 0,
		},
		{
			name:   "scaling does not change the score",
			a:      []float32{1, 1},
			b:      []float32{10, 10},
			expect: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Cosine(tt.a, tt.b)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("expected a finite score, got %v", got)
			}
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
