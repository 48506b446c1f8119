package vectorindex_test

import (
	"math"
	"testing"

	"clinic-assistant/internal/vectorindex"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float32
	}{
		{
			name: "identical vectors score 1",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "opposite vectors score -1",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "orthogonal vectors score 0",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "zero vector scores 0, not NaN",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "both zero vectors score 0",
			a:    []float32{0, 0},
			b:    []float32{0, 0},
			want: 0,
		},
		{
			name: "mismatched lengths score 0",
			a:    []float32{1, 2},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "empty vectors score 0",
			a:    nil,
			b:    nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vectorindex.CosineSimilarity(tt.a, tt.b)
			if math.IsNaN(float64(got)) {
				t.Fatalf("CosineSimilarity() = NaN")
			}
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.5, -1.2, 3.3, 0.1}
	b := []float32{2.0, 0.7, -0.4, 1.9}

	if got, want := vectorindex.CosineSimilarity(a, b), vectorindex.CosineSimilarity(b, a); got != want {
		t.Errorf("CosineSimilarity not symmetric: %v vs %v", got, want)
	}
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	scaled := []float32{10, 20, 30}

	got := vectorindex.CosineSimilarity(a, scaled)
	if math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("CosineSimilarity(a, 10*a) = %v, want 1", got)
	}
}
