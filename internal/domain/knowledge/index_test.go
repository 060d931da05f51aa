package knowledge

import (
	"errors"
	"math"
	"testing"

	"github.com/viant/vec/search"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

func positions(hits []Neighbor) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Position
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewIndex_Empty(t *testing.T) {
	_, err := NewIndex(nil)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestNewIndex_MixedDimensions(t *testing.T) {
	_, err := NewIndex([][]float32{{1, 0}, {1, 0, 0}})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNewIndex_ZeroDimension(t *testing.T) {
	_, err := NewIndex([][]float32{{}})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearch_OrdersByCosineDistance(t *testing.T) {
	ix, err := NewIndex([][]float32{
		{0, 1, 0},
		{1, 0, 0},
		{1, 1, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{2, 0, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := positions(hits), []int{1, 2, 0}; !equalInts(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if hits[0].Distance > 1e-6 {
		t.Errorf("expected ~0 distance for identical direction, got %f", hits[0].Distance)
	}
	if d := hits[2].Distance; d < 0.999 || d > 1.001 {
		t.Errorf("expected ~1 distance for orthogonal vector, got %f", d)
	}
}

func TestSearch_ScaleInvariant(t *testing.T) {
	ix, err := NewIndex([][]float32{{3, 4}, {-4, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := ix.Search([]float32{0.3, 0.4}, 1)
	b, _ := ix.Search([]float32{300, 400}, 1)
	if a[0].Position != 0 || b[0].Position != 0 {
		t.Errorf("expected position 0 for both scales, got %d and %d", a[0].Position, b[0].Position)
	}
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	ix, err := NewIndex([][]float32{
		{0, 1},
		{1, 0},
		{0, 2},
		{2, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{1, 0}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := positions(hits), []int{1, 3, 0, 2}; !equalInts(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

func TestSearch_ZeroQueryKeepsCorpusOrder(t *testing.T) {
	ix, err := NewIndex([][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := positions(hits), []int{0, 1}; !equalInts(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	for _, h := range hits {
		if h.Distance != 1 {
			t.Errorf("expected distance 1 for zero query, got %f", h.Distance)
		}
	}
}

func TestSearch_ZeroDocumentVectorStillRankable(t *testing.T) {
	ix, err := NewIndex([][]float32{{0, 0}, {1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := ix.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := positions(hits), []int{1, 0}; !equalInts(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

func TestSearch_KClamp(t *testing.T) {
	ix, err := NewIndex([][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		k    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{10, 2},
	}
	for _, tc := range tests {
		hits, err := ix.Search([]float32{1, 1}, tc.k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", tc.k, err)
		}
		if len(hits) != tc.want {
			t.Errorf("k=%d: got %d hits, want %d", tc.k, len(hits), tc.want)
		}
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix, err := NewIndex([][]float32{{1, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = ix.Search([]float32{1, 0}, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestIndex_LenDim(t *testing.T) {
	ix, err := NewIndex([][]float32{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != 2 || ix.Dim() != 3 {
		t.Errorf("Len/Dim = %d/%d, want 2/3", ix.Len(), ix.Dim())
	}
}

func TestCosineDistance_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"diagonal", []float32{1, 0}, []float32{1, 1}, 1 - float32(math.Sqrt2/2)},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ma := search.Float32s(tc.a).Magnitude()
			mb := search.Float32s(tc.b).Magnitude()
			got := cosineDistance(tc.a, tc.b, ma, mb)
			if math.Abs(float64(got-tc.want)) > 1e-5 {
				t.Errorf("cosineDistance(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCosineDistance_AgreesWithLibrary(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0, 2.25, -0.7}
	b := []float32{1.1, 0.4, 3.9, -2, 0.5, 0.05}

	got := cosineDistance(a, b, search.Float32s(a).Magnitude(), search.Float32s(b).Magnitude())
	want := search.Float32s(a).CosineDistance(b)
	if math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("cosineDistance = %v, library CosineDistance = %v", got, want)
	}
}
