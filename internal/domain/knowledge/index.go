// Package knowledge holds the in-memory cosine nearest-neighbor index over
// course document embeddings.
package knowledge

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/viant/vec/search"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Neighbor is one search hit: the document position in corpus order and its
// cosine distance to the query.
type Neighbor struct {
	Position int
	Distance float32
}

// Index is an exact cosine kNN index built wholesale from a set of vectors.
// It is immutable after construction and safe for concurrent Search calls.
type Index struct {
	vectors [][]float32
	mags    []float32
	dim     int
}

// NewIndex builds an index over vectors. All vectors must share one non-zero
// dimension, otherwise domain.ErrDimensionMismatch is returned.
func NewIndex(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vector", domain.ErrDimensionMismatch)
	}

	mags := make([]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
		mags[i] = search.Float32s(v).Magnitude()
	}

	return &Index{
		vectors: vectors,
		mags:    mags,
		dim:     dim,
	}, nil
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int { return len(ix.vectors) }

// Dim returns the shared vector dimension.
func (ix *Index) Dim() int { return ix.dim }

// Search returns the min(k, Len()) nearest vectors to query by ascending
// cosine distance. Equal distances keep corpus order.
func (ix *Index) Search(query []float32, k int) ([]Neighbor, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d",
			domain.ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}
	k = min(k, len(ix.vectors))

	qm := search.Float32s(query).Magnitude()
	hits := make([]Neighbor, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Neighbor{Position: i, Distance: cosineDistance(query, v, qm, ix.mags[i])}
	}

	slices.SortStableFunc(hits, func(a, b Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits[:k], nil
}

// cosineDistance is 1 - cos(a, b) over precomputed magnitudes (search.Float32s.Magnitude,
// exported on every platform). A zero-norm side is treated as orthogonal.
func cosineDistance(a, b []float32, ma, mb float32) float32 {
	if ma == 0 || mb == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	d := 1 - float32(dot/(float64(ma)*float64(mb)))
	if d != d { // NaN
		return 1
	}
	return d
}
