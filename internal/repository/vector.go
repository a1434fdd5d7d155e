package repository

import (
	"fmt"
	"math"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// MaxVectorDimensions is the largest vector pgvector will store.
const MaxVectorDimensions = 16000

// encodeVector converts an embedding into the pgvector parameter bound to
// statements. The input is copied so later changes by the caller do not leak
// into a pending statement.
func encodeVector(v []float32) (pgvector.Vector, error) {
	if len(v) == 0 {
		return pgvector.Vector{}, domain.ErrEmptyVector
	}
	if len(v) > MaxVectorDimensions {
		return pgvector.Vector{}, domain.ErrVectorTooLarge.WithCause(
			fmt.Errorf("got %d dimensions, maximum is %d", len(v), MaxVectorDimensions))
	}

	out := make([]float32, len(v))
	nonZero := false
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return pgvector.Vector{}, domain.ErrInvalidVectorValue.WithCause(fmt.Errorf("value at index %d is %v", i, f))
		}
		if f != 0 {
			nonZero = true
		}
		out[i] = f
	}
	// pgvector's cosine distance involving a zero vector is NaN.
	if !nonZero {
		return pgvector.Vector{}, domain.ErrZeroVector
	}

	return pgvector.NewVector(out), nil
}
