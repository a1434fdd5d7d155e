package service

import (
	"context"
	"fmt"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/hrithikt/webwhiz/internal/telemetry"
)

// EmbeddingRepositoryInterface is the persistence used by EmbeddingStore.
type EmbeddingRepositoryInterface interface {
	Insert(ctx context.Context, rec *domain.EmbeddingRecord) (*domain.InsertResult, error)
	TopN(ctx context.Context, query []float32, kbID domain.ObjectID, n int) ([]domain.SimilarChunk, error)
	UpdateVector(ctx context.Context, chunkID domain.ObjectID, embedding []float32) error
	DeleteByFilter(ctx context.Context, f domain.EmbeddingFilter) (int64, error)
	DeleteByChunkID(ctx context.Context, chunkID domain.ObjectID) (int64, error)
	DeleteByChunkIDs(ctx context.Context, chunkIDs []domain.ObjectID) (int64, error)
	Count(ctx context.Context, f domain.EmbeddingFilter) (int64, error)
	GetByChunkID(ctx context.Context, chunkID domain.ObjectID) (*domain.EmbeddingRecord, error)
}

// EmbeddingStore is the entry point for storing chunk embeddings and ranking
// them by similarity within a knowledge base. It validates input against the
// configured embedding dimensionality before the store is reached.
type EmbeddingStore struct {
	repo       EmbeddingRepositoryInterface
	dimensions int
}

// NewEmbeddingStore creates an EmbeddingStore. A dimensions value of zero
// accepts vectors of any length.
func NewEmbeddingStore(repo EmbeddingRepositoryInterface, dimensions int) *EmbeddingStore {
	return &EmbeddingStore{repo: repo, dimensions: dimensions}
}

// checkVector rejects vectors of the wrong size and vectors of zero
// magnitude, whose cosine similarity to anything is NaN.
func (s *EmbeddingStore) checkVector(v []float32) error {
	if len(v) == 0 {
		return domain.ErrEmptyVector
	}
	if s.dimensions > 0 && len(v) != s.dimensions {
		return domain.ErrDimensionMismatch.WithCause(fmt.Errorf("expected %d dimensions, got %d", s.dimensions, len(v)))
	}
	if isZeroVector(v) {
		return domain.ErrZeroVector
	}
	return nil
}

func isZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Insert stores the embedding of a new chunk.
func (s *EmbeddingStore) Insert(ctx context.Context, rec *domain.EmbeddingRecord) (*domain.InsertResult, error) {
	if err := domain.ValidateEmbeddingRecord(rec); err != nil {
		return nil, err
	}
	if err := s.checkVector(rec.Embedding); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "embeddings.insert", telemetry.SpanAttributes{
		KnowledgebaseID: rec.KnowledgebaseID.Hex(),
		ChunkID:         rec.ChunkID.Hex(),
		Operation:       "insert",
	})
	defer span.End()

	res, err := s.repo.Insert(ctx, rec)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return res, nil
}

// TopN returns up to n chunks of the knowledge base ordered by descending
// cosine similarity to query.
func (s *EmbeddingStore) TopN(ctx context.Context, query []float32, kbID domain.ObjectID, n int) ([]domain.SimilarChunk, error) {
	if n < 1 {
		return nil, domain.ErrInvalidLimit.WithCause(fmt.Errorf("got %d", n))
	}
	if kbID.IsZero() {
		return nil, domain.ErrMissingRequiredField.WithCause(fmt.Errorf("knowledgebase id is required"))
	}
	if err := s.checkVector(query); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "embeddings.topn", telemetry.SpanAttributes{
		KnowledgebaseID: kbID.Hex(),
		Operation:       "topn",
	})
	defer span.End()
	span.SetData("limit", n)

	results, err := s.repo.TopN(ctx, query, kbID, n)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetData("results", len(results))
	return results, nil
}

// UpdateVector replaces a chunk's embedding. An unknown chunk is not an error.
func (s *EmbeddingStore) UpdateVector(ctx context.Context, chunkID domain.ObjectID, embedding []float32) error {
	if err := s.checkVector(embedding); err != nil {
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "embeddings.update", telemetry.SpanAttributes{
		ChunkID:   chunkID.Hex(),
		Operation: "update_vector",
	})
	defer span.End()

	if err := s.repo.UpdateVector(ctx, chunkID, embedding); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// DeleteByTenant deletes a knowledge base's embeddings, only those of the
// given type when typ is non-nil.
func (s *EmbeddingStore) DeleteByTenant(ctx context.Context, kbID domain.ObjectID, typ *domain.DataStoreType) error {
	f := domain.ForKnowledgebase(kbID)
	if typ != nil {
		f = f.WithType(*typ)
	}
	_, err := s.DeleteByFilter(ctx, f)
	return err
}

// DeleteByFilter deletes every embedding matching f and reports how many
// were removed.
func (s *EmbeddingStore) DeleteByFilter(ctx context.Context, f domain.EmbeddingFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	ctx, span := telemetry.StartSpan(ctx, "embeddings.delete_by_tenant", telemetry.SpanAttributes{
		KnowledgebaseID: f.KnowledgebaseID.Hex(),
		Operation:       "delete_by_tenant",
	})
	defer span.End()
	if f.Type != nil {
		span.SetData("type", string(*f.Type))
	}

	n, err := s.repo.DeleteByFilter(ctx, f)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	span.SetData("deleted", n)
	return n, nil
}

// DeleteByChunkID deletes a single chunk's embedding if present.
func (s *EmbeddingStore) DeleteByChunkID(ctx context.Context, chunkID domain.ObjectID) error {
	ctx, span := telemetry.StartSpan(ctx, "embeddings.delete_chunk", telemetry.SpanAttributes{
		ChunkID:   chunkID.Hex(),
		Operation: "delete_chunk",
	})
	defer span.End()

	if _, err := s.repo.DeleteByChunkID(ctx, chunkID); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// DeleteByChunkIDs deletes the listed chunks in one request. Ids that are
// not stored are ignored.
func (s *EmbeddingStore) DeleteByChunkIDs(ctx context.Context, chunkIDs []domain.ObjectID) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "embeddings.delete_chunks", telemetry.SpanAttributes{
		Operation: "delete_chunks",
	})
	defer span.End()
	span.SetData("requested", len(chunkIDs))

	n, err := s.repo.DeleteByChunkIDs(ctx, chunkIDs)
	if err != nil {
		span.SetError(err)
		return err
	}
	span.SetData("deleted", n)
	return nil
}

// Count returns the number of embeddings matching f.
func (s *EmbeddingStore) Count(ctx context.Context, f domain.EmbeddingFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, f)
}

// Get returns the stored record of a chunk or domain.ErrEmbeddingNotFound.
func (s *EmbeddingStore) Get(ctx context.Context, chunkID domain.ObjectID) (*domain.EmbeddingRecord, error) {
	return s.repo.GetByChunkID(ctx, chunkID)
}
