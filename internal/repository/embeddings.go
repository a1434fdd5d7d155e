package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmbeddingRepository stores chunk embeddings in the kb_embeddings table and
// ranks them with pgvector's cosine distance operator.
type EmbeddingRepository struct {
	db  dbtx
	now func() time.Time
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{db: pool, now: utcNow}
}

func NewEmbeddingRepositoryWithTx(tx pgx.Tx) *EmbeddingRepository {
	return &EmbeddingRepository{db: tx, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (r *EmbeddingRepository) exec(ctx context.Context, st statement) (pgconn.CommandTag, error) {
	tag, err := r.db.Exec(ctx, st.sql, st.args...)
	if err != nil {
		return tag, classifyError(err)
	}
	return tag, nil
}

// Insert stores a new record. A chunk id that is already present yields
// domain.ErrEmbeddingAlreadyExists.
func (r *EmbeddingRepository) Insert(ctx context.Context, rec *domain.EmbeddingRecord) (*domain.InsertResult, error) {
	if err := domain.ValidateEmbeddingRecord(rec); err != nil {
		return nil, err
	}
	vec, err := encodeVector(rec.Embedding)
	if err != nil {
		return nil, err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tag, err := r.exec(ctx, insertStatement(rec, vec, createdAt, updatedAt))
	if err != nil {
		return nil, err
	}
	return &domain.InsertResult{RowsAffected: tag.RowsAffected()}, nil
}

// TopN returns up to n chunks of kbID ordered by descending cosine similarity
// to query. An empty knowledge base yields an empty slice.
func (r *EmbeddingRepository) TopN(ctx context.Context, query []float32, kbID domain.ObjectID, n int) ([]domain.SimilarChunk, error) {
	if n < 1 {
		return nil, domain.ErrInvalidLimit
	}
	vec, err := encodeVector(query)
	if err != nil {
		return nil, err
	}

	st := topNStatement(vec, kbID, n)
	rows, err := r.db.Query(ctx, st.sql, st.args...)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	results := make([]domain.SimilarChunk, 0)
	for rows.Next() {
		var chunkID string
		var similarity float64
		if err := rows.Scan(&chunkID, &similarity); err != nil {
			return nil, classifyError(err)
		}
		id, err := domain.ParseObjectID(chunkID)
		if err != nil {
			return nil, fmt.Errorf("stored chunk id %q: %w", chunkID, err)
		}
		results = append(results, domain.SimilarChunk{ChunkID: id, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err)
	}
	return results, nil
}

// UpdateVector replaces the embedding of one chunk. Updating a chunk that
// does not exist affects no rows and is not an error.
func (r *EmbeddingRepository) UpdateVector(ctx context.Context, chunkID domain.ObjectID, embedding []float32) error {
	vec, err := encodeVector(embedding)
	if err != nil {
		return err
	}
	_, err = r.exec(ctx, updateVectorStatement(chunkID, vec, r.now()))
	return err
}

// DeleteByFilter deletes every record matching f.
func (r *EmbeddingRepository) DeleteByFilter(ctx context.Context, f domain.EmbeddingFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	tag, err := r.exec(ctx, deleteByFilterStatement(f))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *EmbeddingRepository) DeleteByChunkID(ctx context.Context, chunkID domain.ObjectID) (int64, error) {
	tag, err := r.exec(ctx, deleteByChunkIDStatement(chunkID))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteByChunkIDs deletes every listed chunk in a single statement. Ids that
// are not stored are ignored. An empty list does not reach the database.
func (r *EmbeddingRepository) DeleteByChunkIDs(ctx context.Context, chunkIDs []domain.ObjectID) (int64, error) {
	if len(chunkIDs) == 0 {
		return 0, nil
	}
	tag, err := r.exec(ctx, deleteByChunkIDsStatement(chunkIDs))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *EmbeddingRepository) Count(ctx context.Context, f domain.EmbeddingFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	st := countStatement(f)
	var count int64
	if err := r.db.QueryRow(ctx, st.sql, st.args...).Scan(&count); err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

func (r *EmbeddingRepository) GetByChunkID(ctx context.Context, chunkID domain.ObjectID) (*domain.EmbeddingRecord, error) {
	st := getByChunkIDStatement(chunkID)

	var storedChunkID, storedKBID string
	var vec pgvector.Vector
	var typ *string
	rec := &domain.EmbeddingRecord{}
	err := r.db.QueryRow(ctx, st.sql, st.args...).
		Scan(&storedChunkID, &storedKBID, &vec, &typ, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmbeddingNotFound
		}
		return nil, classifyError(err)
	}

	if rec.ChunkID, err = domain.ParseObjectID(storedChunkID); err != nil {
		return nil, fmt.Errorf("stored chunk id %q: %w", storedChunkID, err)
	}
	if rec.KnowledgebaseID, err = domain.ParseObjectID(storedKBID); err != nil {
		return nil, fmt.Errorf("stored knowledgebase id %q: %w", storedKBID, err)
	}
	rec.Embedding = vec.Slice()
	if typ != nil {
		rec.Type = domain.DataStoreType(*typ)
	}
	return rec, nil
}
