package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDB captures executed statements. Queries are not supported.
type recordingDB struct {
	execs   []statement
	tag     pgconn.CommandTag
	execErr error
}

func (d *recordingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, statement{sql: sql, args: args})
	return d.tag, d.execErr
}

func (d *recordingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("recordingDB: Query not supported")
}

func (d *recordingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("recordingDB: QueryRow not supported")
}

func newTestRepository(db *recordingDB, now time.Time) *EmbeddingRepository {
	return &EmbeddingRepository{db: db, now: func() time.Time { return now }}
}

func TestEmbeddingRepository_Insert_DefaultsTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	db := &recordingDB{tag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := newTestRepository(db, now)

	res, err := repo.Insert(context.Background(), &domain.EmbeddingRecord{
		ChunkID:         testChunkID,
		KnowledgebaseID: testKBID,
		Embedding:       []float32{1, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	require.Len(t, db.execs, 1)
	assert.Equal(t, now, db.execs[0].args[4])
	assert.Equal(t, now, db.execs[0].args[5])
}

func TestEmbeddingRepository_Insert_Conflict(t *testing.T) {
	db := &recordingDB{execErr: &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}}
	repo := newTestRepository(db, time.Now())

	_, err := repo.Insert(context.Background(), &domain.EmbeddingRecord{
		ChunkID:         testChunkID,
		KnowledgebaseID: testKBID,
		Embedding:       []float32{1, 0},
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingAlreadyExists)
}

func TestEmbeddingRepository_Insert_InvalidRecordSkipsStore(t *testing.T) {
	db := &recordingDB{}
	repo := newTestRepository(db, time.Now())

	_, err := repo.Insert(context.Background(), &domain.EmbeddingRecord{ChunkID: testChunkID, KnowledgebaseID: testKBID})
	assert.ErrorIs(t, err, domain.ErrEmptyVector)
	assert.Empty(t, db.execs)
}

func TestEmbeddingRepository_ZeroVectorSkipsStore(t *testing.T) {
	db := &recordingDB{}
	repo := newTestRepository(db, time.Now())

	_, err := repo.Insert(context.Background(), &domain.EmbeddingRecord{
		ChunkID:         testChunkID,
		KnowledgebaseID: testKBID,
		Embedding:       []float32{0, 0},
	})
	assert.ErrorIs(t, err, domain.ErrZeroVector)

	err = repo.UpdateVector(context.Background(), testChunkID, []float32{0, 0})
	assert.ErrorIs(t, err, domain.ErrZeroVector)

	_, err = repo.TopN(context.Background(), []float32{0, 0}, testKBID, 1)
	assert.ErrorIs(t, err, domain.ErrZeroVector)

	assert.Empty(t, db.execs)
}

func TestEmbeddingRepository_TopN_InvalidLimit(t *testing.T) {
	repo := newTestRepository(&recordingDB{}, time.Now())

	_, err := repo.TopN(context.Background(), []float32{1}, testKBID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestEmbeddingRepository_UpdateVector_ZeroRowsIsNotAnError(t *testing.T) {
	now := time.Now().UTC()
	db := &recordingDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := newTestRepository(db, now)

	err := repo.UpdateVector(context.Background(), testChunkID, []float32{0, 1})
	require.NoError(t, err)
	require.Len(t, db.execs, 1)
	assert.Equal(t, now, db.execs[0].args[1])
}

func TestEmbeddingRepository_DeleteByChunkIDs_EmptyIsNoop(t *testing.T) {
	db := &recordingDB{}
	repo := newTestRepository(db, time.Now())

	n, err := repo.DeleteByChunkIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, db.execs)
}

func TestEmbeddingRepository_DeleteByFilter_Connectivity(t *testing.T) {
	db := &recordingDB{execErr: &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}}
	repo := newTestRepository(db, time.Now())

	_, err := repo.DeleteByFilter(context.Background(), domain.ForKnowledgebase(testKBID))
	assert.True(t, domain.IsCode(err, domain.ErrCodeConnectivity))
}

func TestEmbeddingRepository_DeleteByFilter_RequiresTenant(t *testing.T) {
	db := &recordingDB{}
	repo := newTestRepository(db, time.Now())

	_, err := repo.DeleteByFilter(context.Background(), domain.EmbeddingFilter{})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	assert.Empty(t, db.execs)
}
