package repository

import (
	"strconv"
	"time"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// statement is a parameterized SQL statement ready to execute.
type statement struct {
	sql  string
	args []any
}

const embeddingColumns = `chunk_id, knowledgebase_id, embeddings, type, created_at, updated_at`

func insertStatement(r *domain.EmbeddingRecord, vec pgvector.Vector, createdAt, updatedAt time.Time) statement {
	return statement{
		sql: `INSERT INTO kb_embeddings (` + embeddingColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		args: []any{
			r.ChunkID.Hex(),
			r.KnowledgebaseID.Hex(),
			vec,
			nullableString(string(r.Type)),
			createdAt,
			updatedAt,
		},
	}
}

// topNStatement ranks a knowledge base's chunks by cosine similarity to vec.
// Equal similarities are ordered by chunk id so results are reproducible.
func topNStatement(vec pgvector.Vector, kbID domain.ObjectID, n int) statement {
	return statement{
		sql: `SELECT chunk_id, 1 - (embeddings <=> $1) AS similarity
		 FROM kb_embeddings
		 WHERE knowledgebase_id = $2
		 ORDER BY similarity DESC, chunk_id ASC
		 LIMIT $3`,
		args: []any{vec, kbID.Hex(), n},
	}
}

func updateVectorStatement(chunkID domain.ObjectID, vec pgvector.Vector, updatedAt time.Time) statement {
	return statement{
		sql:  `UPDATE kb_embeddings SET embeddings = $1, updated_at = $2 WHERE chunk_id = $3`,
		args: []any{vec, updatedAt, chunkID.Hex()},
	}
}

func deleteByFilterStatement(f domain.EmbeddingFilter) statement {
	where, args := filterClause(f)
	return statement{
		sql:  `DELETE FROM kb_embeddings WHERE ` + where,
		args: args,
	}
}

func countStatement(f domain.EmbeddingFilter) statement {
	where, args := filterClause(f)
	return statement{
		sql:  `SELECT COUNT(*) FROM kb_embeddings WHERE ` + where,
		args: args,
	}
}

func deleteByChunkIDStatement(chunkID domain.ObjectID) statement {
	return statement{
		sql:  `DELETE FROM kb_embeddings WHERE chunk_id = $1`,
		args: []any{chunkID.Hex()},
	}
}

// deleteByChunkIDsStatement deletes every listed chunk in one statement.
// Duplicate ids are collapsed.
func deleteByChunkIDsStatement(chunkIDs []domain.ObjectID) statement {
	seen := make(map[domain.ObjectID]struct{}, len(chunkIDs))
	ids := make([]string, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id.Hex())
	}
	return statement{
		sql:  `DELETE FROM kb_embeddings WHERE chunk_id = ANY($1)`,
		args: []any{ids},
	}
}

func getByChunkIDStatement(chunkID domain.ObjectID) statement {
	return statement{
		sql:  `SELECT ` + embeddingColumns + ` FROM kb_embeddings WHERE chunk_id = $1`,
		args: []any{chunkID.Hex()},
	}
}

// filterClause renders the WHERE condition for a tenant filter. The type
// condition is only present when the filter carries a type.
func filterClause(f domain.EmbeddingFilter) (string, []any) {
	where := `knowledgebase_id = $1`
	args := []any{f.KnowledgebaseID.Hex()}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		where += ` AND type = $` + strconv.Itoa(len(args))
	}
	return where, args
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
