package domain

import (
	"fmt"
	"strings"
	"time"
)

// DataStoreType categorizes where a chunk's content came from
type DataStoreType string

const (
	DataStoreTypeWebpage  DataStoreType = "WEBPAGE"
	DataStoreTypeCustom   DataStoreType = "CUSTOM"
	DataStoreTypeDocument DataStoreType = "DOCUMENT"
)

// ParseDataStoreType parses a data store type, case-insensitively.
func ParseDataStoreType(s string) (DataStoreType, error) {
	t := DataStoreType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidDataStoreType.WithCause(fmt.Errorf("unknown type %q", s))
	}
	return t, nil
}

// IsValid reports whether t is one of the known data store types.
func (t DataStoreType) IsValid() bool {
	switch t {
	case DataStoreTypeWebpage, DataStoreTypeCustom, DataStoreTypeDocument:
		return true
	}
	return false
}

// EmbeddingRecord is the stored embedding of one chunk of a knowledge base.
type EmbeddingRecord struct {
	ChunkID         ObjectID
	KnowledgebaseID ObjectID
	Embedding       []float32
	// Type is optional; the empty value means untyped.
	Type      DataStoreType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateEmbeddingRecord validates an EmbeddingRecord before insertion
func ValidateEmbeddingRecord(r *EmbeddingRecord) error {
	if r == nil {
		return ErrMissingRequiredField.WithCause(fmt.Errorf("embedding record cannot be nil"))
	}

	if r.ChunkID.IsZero() {
		return ErrMissingRequiredField.WithCause(fmt.Errorf("embedding record ChunkID is required"))
	}

	if r.KnowledgebaseID.IsZero() {
		return ErrMissingRequiredField.WithCause(fmt.Errorf("embedding record KnowledgebaseID is required"))
	}

	if len(r.Embedding) == 0 {
		return ErrEmptyVector
	}

	if r.Type != "" && !r.Type.IsValid() {
		return ErrInvalidDataStoreType.WithCause(fmt.Errorf("unknown type %q", r.Type))
	}

	return nil
}

// EmbeddingFilter selects the records of one knowledge base, optionally
// narrowed to a single data store type.
type EmbeddingFilter struct {
	KnowledgebaseID ObjectID
	Type            *DataStoreType
}

// ForKnowledgebase returns a filter matching every record of kbID.
func ForKnowledgebase(kbID ObjectID) EmbeddingFilter {
	return EmbeddingFilter{KnowledgebaseID: kbID}
}

// WithType returns a copy of f narrowed to t.
func (f EmbeddingFilter) WithType(t DataStoreType) EmbeddingFilter {
	f.Type = &t
	return f
}

// Validate checks the filter's fields
func (f EmbeddingFilter) Validate() error {
	if f.KnowledgebaseID.IsZero() {
		return ErrMissingRequiredField.WithCause(fmt.Errorf("filter KnowledgebaseID is required"))
	}
	if f.Type != nil && !f.Type.IsValid() {
		return ErrInvalidDataStoreType.WithCause(fmt.Errorf("unknown type %q", *f.Type))
	}
	return nil
}

// SimilarChunk is one ranked result of a similarity query.
type SimilarChunk struct {
	ChunkID    ObjectID `json:"chunkId"`
	Similarity float64  `json:"similarity"`
}

// InsertResult reports the outcome of an insert.
type InsertResult struct {
	RowsAffected int64 `json:"rowsAffected"`
}
