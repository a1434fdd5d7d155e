package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStoreTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		typ      DataStoreType
		expected string
	}{
		{"Webpage", DataStoreTypeWebpage, "WEBPAGE"},
		{"Custom", DataStoreTypeCustom, "CUSTOM"},
		{"Document", DataStoreTypeDocument, "DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.typ))
			assert.True(t, tt.typ.IsValid())
		})
	}
}

func TestParseDataStoreType(t *testing.T) {
	got, err := ParseDataStoreType(" webpage ")
	require.NoError(t, err)
	assert.Equal(t, DataStoreTypeWebpage, got)

	_, err = ParseDataStoreType("pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDataStoreType))
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestValidateEmbeddingRecord(t *testing.T) {
	chunkID := MustParseObjectID("65a1f0c2e4b0a1b2c3d4e5f6")
	kbID := MustParseObjectID("65a1f0c2e4b0a1b2c3d4e5f7")

	tests := []struct {
		name    string
		record  *EmbeddingRecord
		wantErr error
	}{
		{
			name:   "valid untyped record",
			record: &EmbeddingRecord{ChunkID: chunkID, KnowledgebaseID: kbID, Embedding: []float32{1, 0}},
		},
		{
			name:   "valid typed record",
			record: &EmbeddingRecord{ChunkID: chunkID, KnowledgebaseID: kbID, Embedding: []float32{1}, Type: DataStoreTypeCustom},
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrMissingRequiredField,
		},
		{
			name:    "missing chunk id",
			record:  &EmbeddingRecord{KnowledgebaseID: kbID, Embedding: []float32{1}},
			wantErr: ErrMissingRequiredField,
		},
		{
			name:    "missing knowledgebase id",
			record:  &EmbeddingRecord{ChunkID: chunkID, Embedding: []float32{1}},
			wantErr: ErrMissingRequiredField,
		},
		{
			name:    "empty embedding",
			record:  &EmbeddingRecord{ChunkID: chunkID, KnowledgebaseID: kbID},
			wantErr: ErrEmptyVector,
		},
		{
			name:    "unknown type",
			record:  &EmbeddingRecord{ChunkID: chunkID, KnowledgebaseID: kbID, Embedding: []float32{1}, Type: "PDF"},
			wantErr: ErrInvalidDataStoreType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingRecord(tt.record)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEmbeddingFilter(t *testing.T) {
	kbID := MustParseObjectID("65a1f0c2e4b0a1b2c3d4e5f7")

	base := ForKnowledgebase(kbID)
	assert.Nil(t, base.Type)
	require.NoError(t, base.Validate())

	typed := base.WithType(DataStoreTypeDocument)
	require.NotNil(t, typed.Type)
	assert.Equal(t, DataStoreTypeDocument, *typed.Type)
	assert.Nil(t, base.Type, "WithType must not modify the receiver")

	assert.ErrorIs(t, EmbeddingFilter{}.Validate(), ErrMissingRequiredField)
	assert.ErrorIs(t, base.WithType("BOGUS").Validate(), ErrInvalidDataStoreType)
}
