package admin

import (
	"bytes"
	"testing"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "webwhizd"}
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseVector(t *testing.T) {
	v, err := parseVector(" [1, 0, 0.5] ")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0.5}, v)

	_, err = parseVector("[]")
	assert.ErrorIs(t, err, domain.ErrEmptyVector)

	_, err = parseVector("1,0")
	assert.Error(t, err)

	_, err = parseVector(`["a"]`)
	assert.Error(t, err)
}

func TestEmbeddingsCmd_Subcommands(t *testing.T) {
	cmd := EmbeddingsCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"insert", "topn", "update", "delete", "delete-chunk", "count"}, names)
}

func TestEmbeddingsTopN_RejectsInvalidKnowledgebaseID(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "topn", "--kb", "not-an-id", "--vector", "[1,0]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kb")
	assert.ErrorIs(t, err, domain.ErrInvalidObjectID)
}

func TestEmbeddingsTopN_RequiresFlags(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "topn", "--kb", "65a1f0c2e4b0a1b2c3d4e5f7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector")
}

func TestEmbeddingsInsert_RejectsInvalidVector(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "insert",
		"--chunk", "65a1f0c2e4b0a1b2c3d4e5f6",
		"--kb", "65a1f0c2e4b0a1b2c3d4e5f7",
		"--vector", "oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vector")
}

func TestEmbeddingsDelete_RejectsUnknownType(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "delete",
		"--kb", "65a1f0c2e4b0a1b2c3d4e5f7",
		"--type", "PDF")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDataStoreType)
}

func TestEmbeddingsDeleteChunk_RejectsInvalidID(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "delete-chunk", "65a1f0c2e4b0a1b2c3d4e5f6", "xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xyz")
}

func TestEmbeddingsCount_RejectsUnknownOutputFormat(t *testing.T) {
	_, err := executeCommand(t, EmbeddingsCmd(), "embeddings", "count", "--kb", "65a1f0c2e4b0a1b2c3d4e5f7", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestBootstrapCmd_Flags(t *testing.T) {
	cmd := BootstrapCmd()
	assert.NotNil(t, cmd.Flags().Lookup("no-migrate"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("output"))
}
