package admin

import (
	"fmt"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/spf13/cobra"
)

// EmbeddingsCmd returns the embeddings command group
func EmbeddingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "embeddings",
		Aliases: []string{"emb"},
		Short:   "Inspect and maintain stored chunk embeddings",
		Long: `Inspect and maintain stored chunk embeddings.

Identifiers are 24-character hex strings. Vectors are JSON arrays, e.g. "[1,0,0.5]".`,
	}

	addOutputFlag(cmd)
	cmd.AddCommand(embeddingsInsertCmd())
	cmd.AddCommand(embeddingsTopNCmd())
	cmd.AddCommand(embeddingsUpdateCmd())
	cmd.AddCommand(embeddingsDeleteCmd())
	cmd.AddCommand(embeddingsDeleteChunkCmd())
	cmd.AddCommand(embeddingsCountCmd())

	return cmd
}

func embeddingsInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Store the embedding of a new chunk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			chunkID, err := objectIDFlag(cmd, "chunk")
			if err != nil {
				return err
			}
			kbID, err := objectIDFlag(cmd, "kb")
			if err != nil {
				return err
			}
			typ, err := typeFlag(cmd)
			if err != nil {
				return err
			}
			rawVector, _ := cmd.Flags().GetString("vector")
			vector, err := parseVector(rawVector)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			rec := &domain.EmbeddingRecord{ChunkID: chunkID, KnowledgebaseID: kbID, Embedding: vector}
			if typ != nil {
				rec.Type = *typ
			}
			res, err := rt.embeddingStore().Insert(cmd.Context(), rec)
			if err != nil {
				return fmt.Errorf("failed to insert embedding: %w", err)
			}

			if format == "json" {
				return printJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted embedding for chunk %s (%d row)\n", chunkID, res.RowsAffected)
			return nil
		},
	}

	cmd.Flags().String("chunk", "", "Chunk id")
	cmd.Flags().String("kb", "", "Knowledge base id")
	cmd.Flags().String("vector", "", "Embedding vector as a JSON array")
	cmd.Flags().String("type", "", "Data store type (WEBPAGE, CUSTOM or DOCUMENT)")
	_ = cmd.MarkFlagRequired("chunk")
	_ = cmd.MarkFlagRequired("kb")
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}

func embeddingsTopNCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topn",
		Short: "Rank a knowledge base's chunks by cosine similarity to a vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			kbID, err := objectIDFlag(cmd, "kb")
			if err != nil {
				return err
			}
			rawVector, _ := cmd.Flags().GetString("vector")
			vector, err := parseVector(rawVector)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			results, err := rt.embeddingStore().TopN(cmd.Context(), vector, kbID, limit)
			if err != nil {
				return fmt.Errorf("failed to rank chunks: %w", err)
			}

			if format == "json" {
				return printJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No embeddings stored for this knowledge base")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%2d. %s  %.6f\n", i+1, r.ChunkID, r.Similarity)
			}
			return nil
		},
	}

	cmd.Flags().String("kb", "", "Knowledge base id")
	cmd.Flags().String("vector", "", "Query vector as a JSON array")
	cmd.Flags().IntP("limit", "n", 5, "Maximum number of results")
	_ = cmd.MarkFlagRequired("kb")
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}

func embeddingsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the embedding of a chunk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chunkID, err := objectIDFlag(cmd, "chunk")
			if err != nil {
				return err
			}
			rawVector, _ := cmd.Flags().GetString("vector")
			vector, err := parseVector(rawVector)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.embeddingStore().UpdateVector(cmd.Context(), chunkID, vector); err != nil {
				return fmt.Errorf("failed to update embedding: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated embedding for chunk %s\n", chunkID)
			return nil
		},
	}

	cmd.Flags().String("chunk", "", "Chunk id")
	cmd.Flags().String("vector", "", "New embedding vector as a JSON array")
	_ = cmd.MarkFlagRequired("chunk")
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}

func embeddingsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the embeddings of a knowledge base",
		Long:  "Delete every embedding of a knowledge base, or only those of one data store type when --type is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			kbID, err := objectIDFlag(cmd, "kb")
			if err != nil {
				return err
			}
			typ, err := typeFlag(cmd)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			filter := domain.ForKnowledgebase(kbID)
			if typ != nil {
				filter = filter.WithType(*typ)
			}
			n, err := rt.embeddingStore().DeleteByFilter(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to delete embeddings: %w", err)
			}

			if format == "json" {
				return printJSON(cmd, map[string]int64{"deleted": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d embeddings\n", n)
			return nil
		},
	}

	cmd.Flags().String("kb", "", "Knowledge base id")
	cmd.Flags().String("type", "", "Only delete this data store type (WEBPAGE, CUSTOM or DOCUMENT)")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func embeddingsDeleteChunkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-chunk <chunk-id>...",
		Short: "Delete the embeddings of one or more chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.ObjectID, 0, len(args))
			for _, arg := range args {
				id, err := domain.ParseObjectID(arg)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				ids = append(ids, id)
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			store := rt.embeddingStore()
			if len(ids) == 1 {
				err = store.DeleteByChunkID(cmd.Context(), ids[0])
			} else {
				err = store.DeleteByChunkIDs(cmd.Context(), ids)
			}
			if err != nil {
				return fmt.Errorf("failed to delete embeddings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted embeddings for %d chunk(s)\n", len(ids))
			return nil
		},
	}
}

func embeddingsCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the embeddings of a knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			kbID, err := objectIDFlag(cmd, "kb")
			if err != nil {
				return err
			}
			typ, err := typeFlag(cmd)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			filter := domain.ForKnowledgebase(kbID)
			if typ != nil {
				filter = filter.WithType(*typ)
			}
			n, err := rt.embeddingStore().Count(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to count embeddings: %w", err)
			}

			if format == "json" {
				return printJSON(cmd, map[string]int64{"count": n})
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().String("kb", "", "Knowledge base id")
	cmd.Flags().String("type", "", "Only count this data store type")
	_ = cmd.MarkFlagRequired("kb")

	return cmd
}
