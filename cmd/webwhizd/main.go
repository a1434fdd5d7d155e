package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hrithikt/webwhiz/internal/cli"
	"github.com/hrithikt/webwhiz/internal/cli/admin"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "webwhizd",
		Short: "Knowledge base embeddings store",
		Long: `webwhizd manages the pgvector-backed store of knowledge base chunk embeddings.

Environment variables:
  WEBWHIZ_DATABASE_URL          PostgreSQL connection string (required)
  WEBWHIZ_EMBEDDING_DIMENSIONS  Vector size of the embedding model (default: 1536, 0 disables the check)
  WEBWHIZ_SENTRY_DSN            Sentry DSN for error reporting (optional)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.BootstrapCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.EmbeddingsCmd())

	cli.CheckHelpJSON(rootCmd, os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
