package admin

import (
	"fmt"
	"log"

	"github.com/hrithikt/webwhiz/internal/config"
	"github.com/hrithikt/webwhiz/internal/database"
	"github.com/spf13/cobra"
)

// BootstrapCmd returns the bootstrap command
func BootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Enable pgvector and prepare the embeddings schema",
		Long: `Ensure the pgvector extension is installed and apply pending migrations.

A failure to enable pgvector is reported but does not fail the command: the
store keeps running and vector operations fail when they are attempted.`,
		RunE: runBootstrap,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip database migrations")
	addOutputFlag(cmd)

	return cmd
}

type bootstrapStatus struct {
	VectorCapability bool   `json:"vectorCapability"`
	Version          string `json:"version,omitempty"`
	Error            string `json:"error,omitempty"`
	Migrated         bool   `json:"migrated"`
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	status := bootstrapStatus{
		VectorCapability: rt.capability.Available,
		Version:          rt.capability.Version,
	}
	if rt.capability.Err != nil {
		status.Error = rt.capability.Err.Error()
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	switch {
	case noMigrate:
	case !rt.capability.Available:
		log.Println("bootstrap: vector capability unavailable, skipping migrations")
	default:
		if err := database.Migrate(rt.cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		status.Migrated = true
	}

	if format == "json" {
		return printJSON(cmd, status)
	}

	out := cmd.OutOrStdout()
	if status.VectorCapability {
		fmt.Fprintf(out, "Vector capability: available (pgvector %s)\n", status.Version)
	} else {
		fmt.Fprintf(out, "Vector capability: unavailable (%s)\n", status.Error)
	}
	fmt.Fprintf(out, "Migrations applied: %t\n", status.Migrated)
	return nil
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			return nil
		},
	}
}
