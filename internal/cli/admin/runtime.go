package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/hrithikt/webwhiz/internal/config"
	"github.com/hrithikt/webwhiz/internal/database"
	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/hrithikt/webwhiz/internal/repository"
	"github.com/hrithikt/webwhiz/internal/service"
	"github.com/hrithikt/webwhiz/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// runtime holds the process-wide resources shared by the commands: the
// connection pool and the result of the vector capability check.
type runtime struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	capability database.Capability
	shutdown   func()
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate(),
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		shutdown = func() {}
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
	})
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Debug {
		log.Println("connected to database")
	}

	return &runtime{
		cfg:        cfg,
		pool:       pool,
		capability: database.EnsureVectorCapability(ctx, pool),
		shutdown:   shutdown,
	}, nil
}

func (r *runtime) Close() {
	r.pool.Close()
	r.shutdown()
}

func (r *runtime) embeddingStore() *service.EmbeddingStore {
	return service.NewEmbeddingStore(repository.NewEmbeddingRepository(r.pool), r.cfg.EmbeddingDimensions)
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "text", "json":
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text or json)", format)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}

// parseVector parses a JSON array of numbers such as "[1, 0, 0.5]".
func parseVector(s string) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, fmt.Errorf("invalid vector %q: expected a JSON array of numbers", s)
	}
	if len(v) == 0 {
		return nil, domain.ErrEmptyVector
	}
	return v, nil
}

func objectIDFlag(cmd *cobra.Command, name string) (domain.ObjectID, error) {
	s, _ := cmd.Flags().GetString(name)
	id, err := domain.ParseObjectID(s)
	if err != nil {
		return domain.NilObjectID, fmt.Errorf("--%s: %w", name, err)
	}
	return id, nil
}

func typeFlag(cmd *cobra.Command) (*domain.DataStoreType, error) {
	s, _ := cmd.Flags().GetString("type")
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseDataStoreType(s)
	if err != nil {
		return nil, fmt.Errorf("--type: %w", err)
	}
	return &t, nil
}
