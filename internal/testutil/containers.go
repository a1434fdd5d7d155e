package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hrithikt/webwhiz/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage ships PostgreSQL with the pgvector extension available.
const PostgresImage = "pgvector/pgvector:0.8.1-pg18"

// PostgresContainer represents a PostgreSQL container for testing
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
	User      string
	Password  string
	Database  string
}

// NewPostgresContainer creates and starts a PostgreSQL container with pgvector
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	return newPostgresContainer(ctx, t, PostgresImage)
}

// NewPlainPostgresContainer starts PostgreSQL without pgvector installed.
func NewPlainPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	return newPostgresContainer(ctx, t, "postgres:18-alpine")
}

func newPostgresContainer(ctx context.Context, t *testing.T, image string) *PostgresContainer {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "webwhiz",
			"POSTGRES_PASSWORD": "webwhiz",
			"POSTGRES_DB":       "webwhiz",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to create postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
		User:      "webwhiz",
		Password:  "webwhiz",
		Database:  "webwhiz",
	}
}

// ConnectionString returns the PostgreSQL connection string
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pc.User, pc.Password, pc.Host, pc.Port, pc.Database)
}

// Terminate stops and removes the container
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// NewPool connects to the container, retrying while the server finishes
// starting. No schema is created.
func NewPool(ctx context.Context, t *testing.T, pc *PostgresContainer) *pgxpool.Pool {
	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 5; i++ {
		pool, err = database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 4})
		if err == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to create pool after retries: %v", err)
	}
	return pool
}

// NewTestPool connects to the container, enables pgvector and applies the
// migrations.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer) *pgxpool.Pool {
	pool := NewPool(ctx, t, pc)

	if capability := database.EnsureVectorCapability(ctx, pool); !capability.Available {
		pool.Close()
		t.Fatalf("pgvector unavailable in test container: %v", capability.Err)
	}

	if err := database.Migrate(pc.ConnectionString()); err != nil {
		pool.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return pool
}

// TruncateAll truncates all tables in the database for test isolation
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE kb_embeddings"); err != nil {
		return fmt.Errorf("failed to truncate kb_embeddings: %w", err)
	}
	return nil
}
