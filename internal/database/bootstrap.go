package database

import (
	"context"
	"fmt"
	"log"

	"github.com/hrithikt/webwhiz/internal/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// VectorExtension is the PostgreSQL extension providing the vector type and
// distance operators.
const VectorExtension = "vector"

// Execer is the subset of pgxpool.Pool used by the bootstrap step.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Capability is the outcome of EnsureVectorCapability.
type Capability struct {
	Checked   bool
	Available bool
	Version   string
	Err       error
}

// EnsureVectorCapability creates the pgvector extension if it is absent.
//
// Failure is not fatal: it is logged and reported, and the returned
// Capability has Available set to false. Vector operations will then fail
// when they are attempted, so a one-time administrative step can be completed
// without blocking the process from starting.
func EnsureVectorCapability(ctx context.Context, db Execer) Capability {
	if _, err := db.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS "+VectorExtension); err != nil {
		err = fmt.Errorf("failed to create %s extension: %w", VectorExtension, err)
		log.Printf("bootstrap: failed to initialize pgvector extension: %v", err)
		telemetry.CaptureError(ctx, err)
		return Capability{Checked: true, Err: err}
	}

	var version string
	err := db.QueryRow(ctx,
		`SELECT extversion FROM pg_extension WHERE extname = $1`,
		VectorExtension,
	).Scan(&version)
	if err != nil {
		// The extension statement succeeded, so the capability exists even if
		// the version lookup did not.
		log.Printf("bootstrap: pgvector extension initialized (version unknown: %v)", err)
		return Capability{Checked: true, Available: true}
	}

	log.Printf("bootstrap: pgvector extension initialized successfully (version %s)", version)
	return Capability{Checked: true, Available: true, Version: version}
}
