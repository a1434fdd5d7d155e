package repository

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/hrithikt/webwhiz/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
)

// PostgreSQL error codes the store distinguishes.
const (
	pgUniqueViolation   = "23505"
	pgUndefinedObject   = "42704"
	pgUndefinedFunction = "42883"
	pgUndefinedTable    = "42P01"
	pgAdminShutdown     = "57P01"
	pgCrashShutdown     = "57P02"
	pgCannotConnectNow  = "57P03"
	pgConnectionClass   = "08"
)

// classifyError maps a driver error onto the domain error taxonomy. The
// original error is kept as the cause. Caller cancellation is returned as is.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return domain.ErrEmbeddingAlreadyExists.WithCause(err)
		case pgErr.Code == pgUndefinedObject, pgErr.Code == pgUndefinedFunction, pgErr.Code == pgUndefinedTable:
			return domain.ErrVectorCapability.WithCause(err)
		case pgErr.Code == pgAdminShutdown, pgErr.Code == pgCrashShutdown, pgErr.Code == pgCannotConnectNow,
			strings.HasPrefix(pgErr.Code, pgConnectionClass):
			return domain.ErrStoreUnavailable.WithCause(err)
		default:
			return domain.ErrQueryFailed.WithCause(err)
		}
	}

	if isConnectivityError(err) {
		return domain.ErrStoreUnavailable.WithCause(err)
	}

	return domain.ErrQueryFailed.WithCause(err)
}

func isConnectivityError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, puddle.ErrClosedPool)
}
