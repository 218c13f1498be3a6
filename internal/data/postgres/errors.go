// Package postgres provides PostgreSQL implementations of the domain repositories
// and the transactional Store the engine runs on.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// PostgreSQL error codes with a domain meaning
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

// duplicateConstraints are the unique keys a caller chooses. Losing a race on
// any other unique key is a Conflict, and the intent may be retried.
var duplicateConstraints = map[string]bool{
	"transactions_idempotency_key_key": true,
	"promo_codes_code_key":             true,
}

// translate maps driver failures that callers must react to onto shared errors.
// It returns nil for everything else.
func translate(err error, entity, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceled:
			return shared.Conflict(entity, id, err)
		case pgUniqueViolation:
			if duplicateConstraints[pgErr.ConstraintName] {
				return shared.Duplicate(entity, pgErr.ConstraintName)
			}
			return shared.Conflict(entity, id, err)
		case pgCheckViolation:
			if pgErr.ConstraintName == "pockets_floor" {
				return &shared.Error{Kind: shared.KindInsufficientFunds, Entity: entity, ID: id, Err: err}
			}
			return &shared.Error{Kind: shared.KindValidation, Entity: entity, ID: id, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.Conflict(entity, id, err)
	}
	return nil
}

// dbError logs and wraps a failed statement, translating it first when possible
func dbError(logger *slog.Logger, err error, op, entity, id string) error {
	if domainErr := translate(err, entity, id); domainErr != nil {
		logger.Warn("Statement rejected", "op", op, "entity", entity, "id", id, "error", err)
		return domainErr
	}
	logger.Error("Failed to "+op, "entity", entity, "id", id, "error", err)
	return fmt.Errorf("failed to %s: %w", op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
