package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const (
	insertPocketQuery = `
		INSERT INTO pockets (id, name, type, balance, goal_amount, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	selectPocketQuery = `
		SELECT id, name, type, balance, goal_amount, version, created_at, updated_at
		FROM pockets
		WHERE id = $1
	`
	listPocketsQuery = `
		SELECT id, name, type, balance, goal_amount, version, created_at, updated_at
		FROM pockets
		ORDER BY created_at, id
	`
	lockPocketQuery = `
		SELECT id, name, type, balance, goal_amount, version, created_at, updated_at
		FROM pockets
		WHERE id = $1
		FOR UPDATE
	`
	updatePocketBalanceQuery = `
		UPDATE pockets
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
)

// PocketRepository implements ledger.PocketRepository for PostgreSQL.
// The pockets_floor check constraint backs up the floor enforced in the domain.
type PocketRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPocketRepository(logger *slog.Logger, querier persistence.Querier) *PocketRepository {
	return &PocketRepository{querier: querier, logger: logger}
}

func (r *PocketRepository) WithTx(tx pgx.Tx) *PocketRepository {
	return &PocketRepository{querier: tx, logger: r.logger}
}

func scanPocket(row pgx.Row) (*ledger.Pocket, error) {
	var p ledger.Pocket
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Balance, &p.GoalAmount, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PocketRepository) Create(ctx context.Context, pocket *ledger.Pocket) error {
	_, err := r.querier.Exec(ctx, insertPocketQuery,
		pocket.ID, pocket.Name, pocket.Type, pocket.Balance, pocket.GoalAmount, pocket.Version, pocket.CreatedAt, pocket.UpdatedAt)
	if err != nil {
		return dbError(r.logger, err, "create pocket", "pocket", pocket.ID.String())
	}
	return nil
}

func (r *PocketRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Pocket, error) {
	return r.get(ctx, selectPocketQuery, id, "get pocket")
}

func (r *PocketRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Pocket, error) {
	return r.get(ctx, lockPocketQuery, id, "lock pocket for update")
}

func (r *PocketRepository) get(ctx context.Context, query string, id uuid.UUID, op string) (*ledger.Pocket, error) {
	pocket, err := scanPocket(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("pocket", id.String())
		}
		return nil, dbError(r.logger, err, op, "pocket", id.String())
	}
	return pocket, nil
}

func (r *PocketRepository) List(ctx context.Context) ([]*ledger.Pocket, error) {
	rows, err := r.querier.Query(ctx, listPocketsQuery)
	if err != nil {
		return nil, dbError(r.logger, err, "list pockets", "pocket", "")
	}
	defer rows.Close()

	pockets := []*ledger.Pocket{}
	for rows.Next() {
		pocket, err := scanPocket(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan pocket", "pocket", "")
		}
		pockets = append(pockets, pocket)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate pockets", "pocket", "")
	}
	return pockets, nil
}

func (r *PocketRepository) UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error {
	result, err := r.querier.Exec(ctx, updatePocketBalanceQuery, delta, id, version)
	if err != nil {
		return dbError(r.logger, err, "update pocket balance", "pocket", id.String())
	}
	if result.RowsAffected() == 0 {
		return shared.Conflict("pocket", id.String(), errors.New("concurrent modification"))
	}
	return nil
}
