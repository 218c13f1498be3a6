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
	insertCardQuery = `
		INSERT INTO cards (id, name, type, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	selectCardQuery = `
		SELECT id, name, type, balance, version, created_at, updated_at
		FROM cards
		WHERE id = $1
	`
	listCardsQuery = `
		SELECT id, name, type, balance, version, created_at, updated_at
		FROM cards
		ORDER BY created_at, id
	`
	lockCardQuery = `
		SELECT id, name, type, balance, version, created_at, updated_at
		FROM cards
		WHERE id = $1
		FOR UPDATE
	`
	updateCardBalanceQuery = `
		UPDATE cards
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
)

// CardRepository implements ledger.CardRepository for PostgreSQL
type CardRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

func NewCardRepository(logger *slog.Logger, querier persistence.Querier) *CardRepository {
	return &CardRepository{querier: querier, logger: logger}
}

// WithTx returns a repository bound to tx
func (r *CardRepository) WithTx(tx pgx.Tx) *CardRepository {
	return &CardRepository{querier: tx, logger: r.logger}
}

func scanCard(row pgx.Row) (*ledger.Card, error) {
	var c ledger.Card
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Balance, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepository) Create(ctx context.Context, card *ledger.Card) error {
	_, err := r.querier.Exec(ctx, insertCardQuery,
		card.ID, card.Name, card.Type, card.Balance, card.Version, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return dbError(r.logger, err, "create card", "card", card.ID.String())
	}
	return nil
}

func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Card, error) {
	return r.get(ctx, selectCardQuery, id, "get card")
}

// LockForUpdate holds a row lock on the card until the transaction ends
func (r *CardRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Card, error) {
	return r.get(ctx, lockCardQuery, id, "lock card for update")
}

func (r *CardRepository) get(ctx context.Context, query string, id uuid.UUID, op string) (*ledger.Card, error) {
	card, err := scanCard(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("card", id.String())
		}
		return nil, dbError(r.logger, err, op, "card", id.String())
	}
	return card, nil
}

func (r *CardRepository) List(ctx context.Context) ([]*ledger.Card, error) {
	rows, err := r.querier.Query(ctx, listCardsQuery)
	if err != nil {
		return nil, dbError(r.logger, err, "list cards", "card", "")
	}
	defer rows.Close()

	cards := []*ledger.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan card", "card", "")
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate cards", "card", "")
	}
	return cards, nil
}

// UpdateBalance adds delta when the stored version still matches.
// A version mismatch is reported as Conflict.
func (r *CardRepository) UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error {
	result, err := r.querier.Exec(ctx, updateCardBalanceQuery, delta, id, version)
	if err != nil {
		return dbError(r.logger, err, "update card balance", "card", id.String())
	}
	if result.RowsAffected() == 0 {
		return shared.Conflict("card", id.String(), errors.New("concurrent modification"))
	}
	return nil
}
