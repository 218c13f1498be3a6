package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const transactionColumns = `id, amount, project_id, card_id, pocket_id, category, description, date,
		       vendor_signature, idempotency_key, linked_transaction_id, created_at`

const (
	insertTransactionQuery = `
		INSERT INTO transactions (id, amount, project_id, card_id, pocket_id, category, description, date,
		                          vendor_signature, idempotency_key, linked_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	selectTransactionQuery = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`
	selectTransactionByKeyQuery = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE idempotency_key = $1
	`
	listTransactionsQuery = `
		SELECT ` + transactionColumns + `
		FROM transactions`
	sumByPocketQuery = `
		SELECT COALESCE(SUM(amount), 0)::BIGINT FROM transactions WHERE pocket_id = $1
	`
	sumByCardQuery = `
		SELECT COALESCE(SUM(amount), 0)::BIGINT FROM transactions WHERE card_id = $1
	`
	sumIncomeByProjectQuery = `
		SELECT COALESCE(SUM(amount), 0)::BIGINT FROM transactions WHERE project_id = $1 AND amount > 0
	`
	signTransactionQuery = `
		UPDATE transactions
		SET vendor_signature = $1
		WHERE id = $2 AND vendor_signature IS NULL
	`
)

// TransactionRepository implements ledger.TransactionRepository for PostgreSQL.
// Rows are never updated except for the write-once vendor signature.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, querier persistence.Querier) *TransactionRepository {
	return &TransactionRepository{querier: querier, logger: logger}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) *TransactionRepository {
	return &TransactionRepository{querier: tx, logger: r.logger}
}

func scanTransaction(row pgx.Row) (*ledger.Transaction, error) {
	var (
		t         ledger.Transaction
		signature *string
		key       *string
	)
	err := row.Scan(
		&t.ID,
		&t.Amount,
		&t.ProjectID,
		&t.CardID,
		&t.PocketID,
		&t.Category,
		&t.Description,
		&t.Date,
		&signature,
		&key,
		&t.LinkedTransactionID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.VendorSignature = shared.SignatureFromPtr(signature)
	t.IdempotencyKey = derefString(key)
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	_, err := r.querier.Exec(ctx, insertTransactionQuery,
		txn.ID,
		txn.Amount,
		txn.ProjectID,
		txn.CardID,
		txn.PocketID,
		txn.Category,
		txn.Description,
		txn.Date,
		txn.VendorSignature.Ptr(),
		nullString(txn.IdempotencyKey),
		txn.LinkedTransactionID,
		txn.CreatedAt,
	)
	if err != nil {
		return dbError(r.logger, err, "create transaction", "transaction", txn.ID.String())
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	txn, err := scanTransaction(r.querier.QueryRow(ctx, selectTransactionQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("transaction", id.String())
		}
		return nil, dbError(r.logger, err, "get transaction", "transaction", id.String())
	}
	return txn, nil
}

// GetByIdempotencyKey returns nil, nil when no transaction carries the key
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*ledger.Transaction, error) {
	if key == "" {
		return nil, nil
	}
	txn, err := scanTransaction(r.querier.QueryRow(ctx, selectTransactionByKeyQuery, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(r.logger, err, "get transaction by idempotency key", "transaction", key)
	}
	return txn, nil
}

// buildTransactionFilter renders the WHERE, ORDER and paging clauses for List
func buildTransactionFilter(filter ledger.TransactionFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(column string, value *uuid.UUID) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("card_id", filter.CardID)
	add("pocket_id", filter.PocketID)
	add("project_id", filter.ProjectID)

	var sb strings.Builder
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY date DESC, created_at DESC, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}
	return sb.String(), args
}

// List returns transactions newest first
func (r *TransactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	clause, args := buildTransactionFilter(filter)

	rows, err := r.querier.Query(ctx, listTransactionsQuery+clause, args...)
	if err != nil {
		return nil, dbError(r.logger, err, "list transactions", "transaction", "")
	}
	defer rows.Close()

	txns := []*ledger.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan transaction", "transaction", "")
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate transactions", "transaction", "")
	}
	return txns, nil
}

func (r *TransactionRepository) sum(ctx context.Context, query string, id uuid.UUID, op string) (int64, error) {
	var total int64
	if err := r.querier.QueryRow(ctx, query, id).Scan(&total); err != nil {
		return 0, dbError(r.logger, err, op, "transaction", id.String())
	}
	return total, nil
}

func (r *TransactionRepository) SumByPocket(ctx context.Context, pocketID uuid.UUID) (int64, error) {
	return r.sum(ctx, sumByPocketQuery, pocketID, "sum transactions by pocket")
}

func (r *TransactionRepository) SumByCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	return r.sum(ctx, sumByCardQuery, cardID, "sum transactions by card")
}

func (r *TransactionRepository) SumIncomeByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return r.sum(ctx, sumIncomeByProjectQuery, projectID, "sum project income")
}

// SetVendorSignature writes the signature only if the row has none.
// Zero affected rows means either a missing row or an existing signature.
func (r *TransactionRepository) SetVendorSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error {
	result, err := r.querier.Exec(ctx, signTransactionQuery, string(signature), id)
	if err != nil {
		return dbError(r.logger, err, "sign transaction", "transaction", id.String())
	}
	if result.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return shared.AlreadySigned("transaction", id.String())
}
