package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

var transactionColumnNames = []string{
	"id", "amount", "project_id", "card_id", "pocket_id", "category", "description", "date",
	"vendor_signature", "idempotency_key", "linked_transaction_id", "created_at",
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepository(newTestLogger(), mock)
	cardID := uuid.New()
	now := time.Now()
	txn := &ledger.Transaction{
		ID:        uuid.New(),
		Amount:    150000,
		CardID:    &cardID,
		Category:  "Client Payment",
		Date:      now,
		CreatedAt: now,
	}

	t.Run("nullable columns are sent as NULL", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(insertTransactionQuery)).
			WithArgs(txn.ID, txn.Amount, txn.ProjectID, txn.CardID, txn.PocketID, txn.Category, txn.Description,
				txn.Date, (*string)(nil), (*string)(nil), txn.LinkedTransactionID, txn.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, txn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepository(newTestLogger(), mock)
	now := time.Now()
	pocketID := uuid.New()
	signature := "vendor-sig"
	key := "booking-42"

	t.Run("found", func(t *testing.T) {
		rows := pgxmock.NewRows(transactionColumnNames).
			AddRow(uuid.New(), int64(-2000), (*uuid.UUID)(nil), (*uuid.UUID)(nil), &pocketID, "Print", "",
				now, &signature, &key, (*uuid.UUID)(nil), now)
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionByKeyQuery)).WithArgs(key).WillReturnRows(rows)

		txn, err := repo.GetByIdempotencyKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, shared.Signature("vendor-sig"), txn.VendorSignature)
		assert.Equal(t, key, txn.IdempotencyKey)
		assert.Equal(t, &pocketID, txn.PocketID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionByKeyQuery)).WithArgs(key).WillReturnError(pgx.ErrNoRows)

		txn, err := repo.GetByIdempotencyKey(ctx, key)
		assert.NoError(t, err)
		assert.Nil(t, txn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty key skips the query", func(t *testing.T) {
		txn, err := repo.GetByIdempotencyKey(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, txn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_SetVendorSignature(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepository(newTestLogger(), mock)
	id := uuid.New()
	now := time.Now()
	existing := "first"

	t.Run("first signature wins", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signTransactionQuery)).
			WithArgs("first", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SetVendorSignature(ctx, id, "first"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second signature is rejected", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signTransactionQuery)).
			WithArgs("second", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		rows := pgxmock.NewRows(transactionColumnNames).
			AddRow(id, int64(100), (*uuid.UUID)(nil), (*uuid.UUID)(nil), (*uuid.UUID)(nil), "Misc", "",
				now, &existing, (*string)(nil), (*uuid.UUID)(nil), now)
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionQuery)).WithArgs(id).WillReturnRows(rows)

		err := repo.SetVendorSignature(ctx, id, "second")
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown transaction", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signTransactionQuery)).
			WithArgs("x", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionQuery)).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		err := repo.SetVendorSignature(ctx, id, "x")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_SumByPocket(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepository(newTestLogger(), mock)
	pocketID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(sumByPocketQuery)).
		WithArgs(pocketID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(7500)))

	sum, err := repo.SumByPocket(ctx, pocketID)
	assert.NoError(t, err)
	assert.Equal(t, int64(7500), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildTransactionFilter(t *testing.T) {
	cardID := uuid.New()
	projectID := uuid.New()

	where, args := buildTransactionFilter(ledger.TransactionFilter{CardID: &cardID, ProjectID: &projectID, Limit: 10})

	assert.Contains(t, where, "card_id = $1")
	assert.Contains(t, where, "project_id = $2")
	assert.Contains(t, where, "LIMIT $3")
	assert.Equal(t, []any{cardID, projectID, 10}, args)
}
