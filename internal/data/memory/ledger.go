package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type cardRepository struct {
	tx *memTx
}

func (r *cardRepository) Create(ctx context.Context, card *ledger.Card) error {
	if _, ok := get(r.tx, cardRows, card.ID); ok {
		return shared.Duplicate("card", card.ID.String())
	}
	return stage(r.tx, cardRows, card.ID, shallow(card))
}

func (r *cardRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Card, error) {
	card, ok := get(r.tx, cardRows, id)
	if !ok {
		return nil, shared.NotFound("card", id.String())
	}
	return shallow(card), nil
}

func (r *cardRepository) List(ctx context.Context) ([]*ledger.Card, error) {
	rows := all(r.tx, cardRows)
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*ledger.Card, 0, len(rows))
	for _, c := range rows {
		out = append(out, shallow(c))
	}
	return out, nil
}

func (r *cardRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Card, error) {
	if err := r.tx.lock(ctx, "card:"+id.String()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *cardRepository) UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "card:"+id.String()); err != nil {
		return err
	}
	card, ok := get(r.tx, cardRows, id)
	if !ok {
		return shared.NotFound("card", id.String())
	}
	if card.Version != version {
		return shared.Conflict("card", id.String(), errStaleVersion)
	}

	updated := shallow(card)
	updated.Balance += delta
	updated.Version++
	updated.UpdatedAt = time.Now().UTC()
	return stage(r.tx, cardRows, id, updated)
}

type pocketRepository struct {
	tx *memTx
}

func (r *pocketRepository) Create(ctx context.Context, pocket *ledger.Pocket) error {
	if _, ok := get(r.tx, pocketRows, pocket.ID); ok {
		return shared.Duplicate("pocket", pocket.ID.String())
	}
	return stage(r.tx, pocketRows, pocket.ID, shallow(pocket))
}

func (r *pocketRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Pocket, error) {
	pocket, ok := get(r.tx, pocketRows, id)
	if !ok {
		return nil, shared.NotFound("pocket", id.String())
	}
	return shallow(pocket), nil
}

func (r *pocketRepository) List(ctx context.Context) ([]*ledger.Pocket, error) {
	rows := all(r.tx, pocketRows)
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*ledger.Pocket, 0, len(rows))
	for _, p := range rows {
		out = append(out, shallow(p))
	}
	return out, nil
}

func (r *pocketRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Pocket, error) {
	if err := r.tx.lock(ctx, "pocket:"+id.String()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateBalance enforces the same floor as the pockets_floor check constraint
func (r *pocketRepository) UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "pocket:"+id.String()); err != nil {
		return err
	}
	pocket, ok := get(r.tx, pocketRows, id)
	if !ok {
		return shared.NotFound("pocket", id.String())
	}
	if pocket.Version != version {
		return shared.Conflict("pocket", id.String(), errStaleVersion)
	}
	if !pocket.CanApply(delta) {
		return shared.InsufficientFunds("pocket", id.String(), pocket.Balance, delta)
	}

	updated := shallow(pocket)
	updated.Balance += delta
	updated.Version++
	updated.UpdatedAt = time.Now().UTC()
	return stage(r.tx, pocketRows, id, updated)
}

type transactionRepository struct {
	tx *memTx
}

func (r *transactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	if _, ok := get(r.tx, txnRows, txn.ID); ok {
		return shared.Duplicate("transaction", txn.ID.String())
	}
	if txn.IdempotencyKey != "" {
		if existing, _ := r.GetByIdempotencyKey(ctx, txn.IdempotencyKey); existing != nil {
			return shared.Duplicate("transaction", txn.IdempotencyKey)
		}
	}
	return stage(r.tx, txnRows, txn.ID, shallow(txn))
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	txn, ok := get(r.tx, txnRows, id)
	if !ok {
		return nil, shared.NotFound("transaction", id.String())
	}
	return shallow(txn), nil
}

func (r *transactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*ledger.Transaction, error) {
	if key == "" {
		return nil, nil
	}
	for _, txn := range all(r.tx, txnRows) {
		if txn.IdempotencyKey == key {
			return shallow(txn), nil
		}
	}
	return nil, nil
}

func (r *transactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	var rows []*ledger.Transaction
	for _, txn := range all(r.tx, txnRows) {
		if matches(txn, filter) {
			rows = append(rows, txn)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return lessID(a.ID, b.ID)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	out := make([]*ledger.Transaction, 0, len(rows))
	for _, txn := range rows {
		out = append(out, shallow(txn))
	}
	return out, nil
}

func matches(txn *ledger.Transaction, filter ledger.TransactionFilter) bool {
	if filter.CardID != nil && (txn.CardID == nil || *txn.CardID != *filter.CardID) {
		return false
	}
	if filter.PocketID != nil && (txn.PocketID == nil || *txn.PocketID != *filter.PocketID) {
		return false
	}
	if filter.ProjectID != nil && (txn.ProjectID == nil || *txn.ProjectID != *filter.ProjectID) {
		return false
	}
	return true
}

func (r *transactionRepository) sum(keep func(*ledger.Transaction) bool) int64 {
	var total int64
	for _, txn := range all(r.tx, txnRows) {
		if keep(txn) {
			total += txn.Amount
		}
	}
	return total
}

func (r *transactionRepository) SumByPocket(ctx context.Context, pocketID uuid.UUID) (int64, error) {
	return r.sum(func(t *ledger.Transaction) bool { return t.PocketID != nil && *t.PocketID == pocketID }), nil
}

func (r *transactionRepository) SumByCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	return r.sum(func(t *ledger.Transaction) bool { return t.CardID != nil && *t.CardID == cardID }), nil
}

func (r *transactionRepository) SumIncomeByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return r.sum(func(t *ledger.Transaction) bool {
		return t.ProjectID != nil && *t.ProjectID == projectID && t.Amount > 0
	}), nil
}

func (r *transactionRepository) SetVendorSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "transaction:"+id.String()); err != nil {
		return err
	}
	txn, ok := get(r.tx, txnRows, id)
	if !ok {
		return shared.NotFound("transaction", id.String())
	}
	if txn.VendorSignature.IsSet() {
		return shared.AlreadySigned("transaction", id.String())
	}

	signed := shallow(txn)
	signed.VendorSignature = signature
	return stage(r.tx, txnRows, id, signed)
}

func createdBefore(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return lessID(aID, bID)
}
