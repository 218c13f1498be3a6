package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
)

// memTx is one unit of work. Reads see its own staged rows first.
type memTx struct {
	ctx      context.Context
	store    *Store
	readOnly bool
	staged   *dataset
	held     []string
	holding  map[string]bool
}

func newTx(ctx context.Context, s *Store, readOnly bool) *memTx {
	return &memTx{
		ctx:      ctx,
		store:    s,
		readOnly: readOnly,
		staged:   newDataset(),
		holding:  make(map[string]bool),
	}
}

// lock takes the row lock for key once per transaction
func (t *memTx) lock(ctx context.Context, key string) error {
	if t.readOnly || t.holding[key] {
		return nil
	}
	if err := t.store.locks.acquire(ctx, key, t.store.lockTimeout); err != nil {
		return err
	}
	t.holding[key] = true
	t.held = append(t.held, key)
	return nil
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.store.locks.release(t.held[i])
	}
	t.held = nil
	t.holding = make(map[string]bool)
}

func (t *memTx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *memTx) Cards() ledger.CardRepository { return &cardRepository{tx: t} }
func (t *memTx) Pockets() ledger.PocketRepository { return &pocketRepository{tx: t} }
func (t *memTx) Transactions() ledger.TransactionRepository { return &transactionRepository{tx: t} }
func (t *memTx) PromoCodes() promo.Repository { return &promoRepository{tx: t} }
func (t *memTx) Projects() project.Repository { return &projectRepository{tx: t} }
func (t *memTx) Contracts() project.ContractRepository { return &contractRepository{tx: t} }
func (t *memTx) Clients() project.ClientRepository { return &clientRepository{tx: t} }
func (t *memTx) TeamPayments() payout.Repository { return &payoutRepository{tx: t} }
func (t *memTx) Rewards() reward.Repository { return &rewardRepository{tx: t} }

// table selects one entity map out of a dataset
type table[T any] func(*dataset) map[uuid.UUID]*T

// get returns the transaction's view of a row, without copying it
func get[T any](t *memTx, pick table[T], id uuid.UUID) (*T, bool) {
	if row, ok := pick(t.staged)[id]; ok {
		return row, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	row, ok := pick(t.store.data)[id]
	return row, ok
}

// all returns every row visible to the transaction, committed rows overlaid by staged ones
func all[T any](t *memTx, pick table[T]) []*T {
	t.store.mu.RLock()
	merged := make(map[uuid.UUID]*T, len(pick(t.store.data)))
	for id, row := range pick(t.store.data) {
		merged[id] = row
	}
	t.store.mu.RUnlock()

	for id, row := range pick(t.staged) {
		merged[id] = row
	}

	rows := make([]*T, 0, len(merged))
	for _, row := range merged {
		rows = append(rows, row)
	}
	return rows
}

func stage[T any](t *memTx, pick table[T], id uuid.UUID, row *T) error {
	if err := t.writable(); err != nil {
		return err
	}
	pick(t.staged)[id] = row
	return nil
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
}

var (
	cardRows     = table[ledger.Card](func(d *dataset) map[uuid.UUID]*ledger.Card { return d.cards })
	pocketRows   = table[ledger.Pocket](func(d *dataset) map[uuid.UUID]*ledger.Pocket { return d.pockets })
	txnRows      = table[ledger.Transaction](func(d *dataset) map[uuid.UUID]*ledger.Transaction { return d.transactions })
	promoRows    = table[promo.PromoCode](func(d *dataset) map[uuid.UUID]*promo.PromoCode { return d.promoCodes })
	projectRows  = table[project.Project](func(d *dataset) map[uuid.UUID]*project.Project { return d.projects })
	contractRows = table[project.Contract](func(d *dataset) map[uuid.UUID]*project.Contract { return d.contracts })
	clientRows   = table[project.Client](func(d *dataset) map[uuid.UUID]*project.Client { return d.clients })
	paymentRows  = table[payout.TeamProjectPayment](func(d *dataset) map[uuid.UUID]*payout.TeamProjectPayment { return d.payments })
	recordRows   = table[payout.TeamPaymentRecord](func(d *dataset) map[uuid.UUID]*payout.TeamPaymentRecord { return d.records })
	rewardRows   = table[reward.Entry](func(d *dataset) map[uuid.UUID]*reward.Entry { return d.rewards })
)
