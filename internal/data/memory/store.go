// Package memory implements store.Store in process memory. Writes are staged
// per transaction and applied on commit; rows touched by a transaction stay
// locked until it ends. It backs local development and the engine's tests.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/store"
)

var (
	errReadOnly     = errors.New("write outside a store transaction")
	errStaleVersion = errors.New("concurrent modification")
	errUniqueRace   = errors.New("unique key committed concurrently")
)

// Snapshot is the full state the store is loaded from
type Snapshot struct {
	Cards        []*ledger.Card
	Pockets      []*ledger.Pocket
	Transactions []*ledger.Transaction
	PromoCodes   []*promo.PromoCode
	Projects     []*project.Project
	Contracts    []*project.Contract
	Clients      []*project.Client
	Payments     []*payout.TeamProjectPayment
	Records      []*payout.TeamPaymentRecord
	Rewards      []*reward.Entry
}

type dataset struct {
	cards        map[uuid.UUID]*ledger.Card
	pockets      map[uuid.UUID]*ledger.Pocket
	transactions map[uuid.UUID]*ledger.Transaction
	promoCodes   map[uuid.UUID]*promo.PromoCode
	projects     map[uuid.UUID]*project.Project
	contracts    map[uuid.UUID]*project.Contract
	clients      map[uuid.UUID]*project.Client
	payments     map[uuid.UUID]*payout.TeamProjectPayment
	records      map[uuid.UUID]*payout.TeamPaymentRecord
	rewards      map[uuid.UUID]*reward.Entry
}

func newDataset() *dataset {
	return &dataset{
		cards:        make(map[uuid.UUID]*ledger.Card),
		pockets:      make(map[uuid.UUID]*ledger.Pocket),
		transactions: make(map[uuid.UUID]*ledger.Transaction),
		promoCodes:   make(map[uuid.UUID]*promo.PromoCode),
		projects:     make(map[uuid.UUID]*project.Project),
		contracts:    make(map[uuid.UUID]*project.Contract),
		clients:      make(map[uuid.UUID]*project.Client),
		payments:     make(map[uuid.UUID]*payout.TeamProjectPayment),
		records:      make(map[uuid.UUID]*payout.TeamPaymentRecord),
		rewards:      make(map[uuid.UUID]*reward.Entry),
	}
}

// Store is the in-memory store.Store. It reports Unavailable until Load succeeds.
type Store struct {
	logger      *slog.Logger
	lockTimeout time.Duration
	locks       *lockTable

	mu     sync.RWMutex
	data   *dataset
	loaded atomic.Bool
}

var _ store.Store = (*Store)(nil)

func NewStore(logger *slog.Logger, lockTimeout time.Duration) *Store {
	return &Store{
		logger:      logger,
		lockTimeout: lockTimeout,
		locks:       newLockTable(),
		data:        newDataset(),
	}
}

// Load replaces the store contents with snapshot and marks the store ready
func (s *Store) Load(snapshot Snapshot) {
	data := newDataset()
	fill(data.cards, snapshot.Cards, func(c *ledger.Card) uuid.UUID { return c.ID }, shallow[ledger.Card])
	fill(data.pockets, snapshot.Pockets, func(p *ledger.Pocket) uuid.UUID { return p.ID }, shallow[ledger.Pocket])
	fill(data.transactions, snapshot.Transactions, func(t *ledger.Transaction) uuid.UUID { return t.ID }, shallow[ledger.Transaction])
	fill(data.promoCodes, snapshot.PromoCodes, func(p *promo.PromoCode) uuid.UUID { return p.ID }, shallow[promo.PromoCode])
	fill(data.projects, snapshot.Projects, func(p *project.Project) uuid.UUID { return p.ID }, (*project.Project).Clone)
	fill(data.contracts, snapshot.Contracts, func(c *project.Contract) uuid.UUID { return c.ID }, shallow[project.Contract])
	fill(data.clients, snapshot.Clients, func(c *project.Client) uuid.UUID { return c.ID }, shallow[project.Client])
	fill(data.payments, snapshot.Payments, func(p *payout.TeamProjectPayment) uuid.UUID { return p.ID }, shallow[payout.TeamProjectPayment])
	fill(data.records, snapshot.Records, func(r *payout.TeamPaymentRecord) uuid.UUID { return r.ID }, cloneRecord)
	fill(data.rewards, snapshot.Rewards, func(e *reward.Entry) uuid.UUID { return e.ID }, shallow[reward.Entry])

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.loaded.Store(true)

	s.logger.Info("Memory store loaded",
		"cards", len(data.cards),
		"pockets", len(data.pockets),
		"transactions", len(data.transactions),
		"projects", len(data.projects),
	)
}

// Unload drops the store back to the Unavailable state
func (s *Store) Unload() {
	s.loaded.Store(false)
}

func (s *Store) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return shared.Unavailable(err.Error())
	}
	if !s.loaded.Load() {
		return shared.Unavailable("store has not been loaded")
	}
	return nil
}

// ExecuteTx stages every write fn makes and applies them together on success.
// Locks taken by fn are released when it returns, whatever the outcome.
func (s *Store) ExecuteTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := s.Ready(ctx); err != nil {
		return err
	}

	tx := newTx(ctx, s, false)
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return shared.Conflict("transaction", "", err)
	}
	return s.commit(tx.staged)
}

// Read returns a view of committed data. Writes through it fail.
func (s *Store) Read() store.Tx {
	return newTx(context.Background(), s, true)
}

// commit checks unique keys against committed rows, then applies staged rows
func (s *Store) commit(staged *dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(staged); err != nil {
		return err
	}

	merge(s.data.cards, staged.cards)
	merge(s.data.pockets, staged.pockets)
	merge(s.data.transactions, staged.transactions)
	merge(s.data.promoCodes, staged.promoCodes)
	merge(s.data.projects, staged.projects)
	merge(s.data.contracts, staged.contracts)
	merge(s.data.clients, staged.clients)
	merge(s.data.payments, staged.payments)
	merge(s.data.records, staged.records)
	merge(s.data.rewards, staged.rewards)
	return nil
}

// checkUnique mirrors the UNIQUE constraints of the relational schema. A key
// another intent committed first is a Conflict, except for the keys a caller
// chooses: idempotency keys and promo codes.
func (s *Store) checkUnique(staged *dataset) error {
	for id, c := range staged.clients {
		for otherID, other := range s.data.clients {
			if otherID != id && strings.EqualFold(other.Email, c.Email) {
				return shared.Conflict("client", c.Email, errUniqueRace)
			}
		}
	}
	for id, p := range staged.promoCodes {
		for otherID, other := range s.data.promoCodes {
			if otherID != id && other.Code == p.Code {
				return shared.Duplicate("promo_code", p.Code)
			}
		}
	}
	for id, t := range staged.transactions {
		if t.IdempotencyKey == "" {
			continue
		}
		for otherID, other := range s.data.transactions {
			if otherID != id && other.IdempotencyKey == t.IdempotencyKey {
				return shared.Duplicate("transaction", t.IdempotencyKey)
			}
		}
	}
	for id, r := range staged.records {
		for otherID, other := range s.data.records {
			if otherID != id && other.RecordNumber == r.RecordNumber {
				return shared.Conflict("team_payment_record", r.RecordNumber, errUniqueRace)
			}
		}
	}
	return nil
}

func fill[T any](dst map[uuid.UUID]*T, rows []*T, key func(*T) uuid.UUID, clone func(*T) *T) {
	for _, row := range rows {
		dst[key(row)] = clone(row)
	}
}

func merge[T any](dst, src map[uuid.UUID]*T) {
	for id, row := range src {
		dst[id] = row
	}
}

func shallow[T any](v *T) *T {
	cp := *v
	return &cp
}

func cloneRecord(r *payout.TeamPaymentRecord) *payout.TeamPaymentRecord {
	cp := *r
	cp.ProjectPaymentIDs = append([]uuid.UUID(nil), r.ProjectPaymentIDs...)
	return &cp
}
