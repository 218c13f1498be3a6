package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
	"github.com/vendor-ops-ledger/internal/store"
)

// Store implements store.Store on one PostgreSQL database
type Store struct {
	db     *persistence.PostgresDB
	logger *slog.Logger
	read   *repositories
}

var _ store.Store = (*Store)(nil)

func NewStore(logger *slog.Logger, db *persistence.PostgresDB) *Store {
	return &Store{
		db:     db,
		logger: logger,
		read:   newRepositories(logger, db.Pool()),
	}
}

// ExecuteTx runs fn in a database transaction with the configured lock timeout.
// Lock waits and serialization failures come back as Conflict.
func (s *Store) ExecuteTx(ctx context.Context, fn func(tx store.Tx) error) error {
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return fn(s.read.withTx(tx))
	})
	if err == nil {
		return nil
	}

	var domainErr *shared.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if translated := translate(err, "transaction", ""); translated != nil {
		s.logger.Warn("Transaction aborted", "error", err)
		return translated
	}
	return err
}

func (s *Store) Read() store.Tx {
	return s.read
}

func (s *Store) Ready(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return shared.Unavailable("postgres is not reachable: " + err.Error())
	}
	return nil
}

// Outbox returns the pool-backed outbox repository used by the notifier and poller
func (s *Store) Outbox() *OutboxRepository {
	return NewOutboxRepository(s.logger, s.db.Pool())
}

type repositories struct {
	cards        *CardRepository
	pockets      *PocketRepository
	transactions *TransactionRepository
	promoCodes   *PromoRepository
	projects     *ProjectRepository
	contracts    *ContractRepository
	clients      *ClientRepository
	payouts      *PayoutRepository
	rewards      *RewardRepository
}

func newRepositories(logger *slog.Logger, querier persistence.Querier) *repositories {
	return &repositories{
		cards:        NewCardRepository(logger, querier),
		pockets:      NewPocketRepository(logger, querier),
		transactions: NewTransactionRepository(logger, querier),
		promoCodes:   NewPromoRepository(logger, querier),
		projects:     NewProjectRepository(logger, querier),
		contracts:    NewContractRepository(logger, querier),
		clients:      NewClientRepository(logger, querier),
		payouts:      NewPayoutRepository(logger, querier),
		rewards:      NewRewardRepository(logger, querier),
	}
}

func (r *repositories) withTx(tx pgx.Tx) *repositories {
	return &repositories{
		cards:        r.cards.WithTx(tx),
		pockets:      r.pockets.WithTx(tx),
		transactions: r.transactions.WithTx(tx),
		promoCodes:   r.promoCodes.WithTx(tx),
		projects:     r.projects.WithTx(tx),
		contracts:    r.contracts.WithTx(tx),
		clients:      r.clients.WithTx(tx),
		payouts:      r.payouts.WithTx(tx),
		rewards:      r.rewards.WithTx(tx),
	}
}

func (r *repositories) Cards() ledger.CardRepository { return r.cards }
func (r *repositories) Pockets() ledger.PocketRepository { return r.pockets }
func (r *repositories) Transactions() ledger.TransactionRepository { return r.transactions }
func (r *repositories) PromoCodes() promo.Repository { return r.promoCodes }
func (r *repositories) Projects() project.Repository { return r.projects }
func (r *repositories) Contracts() project.ContractRepository { return r.contracts }
func (r *repositories) Clients() project.ClientRepository { return r.clients }
func (r *repositories) TeamPayments() payout.Repository { return r.payouts }
func (r *repositories) Rewards() reward.Repository { return r.rewards }
