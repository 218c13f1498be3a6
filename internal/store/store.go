// Package store defines the unit of work every engine mutation runs in.
package store

import (
	"context"

	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
)

// Driver names a Store implementation
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

// Tx exposes repositories bound to one store transaction
type Tx interface {
	Cards() ledger.CardRepository
	Pockets() ledger.PocketRepository
	Transactions() ledger.TransactionRepository
	PromoCodes() promo.Repository
	Projects() project.Repository
	Contracts() project.ContractRepository
	Clients() project.ClientRepository
	TeamPayments() payout.Repository
	Rewards() reward.Repository
}

// Store runs fn inside one transaction: either all of its writes commit or none do.
// Row locks taken through Tx are held until fn returns.
type Store interface {
	ExecuteTx(ctx context.Context, fn func(tx Tx) error) error

	// Read returns repositories outside any transaction, for snapshot reads
	Read() Tx

	// Ready returns an Unavailable error until the store has been loaded
	Ready(ctx context.Context) error
}
