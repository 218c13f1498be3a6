package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// CardRepository defines card persistence operations
type CardRepository interface {
	Create(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)
	List(ctx context.Context) ([]*Card, error)

	// LockForUpdate holds the card row until the surrounding store transaction ends
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Card, error)

	// UpdateBalance adds delta if the stored version still equals version
	UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error
}

// PocketRepository defines pocket persistence operations
type PocketRepository interface {
	Create(ctx context.Context, pocket *Pocket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pocket, error)
	List(ctx context.Context) ([]*Pocket, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Pocket, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, delta int64, version int) error
}

// TransactionFilter narrows transaction listings; nil fields are ignored
type TransactionFilter struct {
	CardID    *uuid.UUID
	PocketID  *uuid.UUID
	ProjectID *uuid.UUID
	Limit     int
	Offset    int
}

// TransactionRepository manages the append-only transaction history
type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByIdempotencyKey returns nil, nil when no transaction carries the key
	GetByIdempotencyKey(ctx context.Context, key string) (*Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)
	SumByPocket(ctx context.Context, pocketID uuid.UUID) (int64, error)
	SumByCard(ctx context.Context, cardID uuid.UUID) (int64, error)

	// SumIncomeByProject adds up the positive transactions posted against a project
	SumIncomeByProject(ctx context.Context, projectID uuid.UUID) (int64, error)

	// SetVendorSignature writes the signature only if none is stored yet
	SetVendorSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error
}
