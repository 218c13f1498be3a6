package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// CardType defines where the money physically sits
type CardType string

const (
	CardTypeCash    CardType = "CASH"
	CardTypeBank    CardType = "BANK"
	CardTypeEWallet CardType = "E_WALLET"
)

func (t CardType) Valid() bool {
	switch t {
	case CardTypeCash, CardTypeBank, CardTypeEWallet:
		return true
	}
	return false
}

// Card is a payment source whose balance caches the sum of transactions that reference it.
// Cards may be overdrawn; pockets carry the hard floors.
type Card struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      CardType  `json:"type"`
	Balance   int64     `json:"balance"` // Stored in minor units
	Version   int       `json:"version"` // For optimistic locking
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates an empty card. Opening balances are posted as transactions.
func NewCard(name string, cardType CardType) (*Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("card name cannot be empty")
	}
	if !cardType.Valid() {
		return nil, shared.Validation("unknown card type %q", cardType)
	}

	now := time.Now().UTC()
	return &Card{
		ID:        uuid.New(),
		Name:      name,
		Type:      cardType,
		Balance:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply adds a signed delta to the card balance
func (c *Card) Apply(delta int64) error {
	if delta == 0 {
		return shared.Validation("amount must be non-zero")
	}

	c.Balance += delta
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	return nil
}
