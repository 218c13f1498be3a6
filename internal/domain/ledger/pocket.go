package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// PocketType defines the balance rules of a pocket
type PocketType string

const (
	PocketTypeSaving     PocketType = "SAVING"
	PocketTypeExpense    PocketType = "EXPENSE"
	PocketTypeRewardPool PocketType = "REWARD_POOL"
	PocketTypeLock       PocketType = "LOCK"
)

func (t PocketType) Valid() bool {
	switch t {
	case PocketTypeSaving, PocketTypeExpense, PocketTypeRewardPool, PocketTypeLock:
		return true
	}
	return false
}

// NonNegative reports whether the pocket balance is floored at zero.
// Only expense budgets may be overspent.
func (t PocketType) NonNegative() bool {
	return t != PocketTypeExpense
}

// Pocket is a named sub-allocation of funds tracked apart from card balances
type Pocket struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Type       PocketType `json:"type"`
	Balance    int64      `json:"balance"`
	GoalAmount *int64     `json:"goal_amount,omitempty"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewPocket(name string, pocketType PocketType, goalAmount *int64) (*Pocket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("pocket name cannot be empty")
	}
	if !pocketType.Valid() {
		return nil, shared.Validation("unknown pocket type %q", pocketType)
	}
	if goalAmount != nil && *goalAmount <= 0 {
		return nil, shared.Validation("goal amount must be positive")
	}

	now := time.Now().UTC()
	return &Pocket{
		ID:         uuid.New(),
		Name:       name,
		Type:       pocketType,
		GoalAmount: goalAmount,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanApply checks the balance floor without mutating the pocket
func (p *Pocket) CanApply(delta int64) bool {
	if !p.Type.NonNegative() {
		return true
	}
	return p.Balance+delta >= 0
}

// Apply adds a signed delta, refusing to breach the floor of non-negative pocket types
func (p *Pocket) Apply(delta int64) error {
	if delta == 0 {
		return shared.Validation("amount must be non-zero")
	}
	if !p.CanApply(delta) {
		return shared.InsufficientFunds("pocket", p.ID.String(), p.Balance, delta)
	}

	p.Balance += delta
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// GoalReached reports whether a saving goal is met
func (p *Pocket) GoalReached() bool {
	return p.GoalAmount != nil && p.Balance >= *p.GoalAmount
}
