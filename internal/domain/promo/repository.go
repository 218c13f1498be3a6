package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines promo code persistence operations
type Repository interface {
	Create(ctx context.Context, code *PromoCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	List(ctx context.Context) ([]*PromoCode, error)

	// Redeem atomically checks redeemability at now and increments usedCount by one.
	// It returns the updated code, PromoExpiredOrExhausted or NotFound.
	Redeem(ctx context.Context, code string, now time.Time) (*PromoCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
