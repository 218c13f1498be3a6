package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/store"
)

type PromoManagerImpl struct {
	logger *slog.Logger
}

func NewPromoManager(logger *slog.Logger) service.PromoManager {
	return &PromoManagerImpl{logger: logger}
}

func (m *PromoManagerImpl) CreatePromoCode(ctx context.Context, tx store.Tx, code string, discountType promo.DiscountType, value decimal.Decimal, maxUses *int, expiry *time.Time) (*promo.PromoCode, error) {
	created, err := promo.NewPromoCode(code, discountType, value, maxUses, expiry)
	if err != nil {
		return nil, err
	}
	if err := tx.PromoCodes().Create(ctx, created); err != nil {
		return nil, err
	}
	m.logger.Info("Promo code created", "code", created.Code, "discount_type", created.DiscountType, "discount_value", created.DiscountValue.String())
	return created, nil
}

func (m *PromoManagerImpl) SetActive(ctx context.Context, tx store.Tx, id uuid.UUID, active bool) (*promo.PromoCode, error) {
	if err := tx.PromoCodes().SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return tx.PromoCodes().GetByID(ctx, id)
}

func (m *PromoManagerImpl) Quote(ctx context.Context, tx store.Tx, code string, baseAmount int64, now time.Time) (*promo.Redemption, error) {
	if baseAmount < 0 {
		return nil, shared.Validation("base amount cannot be negative")
	}
	found, err := tx.PromoCodes().GetByCode(ctx, promo.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if err := found.Redeemable(now); err != nil {
		return nil, err
	}
	return promo.NewRedemption(found, baseAmount), nil
}

// Redeem consumes one use of code. The repository performs the check and the
// increment as a single step, so concurrent redemptions never exceed MaxUses.
func (m *PromoManagerImpl) Redeem(ctx context.Context, tx store.Tx, code string, baseAmount int64, now time.Time) (*promo.Redemption, error) {
	if baseAmount < 0 {
		return nil, shared.Validation("base amount cannot be negative")
	}
	redeemed, err := tx.PromoCodes().Redeem(ctx, promo.NormalizeCode(code), now)
	if err != nil {
		return nil, err
	}

	redemption := promo.NewRedemption(redeemed, baseAmount)
	m.logger.Info("Promo code redeemed",
		"code", redemption.Code,
		"base_amount", redemption.BaseAmount,
		"final_amount", redemption.FinalAmount,
		"used_count", redemption.UsedCount,
	)
	return redemption, nil
}
