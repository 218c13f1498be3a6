package promo

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// DiscountType defines how a promo code reduces a base amount
type DiscountType string

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

var hundred = decimal.NewFromInt(100)

// PromoCode is a bounded-use discount. UsedCount never exceeds MaxUses.
type PromoCode struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses,omitempty"` // nil means unlimited
	UsedCount     int             `json:"used_count"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"` // nil means never expires
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NormalizeCode is applied to every code before lookup or storage
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPromoCode validates and builds an active promo code
func NewPromoCode(code string, discountType DiscountType, value decimal.Decimal, maxUses *int, expiry *time.Time) (*PromoCode, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, shared.Validation("promo code cannot be empty")
	}
	switch discountType {
	case DiscountFixed:
		if !value.IsPositive() || !value.IsInteger() {
			return nil, shared.Validation("fixed discount must be a positive whole amount")
		}
	case DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			return nil, shared.Validation("percentage discount must be in (0, 100]")
		}
	default:
		return nil, shared.Validation("unknown discount type %q", discountType)
	}
	if maxUses != nil && *maxUses <= 0 {
		return nil, shared.Validation("max uses must be positive")
	}

	return &PromoCode{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: value,
		MaxUses:       maxUses,
		ExpiryDate:    expiry,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Redeemable checks the active flag, expiry and remaining uses at the given instant
func (p *PromoCode) Redeemable(now time.Time) error {
	if !p.Active {
		return shared.PromoExpiredOrExhausted(p.Code)
	}
	if p.ExpiryDate != nil && !now.Before(*p.ExpiryDate) {
		return shared.PromoExpiredOrExhausted(p.Code)
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return shared.PromoExpiredOrExhausted(p.Code)
	}
	return nil
}

// Apply returns the discounted amount. Fixed discounts floor at zero; percentage
// discounts round half away from zero to whole minor units.
func (p *PromoCode) Apply(baseAmount int64) int64 {
	base := decimal.NewFromInt(baseAmount)

	var final decimal.Decimal
	switch p.DiscountType {
	case DiscountFixed:
		final = base.Sub(p.DiscountValue)
	case DiscountPercentage:
		factor := decimal.NewFromInt(1).Sub(p.DiscountValue.Div(hundred))
		final = base.Mul(factor).Round(0)
	default:
		final = base
	}

	if final.IsNegative() {
		return 0
	}
	return final.IntPart()
}

// Redemption is the outcome of applying a code to a base amount
type Redemption struct {
	PromoCodeID uuid.UUID `json:"promo_code_id"`
	Code        string    `json:"code"`
	BaseAmount  int64     `json:"base_amount"`
	Discount    int64     `json:"discount"`
	FinalAmount int64     `json:"final_amount"`
	UsedCount   int       `json:"used_count"`
}

// NewRedemption prices baseAmount with the given code
func NewRedemption(p *PromoCode, baseAmount int64) *Redemption {
	final := p.Apply(baseAmount)
	return &Redemption{
		PromoCodeID: p.ID,
		Code:        p.Code,
		BaseAmount:  baseAmount,
		Discount:    baseAmount - final,
		FinalAmount: final,
		UsedCount:   p.UsedCount,
	}
}
