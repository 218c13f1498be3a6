package promo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

func intPtr(v int) *int { return &v }

func TestNewPromoCode(t *testing.T) {
	t.Run("NormalizesCode", func(t *testing.T) {
		p, err := NewPromoCode(" hemat10 ", DiscountPercentage, decimal.NewFromInt(10), intPtr(1), nil)
		require.NoError(t, err)
		assert.Equal(t, "HEMAT10", p.Code)
		assert.True(t, p.Active)
		assert.Equal(t, 0, p.UsedCount)
	})

	tests := []struct {
		name  string
		typ   DiscountType
		value decimal.Decimal
		max   *int
	}{
		{name: "percentage over 100", typ: DiscountPercentage, value: decimal.NewFromInt(101)},
		{name: "percentage zero", typ: DiscountPercentage, value: decimal.Zero},
		{name: "fixed fraction", typ: DiscountFixed, value: decimal.RequireFromString("10.5")},
		{name: "fixed negative", typ: DiscountFixed, value: decimal.NewFromInt(-5)},
		{name: "unknown type", typ: DiscountType("BOGO"), value: decimal.NewFromInt(1)},
		{name: "zero max uses", typ: DiscountFixed, value: decimal.NewFromInt(1), max: intPtr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPromoCode("X", tt.typ, tt.value, tt.max, nil)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestPromoCode_Apply(t *testing.T) {
	tests := []struct {
		name  string
		typ   DiscountType
		value string
		base  int64
		want  int64
	}{
		{name: "ten percent", typ: DiscountPercentage, value: "10", base: 100000, want: 90000},
		{name: "fractional percent rounds", typ: DiscountPercentage, value: "12.5", base: 999, want: 874},
		{name: "full percent", typ: DiscountPercentage, value: "100", base: 5000, want: 0},
		{name: "fixed", typ: DiscountFixed, value: "25000", base: 100000, want: 75000},
		{name: "fixed floors at zero", typ: DiscountFixed, value: "250000", base: 100000, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PromoCode{DiscountType: tt.typ, DiscountValue: decimal.RequireFromString(tt.value)}
			assert.Equal(t, tt.want, p.Apply(tt.base))
		})
	}
}

func TestPromoCode_Redeemable(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		code    PromoCode
		wantErr bool
	}{
		{name: "active unlimited", code: PromoCode{Active: true}},
		{name: "inactive", code: PromoCode{Active: false}, wantErr: true},
		{name: "expired", code: PromoCode{Active: true, ExpiryDate: &past}, wantErr: true},
		{name: "expires exactly now", code: PromoCode{Active: true, ExpiryDate: &now}, wantErr: true},
		{name: "not yet expired", code: PromoCode{Active: true, ExpiryDate: &future}},
		{name: "exhausted", code: PromoCode{Active: true, MaxUses: intPtr(1), UsedCount: 1}, wantErr: true},
		{name: "one use left", code: PromoCode{Active: true, MaxUses: intPtr(2), UsedCount: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Redeemable(now)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrPromoExpiredOrExhausted)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRedemption(t *testing.T) {
	p := &PromoCode{Code: "HEMAT10", DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(10), UsedCount: 1}
	r := NewRedemption(p, 100000)

	assert.Equal(t, int64(90000), r.FinalAmount)
	assert.Equal(t, int64(10000), r.Discount)
	assert.Equal(t, 1, r.UsedCount)
	assert.Equal(t, "HEMAT10", r.Code)
}
