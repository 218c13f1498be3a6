package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type promoRepository struct {
	tx *memTx
}

func (r *promoRepository) Create(ctx context.Context, code *promo.PromoCode) error {
	if _, ok := get(r.tx, promoRows, code.ID); ok {
		return shared.Duplicate("promo_code", code.ID.String())
	}
	if existing, _ := r.find(code.Code); existing != nil {
		return shared.Duplicate("promo_code", code.Code)
	}
	return stage(r.tx, promoRows, code.ID, shallow(code))
}

func (r *promoRepository) find(code string) (*promo.PromoCode, bool) {
	code = promo.NormalizeCode(code)
	for _, p := range all(r.tx, promoRows) {
		if p.Code == code {
			return p, true
		}
	}
	return nil, false
}

func (r *promoRepository) GetByID(ctx context.Context, id uuid.UUID) (*promo.PromoCode, error) {
	p, ok := get(r.tx, promoRows, id)
	if !ok {
		return nil, shared.NotFound("promo_code", id.String())
	}
	return shallow(p), nil
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	p, ok := r.find(code)
	if !ok {
		return nil, shared.NotFound("promo_code", promo.NormalizeCode(code))
	}
	return shallow(p), nil
}

func (r *promoRepository) List(ctx context.Context) ([]*promo.PromoCode, error) {
	rows := all(r.tx, promoRows)
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*promo.PromoCode, 0, len(rows))
	for _, p := range rows {
		out = append(out, shallow(p))
	}
	return out, nil
}

// Redeem holds the code's row lock across the check and the increment
func (r *promoRepository) Redeem(ctx context.Context, code string, now time.Time) (*promo.PromoCode, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	found, ok := r.find(code)
	if !ok {
		return nil, shared.NotFound("promo_code", promo.NormalizeCode(code))
	}
	if err := r.tx.lock(ctx, "promo_code:"+found.ID.String()); err != nil {
		return nil, err
	}

	current, _ := get(r.tx, promoRows, found.ID)
	if err := current.Redeemable(now); err != nil {
		return nil, err
	}

	redeemed := shallow(current)
	redeemed.UsedCount++
	if err := stage(r.tx, promoRows, redeemed.ID, redeemed); err != nil {
		return nil, err
	}
	return shallow(redeemed), nil
}

func (r *promoRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "promo_code:"+id.String()); err != nil {
		return err
	}
	p, ok := get(r.tx, promoRows, id)
	if !ok {
		return shared.NotFound("promo_code", id.String())
	}
	updated := shallow(p)
	updated.Active = active
	return stage(r.tx, promoRows, id, updated)
}
