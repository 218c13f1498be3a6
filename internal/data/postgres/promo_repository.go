package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const promoColumns = `id, code, discount_type, discount_value, max_uses, used_count, expiry_date, active, created_at`

const (
	insertPromoQuery = `
		INSERT INTO promo_codes (id, code, discount_type, discount_value, max_uses, used_count, expiry_date, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	selectPromoQuery = `
		SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE id = $1
	`
	selectPromoByCodeQuery = `
		SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE code = $1
	`
	listPromosQuery = `
		SELECT ` + promoColumns + `
		FROM promo_codes
		ORDER BY created_at, id
	`
	// The check and the increment are one statement, so concurrent redemptions
	// serialize on the row and can never push used_count past max_uses.
	redeemPromoQuery = `
		UPDATE promo_codes
		SET used_count = used_count + 1
		WHERE code = $1
		  AND active
		  AND (max_uses IS NULL OR used_count < max_uses)
		  AND (expiry_date IS NULL OR expiry_date > $2)
		RETURNING ` + promoColumns + `
	`
	setPromoActiveQuery = `
		UPDATE promo_codes SET active = $1 WHERE id = $2
	`
)

// PromoRepository implements promo.Repository for PostgreSQL
type PromoRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPromoRepository(logger *slog.Logger, querier persistence.Querier) *PromoRepository {
	return &PromoRepository{querier: querier, logger: logger}
}

func (r *PromoRepository) WithTx(tx pgx.Tx) *PromoRepository {
	return &PromoRepository{querier: tx, logger: r.logger}
}

func scanPromo(row pgx.Row) (*promo.PromoCode, error) {
	var p promo.PromoCode
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.DiscountType,
		&p.DiscountValue,
		&p.MaxUses,
		&p.UsedCount,
		&p.ExpiryDate,
		&p.Active,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepository) Create(ctx context.Context, code *promo.PromoCode) error {
	_, err := r.querier.Exec(ctx, insertPromoQuery,
		code.ID,
		code.Code,
		code.DiscountType,
		code.DiscountValue,
		code.MaxUses,
		code.UsedCount,
		code.ExpiryDate,
		code.Active,
		code.CreatedAt,
	)
	if err != nil {
		return dbError(r.logger, err, "create promo code", "promo_code", code.Code)
	}
	return nil
}

func (r *PromoRepository) GetByID(ctx context.Context, id uuid.UUID) (*promo.PromoCode, error) {
	p, err := scanPromo(r.querier.QueryRow(ctx, selectPromoQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("promo_code", id.String())
		}
		return nil, dbError(r.logger, err, "get promo code", "promo_code", id.String())
	}
	return p, nil
}

func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	code = promo.NormalizeCode(code)
	p, err := scanPromo(r.querier.QueryRow(ctx, selectPromoByCodeQuery, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("promo_code", code)
		}
		return nil, dbError(r.logger, err, "get promo code by code", "promo_code", code)
	}
	return p, nil
}

func (r *PromoRepository) List(ctx context.Context) ([]*promo.PromoCode, error) {
	rows, err := r.querier.Query(ctx, listPromosQuery)
	if err != nil {
		return nil, dbError(r.logger, err, "list promo codes", "promo_code", "")
	}
	defer rows.Close()

	codes := []*promo.PromoCode{}
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan promo code", "promo_code", "")
		}
		codes = append(codes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate promo codes", "promo_code", "")
	}
	return codes, nil
}

// Redeem consumes one use of the code. When the conditional update matches
// nothing, a plain read tells an unknown code apart from a spent one.
func (r *PromoRepository) Redeem(ctx context.Context, code string, now time.Time) (*promo.PromoCode, error) {
	code = promo.NormalizeCode(code)
	p, err := scanPromo(r.querier.QueryRow(ctx, redeemPromoQuery, code, now))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, dbError(r.logger, err, "redeem promo code", "promo_code", code)
	}

	if _, err := r.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return nil, shared.PromoExpiredOrExhausted(code)
}

func (r *PromoRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.querier.Exec(ctx, setPromoActiveQuery, active, id)
	if err != nil {
		return dbError(r.logger, err, "set promo code active", "promo_code", id.String())
	}
	if result.RowsAffected() == 0 {
		return shared.NotFound("promo_code", id.String())
	}
	return nil
}
