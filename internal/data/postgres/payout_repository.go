package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const paymentColumns = `id, team_member_id, project_id, amount, status, record_id, created_at, updated_at`

const recordColumns = `id, record_number, team_member_id, project_payment_ids, total, vendor_signature, created_at`

const (
	insertPaymentQuery = `
		INSERT INTO team_project_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	listPaymentsQuery = `
		SELECT ` + paymentColumns + `
		FROM team_project_payments
		WHERE team_member_id = $1
		ORDER BY created_at, id
	`
	lockPaymentsQuery = `
		SELECT ` + paymentColumns + `
		FROM team_project_payments
		WHERE team_member_id = $1 AND project_id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	markPaidQuery = `
		UPDATE team_project_payments
		SET status = 'PAID', record_id = $1, updated_at = NOW()
		WHERE id = ANY($2) AND status = 'UNPAID'
	`
	insertRecordQuery = `
		INSERT INTO team_payment_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	selectRecordQuery = `
		SELECT ` + recordColumns + `
		FROM team_payment_records
		WHERE id = $1
	`
	listRecordsQuery = `
		SELECT ` + recordColumns + `
		FROM team_payment_records
		WHERE team_member_id = $1
		ORDER BY created_at DESC, id
	`
	signRecordQuery = `
		UPDATE team_payment_records SET vendor_signature = $1 WHERE id = $2 AND vendor_signature IS NULL
	`
)

// PayoutRepository implements payout.Repository for PostgreSQL
type PayoutRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPayoutRepository(logger *slog.Logger, querier persistence.Querier) *PayoutRepository {
	return &PayoutRepository{querier: querier, logger: logger}
}

func (r *PayoutRepository) WithTx(tx pgx.Tx) *PayoutRepository {
	return &PayoutRepository{querier: tx, logger: r.logger}
}

func scanPayment(row pgx.Row) (*payout.TeamProjectPayment, error) {
	var p payout.TeamProjectPayment
	err := row.Scan(
		&p.ID,
		&p.TeamMemberID,
		&p.ProjectID,
		&p.Amount,
		&p.Status,
		&p.RecordID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanRecord(row pgx.Row) (*payout.TeamPaymentRecord, error) {
	var (
		rec       payout.TeamPaymentRecord
		signature *string
	)
	err := row.Scan(
		&rec.ID,
		&rec.RecordNumber,
		&rec.TeamMemberID,
		&rec.ProjectPaymentIDs,
		&rec.Total,
		&signature,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.VendorSignature = shared.SignatureFromPtr(signature)
	return &rec, nil
}

func (r *PayoutRepository) CreatePayment(ctx context.Context, p *payout.TeamProjectPayment) error {
	_, err := r.querier.Exec(ctx, insertPaymentQuery,
		p.ID, p.TeamMemberID, p.ProjectID, p.Amount, p.Status, p.RecordID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return dbError(r.logger, err, "create team payment", "team_project_payment", p.ID.String())
	}
	return nil
}

func (r *PayoutRepository) ListPayments(ctx context.Context, memberID uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	return r.queryPayments(ctx, "list team payments", listPaymentsQuery, memberID)
}

// LockPayments takes row locks in id order so concurrent batches for one member queue up
func (r *PayoutRepository) LockPayments(ctx context.Context, memberID uuid.UUID, projectIDs []uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	return r.queryPayments(ctx, "lock team payments", lockPaymentsQuery, memberID, projectIDs)
}

func (r *PayoutRepository) queryPayments(ctx context.Context, op, query string, args ...any) ([]*payout.TeamProjectPayment, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(r.logger, err, op, "team_project_payment", "")
	}
	defer rows.Close()

	payments := []*payout.TeamProjectPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan team payment", "team_project_payment", "")
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate team payments", "team_project_payment", "")
	}
	return payments, nil
}

func (r *PayoutRepository) MarkPaid(ctx context.Context, paymentIDs []uuid.UUID, recordID uuid.UUID) error {
	result, err := r.querier.Exec(ctx, markPaidQuery, recordID, paymentIDs)
	if err != nil {
		return dbError(r.logger, err, "mark team payments paid", "team_project_payment", recordID.String())
	}
	if affected := result.RowsAffected(); affected != int64(len(paymentIDs)) {
		return shared.AlreadyPaid("team_project_payment",
			fmt.Sprintf("%d of %d already paid", int64(len(paymentIDs))-affected, len(paymentIDs)))
	}
	return nil
}

func (r *PayoutRepository) CreateRecord(ctx context.Context, rec *payout.TeamPaymentRecord) error {
	_, err := r.querier.Exec(ctx, insertRecordQuery,
		rec.ID,
		rec.RecordNumber,
		rec.TeamMemberID,
		rec.ProjectPaymentIDs,
		rec.Total,
		rec.VendorSignature.Ptr(),
		rec.CreatedAt,
	)
	if err != nil {
		return dbError(r.logger, err, "create payment record", "team_payment_record", rec.RecordNumber)
	}
	return nil
}

func (r *PayoutRepository) GetRecord(ctx context.Context, id uuid.UUID) (*payout.TeamPaymentRecord, error) {
	rec, err := scanRecord(r.querier.QueryRow(ctx, selectRecordQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("team_payment_record", id.String())
		}
		return nil, dbError(r.logger, err, "get payment record", "team_payment_record", id.String())
	}
	return rec, nil
}

func (r *PayoutRepository) ListRecords(ctx context.Context, memberID uuid.UUID) ([]*payout.TeamPaymentRecord, error) {
	rows, err := r.querier.Query(ctx, listRecordsQuery, memberID)
	if err != nil {
		return nil, dbError(r.logger, err, "list payment records", "team_payment_record", memberID.String())
	}
	defer rows.Close()

	records := []*payout.TeamPaymentRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan payment record", "team_payment_record", "")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate payment records", "team_payment_record", "")
	}
	return records, nil
}

func (r *PayoutRepository) SetRecordSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error {
	result, err := r.querier.Exec(ctx, signRecordQuery, string(signature), id)
	if err != nil {
		return dbError(r.logger, err, "sign payment record", "team_payment_record", id.String())
	}
	if result.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetRecord(ctx, id); err != nil {
		return err
	}
	return shared.AlreadySigned("team_payment_record", id.String())
}
