package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type payoutRepository struct {
	tx *memTx
}

func (r *payoutRepository) CreatePayment(ctx context.Context, payment *payout.TeamProjectPayment) error {
	if _, ok := get(r.tx, paymentRows, payment.ID); ok {
		return shared.Duplicate("team_project_payment", payment.ID.String())
	}
	return stage(r.tx, paymentRows, payment.ID, shallow(payment))
}

func (r *payoutRepository) ListPayments(ctx context.Context, memberID uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	var rows []*payout.TeamProjectPayment
	for _, p := range all(r.tx, paymentRows) {
		if p.TeamMemberID == memberID {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	return copyPayments(rows), nil
}

func (r *payoutRepository) LockPayments(ctx context.Context, memberID uuid.UUID, projectIDs []uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	var ids []uuid.UUID
	for _, p := range all(r.tx, paymentRows) {
		if p.TeamMemberID == memberID && slices.Contains(projectIDs, p.ProjectID) {
			ids = append(ids, p.ID)
		}
	}
	sortIDs(ids)

	rows := make([]*payout.TeamProjectPayment, 0, len(ids))
	for _, id := range ids {
		if err := r.tx.lock(ctx, paymentKey(id)); err != nil {
			return nil, err
		}
		// re-read under the lock; a concurrent batch may have paid it meanwhile
		p, ok := get(r.tx, paymentRows, id)
		if !ok {
			return nil, shared.NotFound("team_project_payment", id.String())
		}
		rows = append(rows, p)
	}
	return copyPayments(rows), nil
}

func (r *payoutRepository) MarkPaid(ctx context.Context, paymentIDs []uuid.UUID, recordID uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}

	now := time.Now().UTC()
	updated := make([]*payout.TeamProjectPayment, 0, len(paymentIDs))
	for _, id := range paymentIDs {
		if err := r.tx.lock(ctx, paymentKey(id)); err != nil {
			return err
		}
		p, ok := get(r.tx, paymentRows, id)
		if !ok || p.Status != payout.PaymentUnpaid {
			return shared.AlreadyPaid("team_project_payment", id.String())
		}

		paid := shallow(p)
		paid.Status = payout.PaymentPaid
		paid.RecordID = &recordID
		paid.UpdatedAt = now
		updated = append(updated, paid)
	}

	for _, p := range updated {
		if err := stage(r.tx, paymentRows, p.ID, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *payoutRepository) CreateRecord(ctx context.Context, record *payout.TeamPaymentRecord) error {
	if _, ok := get(r.tx, recordRows, record.ID); ok {
		return shared.Duplicate("team_payment_record", record.ID.String())
	}
	return stage(r.tx, recordRows, record.ID, cloneRecord(record))
}

func (r *payoutRepository) GetRecord(ctx context.Context, id uuid.UUID) (*payout.TeamPaymentRecord, error) {
	rec, ok := get(r.tx, recordRows, id)
	if !ok {
		return nil, shared.NotFound("team_payment_record", id.String())
	}
	return cloneRecord(rec), nil
}

func (r *payoutRepository) ListRecords(ctx context.Context, memberID uuid.UUID) ([]*payout.TeamPaymentRecord, error) {
	var rows []*payout.TeamPaymentRecord
	for _, rec := range all(r.tx, recordRows) {
		if rec.TeamMemberID == memberID {
			rows = append(rows, rec)
		}
	}
	// newest first
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[j].CreatedAt, rows[i].CreatedAt, rows[j].ID, rows[i].ID)
	})
	out := make([]*payout.TeamPaymentRecord, 0, len(rows))
	for _, rec := range rows {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func (r *payoutRepository) SetRecordSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "record:"+id.String()); err != nil {
		return err
	}
	stored, ok := get(r.tx, recordRows, id)
	if !ok {
		return shared.NotFound("team_payment_record", id.String())
	}

	updated := cloneRecord(stored)
	if err := updated.Sign(string(signature)); err != nil {
		return err
	}
	return stage(r.tx, recordRows, id, updated)
}

func paymentKey(id uuid.UUID) string {
	return "payment:" + id.String()
}

func copyPayments(rows []*payout.TeamProjectPayment) []*payout.TeamProjectPayment {
	out := make([]*payout.TeamProjectPayment, 0, len(rows))
	for _, p := range rows {
		out = append(out, shallow(p))
	}
	return out
}
