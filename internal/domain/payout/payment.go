package payout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// PaymentStatus defines whether a freelancer has been paid for a project
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// TeamProjectPayment is what a team member is owed for one project
type TeamProjectPayment struct {
	ID           uuid.UUID     `json:"id"`
	TeamMemberID uuid.UUID     `json:"team_member_id"`
	ProjectID    uuid.UUID     `json:"project_id"`
	Amount       int64         `json:"amount"`
	Status       PaymentStatus `json:"status"`
	RecordID     *uuid.UUID    `json:"record_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewTeamProjectPayment(memberID, projectID uuid.UUID, amount int64) (*TeamProjectPayment, error) {
	if memberID == uuid.Nil || projectID == uuid.Nil {
		return nil, shared.Validation("team member and project are required")
	}
	if amount <= 0 {
		return nil, shared.Validation("payment amount must be positive")
	}

	now := time.Now().UTC()
	return &TeamProjectPayment{
		ID:           uuid.New(),
		TeamMemberID: memberID,
		ProjectID:    projectID,
		Amount:       amount,
		Status:       PaymentUnpaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TeamPaymentRecord aggregates paid project payments into one payout batch
type TeamPaymentRecord struct {
	ID                uuid.UUID        `json:"id"`
	RecordNumber      string           `json:"record_number"`
	TeamMemberID      uuid.UUID        `json:"team_member_id"`
	ProjectPaymentIDs []uuid.UUID      `json:"project_payment_ids"`
	Total             int64            `json:"total"`
	VendorSignature   shared.Signature `json:"vendor_signature,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewRecord builds a record from the locked payments and marks each of them paid.
// Nothing is modified unless every payment is still unpaid.
func NewRecord(memberID uuid.UUID, payments []*TeamProjectPayment) (*TeamPaymentRecord, error) {
	if len(payments) == 0 {
		return nil, shared.NothingToPay(memberID.String())
	}
	for _, p := range payments {
		if p.TeamMemberID != memberID {
			return nil, shared.Validation("payment %s belongs to another team member", p.ID)
		}
		if p.Status != PaymentUnpaid {
			return nil, shared.AlreadyPaid("team_project_payment", p.ID.String())
		}
	}

	now := time.Now().UTC()
	record := &TeamPaymentRecord{
		ID:                uuid.New(),
		TeamMemberID:      memberID,
		ProjectPaymentIDs: make([]uuid.UUID, 0, len(payments)),
		CreatedAt:         now,
	}
	record.RecordNumber = fmt.Sprintf("PAY-%s-%s", now.Format("20060102"), record.ID.String()[:8])

	for _, p := range payments {
		record.Total += p.Amount
		record.ProjectPaymentIDs = append(record.ProjectPaymentIDs, p.ID)

		recordID := record.ID
		p.Status = PaymentPaid
		p.RecordID = &recordID
		p.UpdatedAt = now
	}

	return record, nil
}

// Sign captures the write-once vendor signature
func (r *TeamPaymentRecord) Sign(signature string) error {
	return shared.Sign(&r.VendorSignature, signature, "team_payment_record", r.ID.String())
}
