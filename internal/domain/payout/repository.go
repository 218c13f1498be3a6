package payout

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Repository defines team payment persistence operations
type Repository interface {
	CreatePayment(ctx context.Context, payment *TeamProjectPayment) error
	ListPayments(ctx context.Context, memberID uuid.UUID) ([]*TeamProjectPayment, error)

	// LockPayments locks every payment of the member on the given projects, in id order
	LockPayments(ctx context.Context, memberID uuid.UUID, projectIDs []uuid.UUID) ([]*TeamProjectPayment, error)

	// MarkPaid flips the given unpaid payments to paid; any row not unpaid fails the call
	MarkPaid(ctx context.Context, paymentIDs []uuid.UUID, recordID uuid.UUID) error

	CreateRecord(ctx context.Context, record *TeamPaymentRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*TeamPaymentRecord, error)
	ListRecords(ctx context.Context, memberID uuid.UUID) ([]*TeamPaymentRecord, error)

	// SetRecordSignature writes the signature only if none is stored yet
	SetRecordSignature(ctx context.Context, id uuid.UUID, signature shared.Signature) error
}
