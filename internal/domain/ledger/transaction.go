package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Categories the engine posts on its own behalf
const (
	CategoryTransfer      = "Transfer"
	CategoryClientPayment = "Client Payment"
	CategoryDownPayment   = "Down Payment"
	CategoryFreelancerFee = "Freelancer Fee"
)

// Transaction is the atomic unit of financial truth. It is immutable once
// posted except for the write-once vendor signature.
type Transaction struct {
	ID                  uuid.UUID        `json:"id"`
	Amount              int64            `json:"amount"` // income positive, expense negative
	ProjectID           *uuid.UUID       `json:"project_id,omitempty"`
	CardID              *uuid.UUID       `json:"card_id,omitempty"`
	PocketID            *uuid.UUID       `json:"pocket_id,omitempty"`
	Category            string           `json:"category"`
	Description         string           `json:"description,omitempty"`
	Date                time.Time        `json:"date"`
	VendorSignature     shared.Signature `json:"vendor_signature,omitempty"`
	IdempotencyKey      string           `json:"idempotency_key,omitempty"`
	LinkedTransactionID *uuid.UUID       `json:"linked_transaction_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// Intent is what a caller asks the ledger to post
type Intent struct {
	Amount         int64      `json:"amount"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	CardID         *uuid.UUID `json:"card_id,omitempty"`
	PocketID       *uuid.UUID `json:"pocket_id,omitempty"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	Date           time.Time  `json:"date"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// NewTransaction validates an intent and builds the transaction to post
func NewTransaction(intent Intent) (*Transaction, error) {
	if intent.Amount == 0 {
		return nil, shared.Validation("amount must be non-zero")
	}
	category := strings.TrimSpace(intent.Category)
	if category == "" {
		return nil, shared.Validation("category is required")
	}

	now := time.Now().UTC()
	date := intent.Date
	if date.IsZero() {
		date = now
	}

	return &Transaction{
		ID:             uuid.New(),
		Amount:         intent.Amount,
		ProjectID:      intent.ProjectID,
		CardID:         intent.CardID,
		PocketID:       intent.PocketID,
		Category:       category,
		Description:    strings.TrimSpace(intent.Description),
		Date:           date,
		IdempotencyKey: strings.TrimSpace(intent.IdempotencyKey),
		CreatedAt:      now,
	}, nil
}

func (t *Transaction) IsIncome() bool {
	return t.Amount > 0
}

// TransferRequest moves funds from one pocket to another
type TransferRequest struct {
	FromPocketID uuid.UUID `json:"from_pocket_id"`
	ToPocketID   uuid.UUID `json:"to_pocket_id"`
	Amount       int64     `json:"amount"`
	Description  string    `json:"description,omitempty"`
}

// Transfer is the debit and credit legs of a pocket transfer, linked to each other
type Transfer struct {
	Debit  *Transaction `json:"debit"`
	Credit *Transaction `json:"credit"`
}

// NewTransfer builds both legs of a transfer
func NewTransfer(req TransferRequest) (*Transfer, error) {
	if req.Amount <= 0 {
		return nil, shared.Validation("transfer amount must be positive")
	}
	if req.FromPocketID == req.ToPocketID {
		return nil, shared.Validation("cannot transfer a pocket into itself")
	}

	from, to := req.FromPocketID, req.ToPocketID
	debit, err := NewTransaction(Intent{
		Amount:      -req.Amount,
		PocketID:    &from,
		Category:    CategoryTransfer,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	credit, err := NewTransaction(Intent{
		Amount:      req.Amount,
		PocketID:    &to,
		Category:    CategoryTransfer,
		Description: req.Description,
		Date:        debit.Date,
	})
	if err != nil {
		return nil, err
	}

	debitID, creditID := debit.ID, credit.ID
	debit.LinkedTransactionID = &creditID
	credit.LinkedTransactionID = &debitID

	return &Transfer{Debit: debit, Credit: credit}, nil
}
