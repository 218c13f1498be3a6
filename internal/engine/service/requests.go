package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
)

// Actor is the caller as identified by the surrounding application
type Actor struct {
	Role          access.Role
	ID            string
	CorrelationID string
}

// Compound intents

type SubmitPublicBookingRequest struct {
	ClientName     string     `json:"client_name" validate:"required,max=255"`
	ClientEmail    string     `json:"client_email" validate:"required,email"`
	ClientPhone    string     `json:"client_phone,omitempty" validate:"max=64"`
	ProjectName    string     `json:"project_name" validate:"required,max=255"`
	ProjectType    string     `json:"project_type,omitempty" validate:"max=100"`
	EventDate      *time.Time `json:"event_date,omitempty"`
	BaseCost       int64      `json:"base_cost" validate:"gte=0"`
	PromoCode      string     `json:"promo_code,omitempty" validate:"max=64"`
	DownPayment    int64      `json:"down_payment" validate:"gte=0"`
	CardID         *uuid.UUID `json:"card_id,omitempty"`
	PocketID       *uuid.UUID `json:"pocket_id,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" validate:"max=255"`
}

type BookingResult struct {
	Client      *project.Client     `json:"client"`
	Project     *project.Project    `json:"project"`
	Redemption  *promo.Redemption   `json:"redemption,omitempty"`
	DownPayment *ledger.Transaction `json:"down_payment,omitempty"`
}

type RecordClientPaymentRequest struct {
	ProjectID      uuid.UUID  `json:"project_id" validate:"required"`
	Amount         int64      `json:"amount" validate:"gt=0"`
	CardID         uuid.UUID  `json:"card_id" validate:"required"`
	PocketID       *uuid.UUID `json:"pocket_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	Date           time.Time  `json:"date,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" validate:"max=255"`
}

// PaymentSummary is what a client owes on a project
type PaymentSummary struct {
	ProjectID   uuid.UUID `json:"project_id"`
	TotalCost   int64     `json:"total_cost"`
	Paid        int64     `json:"paid"`
	Outstanding int64     `json:"outstanding"`
}

type ClientPaymentResult struct {
	Transaction *ledger.Transaction `json:"transaction"`
	Project     *project.Project    `json:"project"`
	Summary     PaymentSummary      `json:"summary"`
}

type PayFreelancerBatchRequest struct {
	TeamMemberID   uuid.UUID   `json:"team_member_id" validate:"required"`
	ProjectIDs     []uuid.UUID `json:"project_ids" validate:"required,min=1,dive,required"`
	CardID         uuid.UUID   `json:"card_id" validate:"required"`
	PocketID       *uuid.UUID  `json:"pocket_id,omitempty"`
	Signature      string      `json:"signature,omitempty"`
	IdempotencyKey string      `json:"idempotency_key,omitempty" validate:"max=255"`
}

type FreelancerPayoutResult struct {
	Record      *payout.TeamPaymentRecord `json:"record"`
	Transaction *ledger.Transaction       `json:"transaction"`
}

// Ledger intents

type ApplyTransactionRequest struct {
	Amount         int64      `json:"amount" validate:"ne=0"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	CardID         *uuid.UUID `json:"card_id,omitempty"`
	PocketID       *uuid.UUID `json:"pocket_id,omitempty"`
	Category       string     `json:"category" validate:"required,max=100"`
	Description    string     `json:"description,omitempty"`
	Date           time.Time  `json:"date,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" validate:"max=255"`
}

func (r ApplyTransactionRequest) intent() ledger.Intent {
	return ledger.Intent{
		Amount:         r.Amount,
		ProjectID:      r.ProjectID,
		CardID:         r.CardID,
		PocketID:       r.PocketID,
		Category:       r.Category,
		Description:    r.Description,
		Date:           r.Date,
		IdempotencyKey: r.IdempotencyKey,
	}
}

type SignRequest struct {
	Signature string `json:"signature" validate:"required"`
}

type TransferRequest struct {
	FromPocketID uuid.UUID `json:"from_pocket_id" validate:"required"`
	ToPocketID   uuid.UUID `json:"to_pocket_id" validate:"required"`
	Amount       int64     `json:"amount" validate:"gt=0"`
	Description  string    `json:"description,omitempty"`
}

type CreateCardRequest struct {
	Name string          `json:"name" validate:"required,max=255"`
	Type ledger.CardType `json:"type" validate:"required,oneof=CASH BANK E_WALLET"`
}

type CreatePocketRequest struct {
	Name       string            `json:"name" validate:"required,max=255"`
	Type       ledger.PocketType `json:"type" validate:"required,oneof=SAVING EXPENSE REWARD_POOL LOCK"`
	GoalAmount *int64            `json:"goal_amount,omitempty" validate:"omitempty,gt=0"`
}

// Reward and payout intents

type GrantRewardRequest struct {
	TeamMemberID uuid.UUID  `json:"team_member_id" validate:"required"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	Points       int64      `json:"points" validate:"ne=0"`
	Reason       string     `json:"reason" validate:"required"`
}

type AssignTeamPaymentRequest struct {
	TeamMemberID uuid.UUID `json:"team_member_id" validate:"required"`
	ProjectID    uuid.UUID `json:"project_id" validate:"required"`
	Amount       int64     `json:"amount" validate:"gt=0"`
}

type RecordPaymentRequest struct {
	TeamMemberID uuid.UUID   `json:"team_member_id" validate:"required"`
	ProjectIDs   []uuid.UUID `json:"project_ids" validate:"required,min=1,dive,required"`
}

// Promo intents

type CreatePromoCodeRequest struct {
	Code          string             `json:"code" validate:"required,max=64"`
	DiscountType  promo.DiscountType `json:"discount_type" validate:"required,oneof=FIXED PERCENTAGE"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	MaxUses       *int               `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	ExpiryDate    *time.Time         `json:"expiry_date,omitempty"`
}

type PromoRequest struct {
	Code       string `json:"code" validate:"required,max=64"`
	BaseAmount int64  `json:"base_amount" validate:"gte=0"`
}

// Lifecycle intents

type AdvanceStatusRequest struct {
	Status project.Status `json:"status" validate:"required,oneof=LEAD CONFIRMED IN_PROGRESS DELIVERED COMPLETED CANCELLED"`
}

type SubStatusRequest struct {
	SubStatus string `json:"sub_status" validate:"required,max=255"`
	Note      string `json:"note,omitempty"`
}

type ConfirmStageRequest struct {
	Stage project.Stage `json:"stage" validate:"required,oneof=DESIGN EDITING PRINTING DELIVERY"`
}

type AddRevisionRequest struct {
	Description  string     `json:"description" validate:"required"`
	FreelancerID *uuid.UUID `json:"freelancer_id,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

type CompleteRevisionRequest struct {
	FreelancerNotes string `json:"freelancer_notes,omitempty"`
	DriveLink       string `json:"drive_link,omitempty" validate:"omitempty,url"`
}

type SignContractRequest struct {
	Signer    project.Signer `json:"signer" validate:"required,oneof=CLIENT VENDOR"`
	Signature string         `json:"signature" validate:"required"`
}
