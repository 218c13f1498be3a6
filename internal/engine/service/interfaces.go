package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/store"
)

// LedgerManager posts transactions and keeps card and pocket balances in step with them.
// Every method runs inside the caller's store transaction.
type LedgerManager interface {
	CreateCard(ctx context.Context, tx store.Tx, name string, cardType ledger.CardType) (*ledger.Card, error)
	CreatePocket(ctx context.Context, tx store.Tx, name string, pocketType ledger.PocketType, goalAmount *int64) (*ledger.Pocket, error)

	// EnsureUnused fails with Duplicate when a transaction already carries key
	EnsureUnused(ctx context.Context, tx store.Tx, key string) error
	ApplyTransaction(ctx context.Context, tx store.Tx, intent ledger.Intent) (*ledger.Transaction, error)
	SignTransaction(ctx context.Context, tx store.Tx, id uuid.UUID, signature string) (*ledger.Transaction, error)
	TransferBetweenPockets(ctx context.Context, tx store.Tx, req ledger.TransferRequest) (*ledger.Transfer, error)
	ProjectIncome(ctx context.Context, tx store.Tx, projectID uuid.UUID) (int64, error)
}

// PromoManager prices amounts with promo codes
type PromoManager interface {
	CreatePromoCode(ctx context.Context, tx store.Tx, code string, discountType promo.DiscountType, value decimal.Decimal, maxUses *int, expiry *time.Time) (*promo.PromoCode, error)
	SetActive(ctx context.Context, tx store.Tx, id uuid.UUID, active bool) (*promo.PromoCode, error)

	// Quote validates code against now without consuming a use
	Quote(ctx context.Context, tx store.Tx, code string, baseAmount int64, now time.Time) (*promo.Redemption, error)
	Redeem(ctx context.Context, tx store.Tx, code string, baseAmount int64, now time.Time) (*promo.Redemption, error)
}

// PayoutManager owns freelancer payments and the reward ledger
type PayoutManager interface {
	GrantReward(ctx context.Context, tx store.Tx, grant reward.Grant) (*reward.Entry, error)
	AssignTeamPayment(ctx context.Context, tx store.Tx, memberID, projectID uuid.UUID, amount int64) (*payout.TeamProjectPayment, error)
	RecordPayment(ctx context.Context, tx store.Tx, memberID uuid.UUID, projectIDs []uuid.UUID) (*payout.TeamPaymentRecord, error)
	SignPaymentRecord(ctx context.Context, tx store.Tx, recordID uuid.UUID, signature string) (*payout.TeamPaymentRecord, error)
}

// LifecycleManager moves projects through the pipeline and captures client sign-offs
type LifecycleManager interface {
	UpsertClient(ctx context.Context, tx store.Tx, name, email, phone string) (*project.Client, error)
	CreateProject(ctx context.Context, tx store.Tx, p *project.Project) error
	AdvanceStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, to project.Status) (*project.Project, error)
	SetActiveSubStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, subStatus string) (*project.Project, error)
	ConfirmSubStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, subStatus, note string) (*project.Project, bool, error)
	ConfirmStage(ctx context.Context, tx store.Tx, projectID uuid.UUID, stage project.Stage) (*project.Project, bool, error)
	AddRevision(ctx context.Context, tx store.Tx, projectID uuid.UUID, description string, freelancerID *uuid.UUID, deadline *time.Time) (*project.Revision, error)
	CompleteRevision(ctx context.Context, tx store.Tx, projectID, revisionID uuid.UUID, update project.RevisionUpdate) (*project.Revision, error)
	CreateContract(ctx context.Context, tx store.Tx, projectID uuid.UUID) (*project.Contract, error)
	SignContract(ctx context.Context, tx store.Tx, contractID uuid.UUID, signer project.Signer, signature string) (*project.Contract, error)
	SignInvoice(ctx context.Context, tx store.Tx, projectID uuid.UUID, signature string) (*project.Project, error)
}

// Notifier hands an event to the notification sink. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event notification.Event)
}

// IntentProcessor executes an intent that arrived through the queue
type IntentProcessor interface {
	Process(ctx context.Context, request *shared.IntentRequest) error
}

// IntentFacade is the part of the facade reachable through the intent queue
type IntentFacade interface {
	SubmitPublicBooking(ctx context.Context, actor Actor, req SubmitPublicBookingRequest) (*BookingResult, error)
	RecordClientPayment(ctx context.Context, actor Actor, req RecordClientPaymentRequest) (*ClientPaymentResult, error)
	PayFreelancerBatch(ctx context.Context, actor Actor, req PayFreelancerBatchRequest) (*FreelancerPayoutResult, error)
}
