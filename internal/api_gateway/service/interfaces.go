package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// FinanceService covers cards, pockets, transactions and promo codes
type FinanceService interface {
	CreateCard(ctx context.Context, actor engine.Actor, req engine.CreateCardRequest) (*ledger.Card, error)
	ListCards(ctx context.Context, actor engine.Actor) ([]*ledger.Card, error)
	CreatePocket(ctx context.Context, actor engine.Actor, req engine.CreatePocketRequest) (*ledger.Pocket, error)
	ListPockets(ctx context.Context, actor engine.Actor) ([]*ledger.Pocket, error)
	TransferBetweenPockets(ctx context.Context, actor engine.Actor, req engine.TransferRequest) (*ledger.Transfer, error)

	ApplyTransaction(ctx context.Context, actor engine.Actor, req engine.ApplyTransactionRequest) (*ledger.Transaction, error)
	SignTransaction(ctx context.Context, actor engine.Actor, id uuid.UUID, req engine.SignRequest) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, actor engine.Actor, filter ledger.TransactionFilter) ([]*ledger.Transaction, error)

	CreatePromoCode(ctx context.Context, actor engine.Actor, req engine.CreatePromoCodeRequest) (*promo.PromoCode, error)
	SetPromoActive(ctx context.Context, actor engine.Actor, id uuid.UUID, active bool) (*promo.PromoCode, error)
	ListPromoCodes(ctx context.Context, actor engine.Actor) ([]*promo.PromoCode, error)
	QuotePromo(ctx context.Context, actor engine.Actor, req engine.PromoRequest) (*promo.Redemption, error)
	RedeemPromo(ctx context.Context, actor engine.Actor, req engine.PromoRequest) (*promo.Redemption, error)
}

// ProjectService covers bookings, client payments and the project lifecycle
type ProjectService interface {
	SubmitPublicBooking(ctx context.Context, actor engine.Actor, req engine.SubmitPublicBookingRequest) (*engine.BookingResult, error)
	RecordClientPayment(ctx context.Context, actor engine.Actor, req engine.RecordClientPaymentRequest) (*engine.ClientPaymentResult, error)
	ProjectPaymentSummary(ctx context.Context, actor engine.Actor, projectID uuid.UUID) (*engine.PaymentSummary, error)

	GetProject(ctx context.Context, actor engine.Actor, id uuid.UUID) (*project.Project, error)
	ListProjects(ctx context.Context, actor engine.Actor) ([]*project.Project, error)
	ListClients(ctx context.Context, actor engine.Actor) ([]*project.Client, error)

	AdvanceStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.AdvanceStatusRequest) (*project.Project, error)
	SetActiveSubStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SubStatusRequest) (*project.Project, error)
	ConfirmSubStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SubStatusRequest) (*project.Project, error)
	ConfirmStage(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.ConfirmStageRequest) (*project.Project, error)
	AddRevision(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.AddRevisionRequest) (*project.Revision, error)
	CompleteRevision(ctx context.Context, actor engine.Actor, projectID, revisionID uuid.UUID, req engine.CompleteRevisionRequest) (*project.Revision, error)

	CreateContract(ctx context.Context, actor engine.Actor, projectID uuid.UUID) (*project.Contract, error)
	ListContracts(ctx context.Context, actor engine.Actor, projectID uuid.UUID) ([]*project.Contract, error)
	SignContract(ctx context.Context, actor engine.Actor, contractID uuid.UUID, req engine.SignContractRequest) (*project.Contract, error)
	SignInvoice(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SignRequest) (*project.Project, error)
}

// TeamService covers freelancer payments and reward points
type TeamService interface {
	AssignTeamPayment(ctx context.Context, actor engine.Actor, req engine.AssignTeamPaymentRequest) (*payout.TeamProjectPayment, error)
	ListTeamPayments(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*payout.TeamProjectPayment, error)
	RecordPayment(ctx context.Context, actor engine.Actor, req engine.RecordPaymentRequest) (*payout.TeamPaymentRecord, error)
	ListPaymentRecords(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*payout.TeamPaymentRecord, error)
	SignPaymentRecord(ctx context.Context, actor engine.Actor, recordID uuid.UUID, req engine.SignRequest) (*payout.TeamPaymentRecord, error)
	PayFreelancerBatch(ctx context.Context, actor engine.Actor, req engine.PayFreelancerBatchRequest) (*engine.FreelancerPayoutResult, error)

	GrantReward(ctx context.Context, actor engine.Actor, req engine.GrantRewardRequest) (*reward.Entry, error)
	ListRewards(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*reward.Entry, error)
	RewardBalance(ctx context.Context, actor engine.Actor, memberID uuid.UUID) (int64, error)
}

// NotificationService covers the vendor's in-app notifications
type NotificationService interface {
	ListNotifications(ctx context.Context, actor engine.Actor, limit, offset int) ([]*notification.Notification, error)
	UnreadCount(ctx context.Context, actor engine.Actor) (int64, error)
	MarkNotificationRead(ctx context.Context, actor engine.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor engine.Actor) (int64, error)
}

// IntentQueue hands a compound intent to the intent processor instead of running it inline
type IntentQueue interface {
	// Enqueue publishes the intent and returns the id it was queued under
	Enqueue(ctx context.Context, actor engine.Actor, intentType shared.IntentType, payload any) (uuid.UUID, error)
}
