package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// MockEngine stands in for the facade behind every handler
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) CreateCard(ctx context.Context, actor engine.Actor, req engine.CreateCardRequest) (*ledger.Card, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Card), args.Error(1)
}

func (m *MockEngine) ListCards(ctx context.Context, actor engine.Actor) ([]*ledger.Card, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Card), args.Error(1)
}

func (m *MockEngine) CreatePocket(ctx context.Context, actor engine.Actor, req engine.CreatePocketRequest) (*ledger.Pocket, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Pocket), args.Error(1)
}

func (m *MockEngine) ListPockets(ctx context.Context, actor engine.Actor) ([]*ledger.Pocket, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Pocket), args.Error(1)
}

func (m *MockEngine) TransferBetweenPockets(ctx context.Context, actor engine.Actor, req engine.TransferRequest) (*ledger.Transfer, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transfer), args.Error(1)
}

func (m *MockEngine) ApplyTransaction(ctx context.Context, actor engine.Actor, req engine.ApplyTransactionRequest) (*ledger.Transaction, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockEngine) SignTransaction(ctx context.Context, actor engine.Actor, id uuid.UUID, req engine.SignRequest) (*ledger.Transaction, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockEngine) ListTransactions(ctx context.Context, actor engine.Actor, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockEngine) CreatePromoCode(ctx context.Context, actor engine.Actor, req engine.CreatePromoCodeRequest) (*promo.PromoCode, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.PromoCode), args.Error(1)
}

func (m *MockEngine) SetPromoActive(ctx context.Context, actor engine.Actor, id uuid.UUID, active bool) (*promo.PromoCode, error) {
	args := m.Called(ctx, actor, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.PromoCode), args.Error(1)
}

func (m *MockEngine) ListPromoCodes(ctx context.Context, actor engine.Actor) ([]*promo.PromoCode, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*promo.PromoCode), args.Error(1)
}

func (m *MockEngine) QuotePromo(ctx context.Context, actor engine.Actor, req engine.PromoRequest) (*promo.Redemption, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.Redemption), args.Error(1)
}

func (m *MockEngine) RedeemPromo(ctx context.Context, actor engine.Actor, req engine.PromoRequest) (*promo.Redemption, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.Redemption), args.Error(1)
}

func (m *MockEngine) SubmitPublicBooking(ctx context.Context, actor engine.Actor, req engine.SubmitPublicBookingRequest) (*engine.BookingResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.BookingResult), args.Error(1)
}

func (m *MockEngine) RecordClientPayment(ctx context.Context, actor engine.Actor, req engine.RecordClientPaymentRequest) (*engine.ClientPaymentResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ClientPaymentResult), args.Error(1)
}

func (m *MockEngine) ProjectPaymentSummary(ctx context.Context, actor engine.Actor, projectID uuid.UUID) (*engine.PaymentSummary, error) {
	args := m.Called(ctx, actor, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.PaymentSummary), args.Error(1)
}

func (m *MockEngine) GetProject(ctx context.Context, actor engine.Actor, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) ListProjects(ctx context.Context, actor engine.Actor) ([]*project.Project, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *MockEngine) ListClients(ctx context.Context, actor engine.Actor) ([]*project.Client, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Client), args.Error(1)
}

func (m *MockEngine) AdvanceStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.AdvanceStatusRequest) (*project.Project, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) SetActiveSubStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SubStatusRequest) (*project.Project, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) ConfirmSubStatus(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SubStatusRequest) (*project.Project, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) ConfirmStage(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.ConfirmStageRequest) (*project.Project, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) AddRevision(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.AddRevisionRequest) (*project.Revision, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Revision), args.Error(1)
}

func (m *MockEngine) CompleteRevision(ctx context.Context, actor engine.Actor, projectID, revisionID uuid.UUID, req engine.CompleteRevisionRequest) (*project.Revision, error) {
	args := m.Called(ctx, actor, projectID, revisionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Revision), args.Error(1)
}

func (m *MockEngine) CreateContract(ctx context.Context, actor engine.Actor, projectID uuid.UUID) (*project.Contract, error) {
	args := m.Called(ctx, actor, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Contract), args.Error(1)
}

func (m *MockEngine) ListContracts(ctx context.Context, actor engine.Actor, projectID uuid.UUID) ([]*project.Contract, error) {
	args := m.Called(ctx, actor, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Contract), args.Error(1)
}

func (m *MockEngine) SignContract(ctx context.Context, actor engine.Actor, contractID uuid.UUID, req engine.SignContractRequest) (*project.Contract, error) {
	args := m.Called(ctx, actor, contractID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Contract), args.Error(1)
}

func (m *MockEngine) SignInvoice(ctx context.Context, actor engine.Actor, projectID uuid.UUID, req engine.SignRequest) (*project.Project, error) {
	args := m.Called(ctx, actor, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockEngine) AssignTeamPayment(ctx context.Context, actor engine.Actor, req engine.AssignTeamPaymentRequest) (*payout.TeamProjectPayment, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.TeamProjectPayment), args.Error(1)
}

func (m *MockEngine) ListTeamPayments(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	args := m.Called(ctx, actor, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payout.TeamProjectPayment), args.Error(1)
}

func (m *MockEngine) RecordPayment(ctx context.Context, actor engine.Actor, req engine.RecordPaymentRequest) (*payout.TeamPaymentRecord, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.TeamPaymentRecord), args.Error(1)
}

func (m *MockEngine) ListPaymentRecords(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*payout.TeamPaymentRecord, error) {
	args := m.Called(ctx, actor, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payout.TeamPaymentRecord), args.Error(1)
}

func (m *MockEngine) SignPaymentRecord(ctx context.Context, actor engine.Actor, recordID uuid.UUID, req engine.SignRequest) (*payout.TeamPaymentRecord, error) {
	args := m.Called(ctx, actor, recordID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.TeamPaymentRecord), args.Error(1)
}

func (m *MockEngine) PayFreelancerBatch(ctx context.Context, actor engine.Actor, req engine.PayFreelancerBatchRequest) (*engine.FreelancerPayoutResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.FreelancerPayoutResult), args.Error(1)
}

func (m *MockEngine) GrantReward(ctx context.Context, actor engine.Actor, req engine.GrantRewardRequest) (*reward.Entry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.Entry), args.Error(1)
}

func (m *MockEngine) ListRewards(ctx context.Context, actor engine.Actor, memberID uuid.UUID) ([]*reward.Entry, error) {
	args := m.Called(ctx, actor, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reward.Entry), args.Error(1)
}

func (m *MockEngine) RewardBalance(ctx context.Context, actor engine.Actor, memberID uuid.UUID) (int64, error) {
	args := m.Called(ctx, actor, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEngine) ListNotifications(ctx context.Context, actor engine.Actor, limit, offset int) ([]*notification.Notification, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockEngine) UnreadCount(ctx context.Context, actor engine.Actor) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEngine) MarkNotificationRead(ctx context.Context, actor engine.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockEngine) MarkAllRead(ctx context.Context, actor engine.Actor) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

type MockIntentQueue struct {
	mock.Mock
}

func (m *MockIntentQueue) Enqueue(ctx context.Context, actor engine.Actor, intentType shared.IntentType, payload any) (uuid.UUID, error) {
	args := m.Called(ctx, actor, intentType, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
