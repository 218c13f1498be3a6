package components

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/data/memory"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/metrics"
)

const vendorEmail = "studio@example.com"

var (
	vendor  = service.Actor{Role: access.RoleVendor, ID: "vendor-1"}
	public  = service.Actor{Role: access.RolePublic}
	finance = service.Actor{Role: access.RoleFinance, ID: "fin-1"}
	client  = service.Actor{Role: access.RoleClient, ID: "client-1"}
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type engine struct {
	facade        *service.Facade
	store         *memory.Store
	notifications *memory.NotificationRepository
}

func newEngine(t *testing.T, snapshot memory.Snapshot) *engine {
	t.Helper()
	logger := newTestLogger()

	st := memory.NewStore(logger, 2*time.Second)
	st.Load(snapshot)
	notifications := memory.NewNotificationRepository()
	recorder := metrics.NewNoOpCollector()

	cfg := &config.Config{
		Engine: config.EngineConfig{IntentTimeout: 5 * time.Second, LockTimeout: 2 * time.Second},
		Vendor: config.VendorConfig{Name: "Studio", NotificationEmail: vendorEmail},
	}
	notifier := NewDirectNotifier(notifications, nil, recorder, logger)

	return &engine{
		facade:        CreateFacade(st, notifier, notifications, recorder, logger, cfg),
		store:         st,
		notifications: notifications,
	}
}

func (e *engine) notificationCount(t *testing.T) int {
	t.Helper()
	list, err := e.notifications.List(context.Background(), vendorEmail, 1000, 0)
	require.NoError(t, err)
	return len(list)
}

func mustCard(t *testing.T) *ledger.Card {
	t.Helper()
	card, err := ledger.NewCard("Studio bank", ledger.CardTypeBank)
	require.NoError(t, err)
	return card
}

func mustPocket(t *testing.T, pocketType ledger.PocketType) *ledger.Pocket {
	t.Helper()
	pocket, err := ledger.NewPocket("Reserve", pocketType, nil)
	require.NoError(t, err)
	return pocket
}

func mustPromo(t *testing.T, code string, discountType promo.DiscountType, value int64, maxUses *int) *promo.PromoCode {
	t.Helper()
	p, err := promo.NewPromoCode(code, discountType, decimal.NewFromInt(value), maxUses, nil)
	require.NoError(t, err)
	return p
}

func mustProject(t *testing.T, totalCost int64) (*project.Client, *project.Project) {
	t.Helper()
	c, err := project.NewClient("Ana Lima", "ana@example.com", "")
	require.NoError(t, err)
	p, err := project.NewProject(c.ID, "Lima wedding", "Wedding", nil, totalCost)
	require.NoError(t, err)
	return c, p
}

func intPtr(v int) *int { return &v }

func TestEngine_LockPocketTracksTransactions(t *testing.T) {
	ctx := context.Background()
	pocket := mustPocket(t, ledger.PocketTypeLock)
	e := newEngine(t, memory.Snapshot{Pockets: []*ledger.Pocket{pocket}})

	amounts := []int64{10000, -3000, -8000, 500, -7500, -1, 20000}
	for _, amount := range amounts {
		_, err := e.facade.ApplyTransaction(ctx, vendor, service.ApplyTransactionRequest{
			Amount:   amount,
			PocketID: &pocket.ID,
			Category: "Reserve",
		})
		if err != nil {
			assert.ErrorIs(t, err, shared.ErrInsufficientFunds, "amount %d", amount)
		}

		stored, err := e.store.Read().Pockets().GetByID(ctx, pocket.ID)
		require.NoError(t, err)
		sum, err := e.store.Read().Transactions().SumByPocket(ctx, pocket.ID)
		require.NoError(t, err)

		assert.Equal(t, sum, stored.Balance, "after amount %d", amount)
		assert.GreaterOrEqual(t, stored.Balance, int64(0))
	}

	stored, err := e.store.Read().Pockets().GetByID(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), stored.Balance)
}

func TestEngine_ConcurrentPromoRedemption(t *testing.T) {
	ctx := context.Background()
	code := mustPromo(t, "SPRING", promo.DiscountFixed, 1000, intPtr(3))
	e := newEngine(t, memory.Snapshot{PromoCodes: []*promo.PromoCode{code}})

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.facade.RedeemPromo(ctx, finance, service.PromoRequest{Code: "spring", BaseAmount: 5000})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case shared.KindOf(err) == shared.KindPromoExpiredOrExhausted:
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, exhausted)

	stored, err := e.store.Read().PromoCodes().GetByID(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.UsedCount)
}

func TestEngine_PayFreelancerBatchPaysOnce(t *testing.T) {
	ctx := context.Background()
	card := mustCard(t)
	c, p1 := mustProject(t, 200000)
	p2, err := project.NewProject(c.ID, "Lima engagement", "Portrait", nil, 50000)
	require.NoError(t, err)
	e := newEngine(t, memory.Snapshot{
		Cards:    []*ledger.Card{card},
		Clients:  []*project.Client{c},
		Projects: []*project.Project{p1, p2},
	})

	member := uuid.New()
	for _, assignment := range []struct {
		projectID uuid.UUID
		amount    int64
	}{{p1.ID, 30000}, {p2.ID, 12000}} {
		_, err := e.facade.AssignTeamPayment(ctx, finance, service.AssignTeamPaymentRequest{
			TeamMemberID: member,
			ProjectID:    assignment.projectID,
			Amount:       assignment.amount,
		})
		require.NoError(t, err)
	}
	before := e.notificationCount(t)

	req := service.PayFreelancerBatchRequest{
		TeamMemberID: member,
		ProjectIDs:   []uuid.UUID{p1.ID, p2.ID},
		CardID:       card.ID,
		Signature:    "data:image/png;base64,vendor",
	}
	result, err := e.facade.PayFreelancerBatch(ctx, finance, req)
	require.NoError(t, err)
	assert.Equal(t, int64(42000), result.Record.Total)
	assert.Equal(t, int64(-42000), result.Transaction.Amount)
	assert.Equal(t, shared.Signature("data:image/png;base64,vendor"), result.Record.VendorSignature)
	assert.Equal(t, before+1, e.notificationCount(t))

	_, err = e.facade.PayFreelancerBatch(ctx, finance, req)
	assert.ErrorIs(t, err, shared.ErrAlreadyPaid)

	storedCard, err := e.store.Read().Cards().GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-42000), storedCard.Balance)

	payments, err := e.facade.ListTeamPayments(ctx, finance, member)
	require.NoError(t, err)
	for _, payment := range payments {
		assert.Equal(t, payout.PaymentPaid, payment.Status)
		require.NotNil(t, payment.RecordID)
		assert.Equal(t, result.Record.ID, *payment.RecordID)
	}
	records, err := e.facade.ListPaymentRecords(ctx, finance, member)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, before+1, e.notificationCount(t))

	t.Run("RecordPaymentTwice", func(t *testing.T) {
		_, p3 := mustProject(t, 1000)
		p3.ClientID = c.ID
		e := newEngine(t, memory.Snapshot{Clients: []*project.Client{c}, Projects: []*project.Project{p3}})
		_, err := e.facade.AssignTeamPayment(ctx, finance, service.AssignTeamPaymentRequest{TeamMemberID: member, ProjectID: p3.ID, Amount: 900})
		require.NoError(t, err)

		_, err = e.facade.RecordPayment(ctx, finance, service.RecordPaymentRequest{TeamMemberID: member, ProjectIDs: []uuid.UUID{p3.ID}})
		require.NoError(t, err)
		_, err = e.facade.RecordPayment(ctx, finance, service.RecordPaymentRequest{TeamMemberID: member, ProjectIDs: []uuid.UUID{p3.ID}})
		assert.ErrorIs(t, err, shared.ErrAlreadyPaid)
	})

	t.Run("NothingMatches", func(t *testing.T) {
		_, err := e.facade.RecordPayment(ctx, finance, service.RecordPaymentRequest{TeamMemberID: uuid.New(), ProjectIDs: []uuid.UUID{p1.ID}})
		assert.ErrorIs(t, err, shared.ErrNothingToPay)
	})
}

func TestEngine_SignaturesAreWriteOnce(t *testing.T) {
	ctx := context.Background()
	card := mustCard(t)
	c, p := mustProject(t, 100000)
	e := newEngine(t, memory.Snapshot{
		Cards:    []*ledger.Card{card},
		Clients:  []*project.Client{c},
		Projects: []*project.Project{p},
	})

	t.Run("Transaction", func(t *testing.T) {
		txn, err := e.facade.ApplyTransaction(ctx, vendor, service.ApplyTransactionRequest{Amount: 2500, CardID: &card.ID, Category: "Sale"})
		require.NoError(t, err)

		_, err = e.facade.SignTransaction(ctx, vendor, txn.ID, service.SignRequest{Signature: "first"})
		require.NoError(t, err)
		_, err = e.facade.SignTransaction(ctx, vendor, txn.ID, service.SignRequest{Signature: "second"})
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)

		stored, err := e.store.Read().Transactions().GetByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.Signature("first"), stored.VendorSignature)
	})

	t.Run("Contract", func(t *testing.T) {
		contract, err := e.facade.CreateContract(ctx, vendor, p.ID)
		require.NoError(t, err)

		_, err = e.facade.SignContract(ctx, client, contract.ID, service.SignContractRequest{Signer: project.SignerClient, Signature: "client-1"})
		require.NoError(t, err)
		_, err = e.facade.SignContract(ctx, client, contract.ID, service.SignContractRequest{Signer: project.SignerClient, Signature: "client-2"})
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)
		signed, err := e.facade.SignContract(ctx, vendor, contract.ID, service.SignContractRequest{Signer: project.SignerVendor, Signature: "vendor-1"})
		require.NoError(t, err)
		assert.True(t, signed.IsExecuted())

		stored, err := e.store.Read().Contracts().GetByID(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.Signature("client-1"), stored.ClientSignature)
		assert.Equal(t, shared.Signature("vendor-1"), stored.VendorSignature)
	})

	t.Run("Invoice", func(t *testing.T) {
		_, err := e.facade.SignInvoice(ctx, vendor, p.ID, service.SignRequest{Signature: "inv-1"})
		require.NoError(t, err)
		_, err = e.facade.SignInvoice(ctx, vendor, p.ID, service.SignRequest{Signature: "inv-2"})
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)

		stored, err := e.facade.GetProject(ctx, vendor, p.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.Signature("inv-1"), stored.InvoiceSignature)
	})

	t.Run("PaymentRecord", func(t *testing.T) {
		member := uuid.New()
		_, err := e.facade.AssignTeamPayment(ctx, vendor, service.AssignTeamPaymentRequest{TeamMemberID: member, ProjectID: p.ID, Amount: 700})
		require.NoError(t, err)
		record, err := e.facade.RecordPayment(ctx, vendor, service.RecordPaymentRequest{TeamMemberID: member, ProjectIDs: []uuid.UUID{p.ID}})
		require.NoError(t, err)

		_, err = e.facade.SignPaymentRecord(ctx, vendor, record.ID, service.SignRequest{Signature: "rec-1"})
		require.NoError(t, err)
		_, err = e.facade.SignPaymentRecord(ctx, vendor, record.ID, service.SignRequest{Signature: "rec-2"})
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)

		stored, err := e.store.Read().TeamPayments().GetRecord(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.Signature("rec-1"), stored.VendorSignature)
	})
}

func TestEngine_ConfirmSubStatusIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, p := mustProject(t, 100000)
	e := newEngine(t, memory.Snapshot{Clients: []*project.Client{c}, Projects: []*project.Project{p}})

	req := service.SubStatusRequest{SubStatus: "Album layout", Note: "Love it"}
	_, err := e.facade.ConfirmSubStatus(ctx, client, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, e.notificationCount(t))

	confirmed, err := e.facade.ConfirmSubStatus(ctx, client, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Album layout"}, confirmed.ConfirmedSubStatuses)
	assert.Equal(t, "Love it", confirmed.ClientSubStatusNotes["Album layout"])
	assert.Equal(t, 1, e.notificationCount(t))

	t.Run("StageIsSetOnce", func(t *testing.T) {
		first, err := e.facade.ConfirmStage(ctx, client, p.ID, service.ConfirmStageRequest{Stage: project.StageEditing})
		require.NoError(t, err)
		second, err := e.facade.ConfirmStage(ctx, client, p.ID, service.ConfirmStageRequest{Stage: project.StageEditing})
		require.NoError(t, err)

		assert.True(t, second.Stages.IsConfirmed(project.StageEditing))
		assert.Equal(t, first.Version, second.Version)
		assert.Equal(t, 2, e.notificationCount(t))
	})
}

func TestEngine_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("CardOverdraftButLockPocketFloor", func(t *testing.T) {
		card := mustCard(t)
		lock := mustPocket(t, ledger.PocketTypeLock)
		e := newEngine(t, memory.Snapshot{Cards: []*ledger.Card{card}, Pockets: []*ledger.Pocket{lock}})

		txn, err := e.facade.ApplyTransaction(ctx, vendor, service.ApplyTransactionRequest{Amount: -50000, CardID: &card.ID, Category: "Gear"})
		require.NoError(t, err)
		assert.Equal(t, int64(-50000), txn.Amount)

		_, err = e.facade.ApplyTransaction(ctx, vendor, service.ApplyTransactionRequest{Amount: -50000, PocketID: &lock.ID, Category: "Gear"})
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)

		storedCard, err := e.store.Read().Cards().GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(-50000), storedCard.Balance)
		storedPocket, err := e.store.Read().Pockets().GetByID(ctx, lock.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), storedPocket.Balance)
	})

	t.Run("PercentagePromoSingleUse", func(t *testing.T) {
		code := mustPromo(t, "TENOFF", promo.DiscountPercentage, 10, intPtr(1))
		e := newEngine(t, memory.Snapshot{PromoCodes: []*promo.PromoCode{code}})

		redemption, err := e.facade.RedeemPromo(ctx, vendor, service.PromoRequest{Code: "TENOFF", BaseAmount: 100000})
		require.NoError(t, err)
		assert.Equal(t, int64(90000), redemption.FinalAmount)
		assert.Equal(t, int64(10000), redemption.Discount)
		assert.Equal(t, 1, redemption.UsedCount)

		_, err = e.facade.RedeemPromo(ctx, vendor, service.PromoRequest{Code: "TENOFF", BaseAmount: 100000})
		assert.ErrorIs(t, err, shared.ErrPromoExpiredOrExhausted)
	})

	t.Run("CompletedRevisionKeepsDate", func(t *testing.T) {
		c, p := mustProject(t, 100000)
		e := newEngine(t, memory.Snapshot{Clients: []*project.Client{c}, Projects: []*project.Project{p}})

		rev, err := e.facade.AddRevision(ctx, vendor, p.ID, service.AddRevisionRequest{Description: "Brighter cover"})
		require.NoError(t, err)

		freelancer := service.Actor{Role: access.RoleFreelancer}
		done, err := e.facade.CompleteRevision(ctx, freelancer, p.ID, rev.ID, service.CompleteRevisionRequest{
			FreelancerNotes: "Lifted exposure",
			DriveLink:       "https://drive.example.com/cover",
		})
		require.NoError(t, err)
		require.NotNil(t, done.CompletedDate)
		completedAt := *done.CompletedDate

		_, err = e.facade.CompleteRevision(ctx, freelancer, p.ID, rev.ID, service.CompleteRevisionRequest{FreelancerNotes: "again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyCompleted)

		stored, err := e.facade.GetProject(ctx, vendor, p.ID)
		require.NoError(t, err)
		require.Len(t, stored.Revisions, 1)
		require.NotNil(t, stored.Revisions[0].CompletedDate)
		assert.True(t, completedAt.Equal(*stored.Revisions[0].CompletedDate))
		assert.Equal(t, "Lifted exposure", stored.Revisions[0].FreelancerNotes)

		_, err = e.facade.CompleteRevision(ctx, freelancer, p.ID, uuid.New(), service.CompleteRevisionRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestEngine_SubmitPublicBooking(t *testing.T) {
	ctx := context.Background()
	card := mustCard(t)
	code := mustPromo(t, "WELCOME", promo.DiscountPercentage, 10, nil)
	e := newEngine(t, memory.Snapshot{Cards: []*ledger.Card{card}, PromoCodes: []*promo.PromoCode{code}})

	req := service.SubmitPublicBookingRequest{
		ClientName:     "Ana Lima",
		ClientEmail:    "Ana@Example.com",
		ProjectName:    "Lima wedding",
		ProjectType:    "Wedding",
		BaseCost:       150000,
		PromoCode:      "welcome",
		DownPayment:    30000,
		CardID:         &card.ID,
		IdempotencyKey: "booking-1",
	}
	result, err := e.facade.SubmitPublicBooking(ctx, public, req)
	require.NoError(t, err)

	assert.Equal(t, int64(135000), result.Project.TotalCost)
	assert.Equal(t, project.StatusConfirmed, result.Project.Status)
	require.NotNil(t, result.Project.PromoCodeID)
	assert.Equal(t, code.ID, *result.Project.PromoCodeID)
	require.NotNil(t, result.DownPayment)
	assert.Equal(t, ledger.CategoryDownPayment, result.DownPayment.Category)
	assert.Equal(t, result.Project.ID, *result.DownPayment.ProjectID)
	assert.Equal(t, "ana@example.com", result.Client.Email)

	notifications, err := e.facade.ListNotifications(ctx, vendor, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, notification.EventBookingSubmitted, notifications[0].EventType)
	assert.Equal(t, result.Project.ID.String(), notifications[0].LinkedID)

	t.Run("ReplayedKeyWritesNothing", func(t *testing.T) {
		_, err := e.facade.SubmitPublicBooking(ctx, public, req)
		assert.ErrorIs(t, err, shared.ErrDuplicate)

		projects, err := e.facade.ListProjects(ctx, vendor)
		require.NoError(t, err)
		assert.Len(t, projects, 1)
		stored, err := e.store.Read().PromoCodes().GetByID(ctx, code.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.UsedCount)
	})

	t.Run("ReturningClientWithoutDeposit", func(t *testing.T) {
		second, err := e.facade.SubmitPublicBooking(ctx, public, service.SubmitPublicBookingRequest{
			ClientName:  "Ana Lima",
			ClientEmail: "ana@example.com",
			ProjectName: "Anniversary shoot",
			BaseCost:    40000,
		})
		require.NoError(t, err)
		assert.Equal(t, result.Client.ID, second.Client.ID)
		assert.Equal(t, project.StatusLead, second.Project.Status)
		assert.Nil(t, second.DownPayment)

		clients, err := e.facade.ListClients(ctx, vendor)
		require.NoError(t, err)
		assert.Len(t, clients, 1)
	})

	t.Run("DepositAboveCost", func(t *testing.T) {
		_, err := e.facade.SubmitPublicBooking(ctx, public, service.SubmitPublicBookingRequest{
			ClientName:  "Bo Chen",
			ClientEmail: "bo@example.com",
			ProjectName: "Portraits",
			BaseCost:    10000,
			DownPayment: 20000,
			CardID:      &card.ID,
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("BadShape", func(t *testing.T) {
		_, err := e.facade.SubmitPublicBooking(ctx, public, service.SubmitPublicBookingRequest{ClientEmail: "not-an-email"})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "client_email")
	})
}

func TestEngine_RecordClientPayment(t *testing.T) {
	ctx := context.Background()
	card := mustCard(t)
	c, p := mustProject(t, 100000)
	_, cancelled := mustProject(t, 5000)
	cancelled.ClientID = c.ID
	cancelled.Status = project.StatusCancelled
	e := newEngine(t, memory.Snapshot{
		Cards:    []*ledger.Card{card},
		Clients:  []*project.Client{c},
		Projects: []*project.Project{p, cancelled},
	})

	result, err := e.facade.RecordClientPayment(ctx, finance, service.RecordClientPaymentRequest{ProjectID: p.ID, Amount: 40000, CardID: card.ID})
	require.NoError(t, err)
	assert.Equal(t, project.StatusConfirmed, result.Project.Status)
	assert.Equal(t, service.PaymentSummary{ProjectID: p.ID, TotalCost: 100000, Paid: 40000, Outstanding: 60000}, result.Summary)

	_, err = e.facade.RecordClientPayment(ctx, finance, service.RecordClientPaymentRequest{ProjectID: p.ID, Amount: 60001, CardID: card.ID})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = e.facade.RecordClientPayment(ctx, finance, service.RecordClientPaymentRequest{ProjectID: p.ID, Amount: 60000, CardID: card.ID})
	require.NoError(t, err)

	summary, err := e.facade.ProjectPaymentSummary(ctx, finance, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Outstanding)

	_, err = e.facade.RecordClientPayment(ctx, finance, service.RecordClientPaymentRequest{ProjectID: cancelled.ID, Amount: 100, CardID: card.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = e.facade.RecordClientPayment(ctx, finance, service.RecordClientPaymentRequest{ProjectID: uuid.New(), Amount: 100, CardID: card.ID})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEngine_GatesAndLifecycle(t *testing.T) {
	ctx := context.Background()
	c, p := mustProject(t, 1000)
	e := newEngine(t, memory.Snapshot{Clients: []*project.Client{c}, Projects: []*project.Project{p}})

	t.Run("PermissionDenied", func(t *testing.T) {
		_, err := e.facade.ApplyTransaction(ctx, public, service.ApplyTransactionRequest{Amount: 1, Category: "x"})
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
		_, err = e.facade.ListCards(ctx, client)
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})

	t.Run("StatusPipeline", func(t *testing.T) {
		_, err := e.facade.AdvanceStatus(ctx, vendor, p.ID, service.AdvanceStatusRequest{Status: project.StatusDelivered})
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)

		moved, err := e.facade.AdvanceStatus(ctx, vendor, p.ID, service.AdvanceStatusRequest{Status: project.StatusConfirmed})
		require.NoError(t, err)
		assert.Equal(t, project.StatusConfirmed, moved.Status)

		cancelled, err := e.facade.AdvanceStatus(ctx, vendor, p.ID, service.AdvanceStatusRequest{Status: project.StatusCancelled})
		require.NoError(t, err)
		assert.Equal(t, project.StatusCancelled, cancelled.Status)

		_, err = e.facade.AdvanceStatus(ctx, vendor, p.ID, service.AdvanceStatusRequest{Status: project.StatusInProgress})
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("Unavailable", func(t *testing.T) {
		e.store.Unload()
		defer e.store.Load(memory.Snapshot{Clients: []*project.Client{c}, Projects: []*project.Project{p}})

		_, err := e.facade.ListProjects(ctx, vendor)
		assert.ErrorIs(t, err, shared.ErrUnavailable)
		_, err = e.facade.CreateCard(ctx, vendor, service.CreateCardRequest{Name: "Cash box", Type: ledger.CardTypeCash})
		assert.ErrorIs(t, err, shared.ErrUnavailable)
	})

	t.Run("NotificationsMarkRead", func(t *testing.T) {
		unread, err := e.facade.UnreadCount(ctx, vendor)
		require.NoError(t, err)
		assert.Equal(t, int64(2), unread)

		marked, err := e.facade.MarkAllRead(ctx, vendor)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)

		unread, err = e.facade.UnreadCount(ctx, vendor)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})
}

func TestEngine_TransfersAndRewards(t *testing.T) {
	ctx := context.Background()
	saving := mustPocket(t, ledger.PocketTypeSaving)
	expense := mustPocket(t, ledger.PocketTypeExpense)
	e := newEngine(t, memory.Snapshot{Pockets: []*ledger.Pocket{saving, expense}})

	pocketBalances := func() map[uuid.UUID]int64 {
		pockets, err := e.facade.ListPockets(ctx, finance)
		require.NoError(t, err)
		balances := map[uuid.UUID]int64{}
		for _, pocket := range pockets {
			balances[pocket.ID] = pocket.Balance
		}
		return balances
	}

	_, err := e.facade.TransferBetweenPockets(ctx, finance, service.TransferRequest{FromPocketID: saving.ID, ToPocketID: expense.ID, Amount: 100})
	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)

	legs, err := e.facade.ListTransactions(ctx, finance, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, legs)
	balances := pocketBalances()
	assert.Len(t, balances, 2)
	assert.Zero(t, balances[saving.ID])
	assert.Zero(t, balances[expense.ID])

	transfer, err := e.facade.TransferBetweenPockets(ctx, finance, service.TransferRequest{FromPocketID: expense.ID, ToPocketID: saving.ID, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, transfer.Credit.ID, *transfer.Debit.LinkedTransactionID)
	assert.Equal(t, transfer.Debit.ID, *transfer.Credit.LinkedTransactionID)

	balances = pocketBalances()
	assert.Equal(t, int64(100), balances[saving.ID])
	assert.Equal(t, int64(-100), balances[expense.ID])

	member := uuid.New()
	_, err = e.facade.GrantReward(ctx, finance, service.GrantRewardRequest{TeamMemberID: member, Points: 40, Reason: "Fast delivery"})
	require.NoError(t, err)
	_, err = e.facade.GrantReward(ctx, finance, service.GrantRewardRequest{TeamMemberID: member, Points: -50, Reason: "Redeemed"})
	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	_, err = e.facade.GrantReward(ctx, finance, service.GrantRewardRequest{TeamMemberID: member, Points: -15, Reason: "Redeemed"})
	require.NoError(t, err)

	balance, err := e.facade.RewardBalance(ctx, finance, member)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
}
