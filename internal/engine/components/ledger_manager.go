package components

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/store"
)

// LedgerManagerImpl implements the LedgerManager interface
type LedgerManagerImpl struct {
	logger *slog.Logger
}

func NewLedgerManager(logger *slog.Logger) service.LedgerManager {
	return &LedgerManagerImpl{logger: logger}
}

func (m *LedgerManagerImpl) CreateCard(ctx context.Context, tx store.Tx, name string, cardType ledger.CardType) (*ledger.Card, error) {
	card, err := ledger.NewCard(name, cardType)
	if err != nil {
		return nil, err
	}
	if err := tx.Cards().Create(ctx, card); err != nil {
		return nil, err
	}
	m.logger.Info("Card created", "card_id", card.ID.String(), "type", card.Type)
	return card, nil
}

func (m *LedgerManagerImpl) CreatePocket(ctx context.Context, tx store.Tx, name string, pocketType ledger.PocketType, goalAmount *int64) (*ledger.Pocket, error) {
	pocket, err := ledger.NewPocket(name, pocketType, goalAmount)
	if err != nil {
		return nil, err
	}
	if err := tx.Pockets().Create(ctx, pocket); err != nil {
		return nil, err
	}
	m.logger.Info("Pocket created", "pocket_id", pocket.ID.String(), "type", pocket.Type)
	return pocket, nil
}

func (m *LedgerManagerImpl) EnsureUnused(ctx context.Context, tx store.Tx, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	existing, err := tx.Transactions().GetByIdempotencyKey(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		m.logger.Info("Idempotency key already used", "idempotency_key", key, "transaction_id", existing.ID.String())
		return shared.Duplicate("transaction", key)
	}
	return nil
}

// ApplyTransaction locks the referenced card, then the pocket, applies the amount to
// both and appends the transaction. Nothing is written when any step fails.
func (m *LedgerManagerImpl) ApplyTransaction(ctx context.Context, tx store.Tx, intent ledger.Intent) (*ledger.Transaction, error) {
	txn, err := ledger.NewTransaction(intent)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureUnused(ctx, tx, txn.IdempotencyKey); err != nil {
		return nil, err
	}

	logger := m.logger.With("transaction_id", txn.ID.String())

	if txn.CardID != nil {
		card, err := tx.Cards().LockForUpdate(ctx, *txn.CardID)
		if err != nil {
			return nil, err
		}
		version := card.Version
		if err := card.Apply(txn.Amount); err != nil {
			return nil, err
		}
		if err := tx.Cards().UpdateBalance(ctx, card.ID, txn.Amount, version); err != nil {
			return nil, err
		}
		logger.Debug("Card balance updated", "card_id", card.ID.String(), "balance", card.Balance)
	}

	if txn.PocketID != nil {
		pocket, err := tx.Pockets().LockForUpdate(ctx, *txn.PocketID)
		if err != nil {
			return nil, err
		}
		version := pocket.Version
		if err := pocket.Apply(txn.Amount); err != nil {
			logger.Warn("Pocket floor would be breached", "pocket_id", pocket.ID.String(), "balance", pocket.Balance, "amount", txn.Amount)
			return nil, err
		}
		if err := tx.Pockets().UpdateBalance(ctx, pocket.ID, txn.Amount, version); err != nil {
			return nil, err
		}
		logger.Debug("Pocket balance updated", "pocket_id", pocket.ID.String(), "balance", pocket.Balance)
	}

	if err := tx.Transactions().Create(ctx, txn); err != nil {
		return nil, err
	}

	logger.Info("Transaction applied", "amount", txn.Amount, "category", txn.Category)
	return txn, nil
}

func (m *LedgerManagerImpl) SignTransaction(ctx context.Context, tx store.Tx, id uuid.UUID, signature string) (*ledger.Transaction, error) {
	txn, err := tx.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Sign(&txn.VendorSignature, signature, "transaction", id.String()); err != nil {
		return nil, err
	}
	if err := tx.Transactions().SetVendorSignature(ctx, id, txn.VendorSignature); err != nil {
		return nil, err
	}
	m.logger.Info("Transaction signed", "transaction_id", id.String())
	return txn, nil
}

// TransferBetweenPockets locks both pockets in id order so that opposite
// transfers between the same pair cannot deadlock.
func (m *LedgerManagerImpl) TransferBetweenPockets(ctx context.Context, tx store.Tx, req ledger.TransferRequest) (*ledger.Transfer, error) {
	transfer, err := ledger.NewTransfer(req)
	if err != nil {
		return nil, err
	}

	first, second := req.FromPocketID, req.ToPocketID
	if second.String() < first.String() {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*ledger.Pocket, 2)
	for _, id := range []uuid.UUID{first, second} {
		pocket, err := tx.Pockets().LockForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = pocket
	}

	for _, leg := range []*ledger.Transaction{transfer.Debit, transfer.Credit} {
		pocket := locked[*leg.PocketID]
		version := pocket.Version
		if err := pocket.Apply(leg.Amount); err != nil {
			return nil, err
		}
		if err := tx.Pockets().UpdateBalance(ctx, pocket.ID, leg.Amount, version); err != nil {
			return nil, err
		}
		if err := tx.Transactions().Create(ctx, leg); err != nil {
			return nil, err
		}
	}

	m.logger.Info("Pocket transfer recorded",
		"from_pocket_id", req.FromPocketID.String(),
		"to_pocket_id", req.ToPocketID.String(),
		"amount", req.Amount,
	)
	return transfer, nil
}

// ProjectIncome is the sum of positive transactions posted against the project
func (m *LedgerManagerImpl) ProjectIncome(ctx context.Context, tx store.Tx, projectID uuid.UUID) (int64, error) {
	return tx.Transactions().SumIncomeByProject(ctx, projectID)
}
