package components

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/store"
)

type PayoutManagerImpl struct {
	logger *slog.Logger
}

func NewPayoutManager(logger *slog.Logger) service.PayoutManager {
	return &PayoutManagerImpl{logger: logger}
}

// GrantReward appends a reward entry. Spending (a negative grant) holds the
// member's reward lock while the balance is checked.
func (m *PayoutManagerImpl) GrantReward(ctx context.Context, tx store.Tx, grant reward.Grant) (*reward.Entry, error) {
	entry, err := reward.NewEntry(grant)
	if err != nil {
		return nil, err
	}

	if entry.Delta < 0 {
		if err := tx.Rewards().LockMember(ctx, entry.TeamMemberID); err != nil {
			return nil, err
		}
		balance, err := tx.Rewards().BalanceOf(ctx, entry.TeamMemberID)
		if err != nil {
			return nil, err
		}
		if balance+entry.Delta < 0 {
			return nil, shared.InsufficientFunds("reward_balance", entry.TeamMemberID.String(), balance, entry.Delta)
		}
	}

	if err := tx.Rewards().Append(ctx, entry); err != nil {
		return nil, err
	}
	m.logger.Info("Reward entry appended", "team_member_id", entry.TeamMemberID.String(), "delta", entry.Delta)
	return entry, nil
}

func (m *PayoutManagerImpl) AssignTeamPayment(ctx context.Context, tx store.Tx, memberID, projectID uuid.UUID, amount int64) (*payout.TeamProjectPayment, error) {
	payment, err := payout.NewTeamProjectPayment(memberID, projectID, amount)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := tx.TeamPayments().CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	m.logger.Info("Team payment assigned", "team_member_id", memberID.String(), "project_id", projectID.String(), "amount", amount)
	return payment, nil
}

// RecordPayment pays every unpaid payment of the member on the given projects
// with one record. The record row is written before the payments reference it.
func (m *PayoutManagerImpl) RecordPayment(ctx context.Context, tx store.Tx, memberID uuid.UUID, projectIDs []uuid.UUID) (*payout.TeamPaymentRecord, error) {
	if len(projectIDs) == 0 {
		return nil, shared.NothingToPay(memberID.String())
	}

	payments, err := tx.TeamPayments().LockPayments(ctx, memberID, projectIDs)
	if err != nil {
		return nil, err
	}
	record, err := payout.NewRecord(memberID, payments)
	if err != nil {
		return nil, err
	}

	if err := tx.TeamPayments().CreateRecord(ctx, record); err != nil {
		return nil, err
	}
	if err := tx.TeamPayments().MarkPaid(ctx, record.ProjectPaymentIDs, record.ID); err != nil {
		return nil, err
	}

	m.logger.Info("Team payment record created",
		"record_id", record.ID.String(),
		"record_number", record.RecordNumber,
		"team_member_id", memberID.String(),
		"payments", len(record.ProjectPaymentIDs),
		"total", record.Total,
	)
	return record, nil
}

func (m *PayoutManagerImpl) SignPaymentRecord(ctx context.Context, tx store.Tx, recordID uuid.UUID, signature string) (*payout.TeamPaymentRecord, error) {
	record, err := tx.TeamPayments().GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := record.Sign(signature); err != nil {
		return nil, err
	}
	if err := tx.TeamPayments().SetRecordSignature(ctx, recordID, record.VendorSignature); err != nil {
		return nil, err
	}
	m.logger.Info("Payment record signed", "record_id", recordID.String())
	return record, nil
}
