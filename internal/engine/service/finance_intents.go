package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/store"
)

func (f *Facade) CreateCard(ctx context.Context, actor Actor, req CreateCardRequest) (*ledger.Card, error) {
	var card *ledger.Card
	err := f.run(ctx, actor, "create_card", access.OpManageAccounts, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if card, err = f.ledger.CreateCard(ctx, tx, req.Name, req.Type); err != nil {
			return nil, err
		}
		return newEvent(notification.EventCardCreated, "Card added",
			fmt.Sprintf("%s (%s) is ready for transactions", card.Name, card.Type),
			notification.ViewFinance, card.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (f *Facade) CreatePocket(ctx context.Context, actor Actor, req CreatePocketRequest) (*ledger.Pocket, error) {
	var pocket *ledger.Pocket
	err := f.run(ctx, actor, "create_pocket", access.OpManageAccounts, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if pocket, err = f.ledger.CreatePocket(ctx, tx, req.Name, req.Type, req.GoalAmount); err != nil {
			return nil, err
		}
		return newEvent(notification.EventPocketCreated, "Pocket added",
			fmt.Sprintf("%s (%s) was created", pocket.Name, pocket.Type),
			notification.ViewFinance, pocket.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return pocket, nil
}

// ApplyTransaction posts one income or expense transaction
func (f *Facade) ApplyTransaction(ctx context.Context, actor Actor, req ApplyTransactionRequest) (*ledger.Transaction, error) {
	var txn *ledger.Transaction
	err := f.run(ctx, actor, "apply_transaction", access.OpApplyTransaction, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if txn, err = f.ledger.ApplyTransaction(ctx, tx, req.intent()); err != nil {
			return nil, err
		}
		kind := "Expense"
		if txn.IsIncome() {
			kind = "Income"
		}
		return newEvent(notification.EventTransactionApplied, kind+" recorded",
			fmt.Sprintf("%s of %d in %s", kind, txn.Amount, txn.Category),
			notification.ViewFinance, txn.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (f *Facade) SignTransaction(ctx context.Context, actor Actor, id uuid.UUID, req SignRequest) (*ledger.Transaction, error) {
	var txn *ledger.Transaction
	err := f.run(ctx, actor, "sign_transaction", access.OpSignTransaction, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if txn, err = f.ledger.SignTransaction(ctx, tx, id, req.Signature); err != nil {
			return nil, err
		}
		return newEvent(notification.EventTransactionSigned, "Transaction signed",
			fmt.Sprintf("%s of %d was signed", txn.Category, txn.Amount),
			notification.ViewFinance, txn.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// TransferBetweenPockets moves funds between two pockets as a linked pair of transactions
func (f *Facade) TransferBetweenPockets(ctx context.Context, actor Actor, req TransferRequest) (*ledger.Transfer, error) {
	var transfer *ledger.Transfer
	err := f.run(ctx, actor, "transfer_between_pockets", access.OpTransferPockets, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		transfer, err = f.ledger.TransferBetweenPockets(ctx, tx, ledger.TransferRequest{
			FromPocketID: req.FromPocketID,
			ToPocketID:   req.ToPocketID,
			Amount:       req.Amount,
			Description:  req.Description,
		})
		if err != nil {
			return nil, err
		}
		return newEvent(notification.EventPocketTransfer, "Pocket transfer",
			fmt.Sprintf("%d moved between pockets", req.Amount),
			notification.ViewFinance, transfer.Debit.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (f *Facade) GrantReward(ctx context.Context, actor Actor, req GrantRewardRequest) (*reward.Entry, error) {
	var entry *reward.Entry
	err := f.run(ctx, actor, "grant_reward", access.OpGrantReward, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		entry, err = f.payouts.GrantReward(ctx, tx, reward.Grant{
			TeamMemberID: req.TeamMemberID,
			ProjectID:    req.ProjectID,
			Points:       req.Points,
			Reason:       req.Reason,
		})
		if err != nil {
			return nil, err
		}
		return newEvent(notification.EventRewardGranted, "Reward points updated",
			fmt.Sprintf("%+d points: %s", entry.Delta, entry.Reason),
			notification.ViewTeam, entry.TeamMemberID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (f *Facade) AssignTeamPayment(ctx context.Context, actor Actor, req AssignTeamPaymentRequest) (*payout.TeamProjectPayment, error) {
	var payment *payout.TeamProjectPayment
	err := f.run(ctx, actor, "assign_team_payment", access.OpAssignTeamPayment, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if payment, err = f.payouts.AssignTeamPayment(ctx, tx, req.TeamMemberID, req.ProjectID, req.Amount); err != nil {
			return nil, err
		}
		return newEvent(notification.EventTeamPaymentAssigned, "Team payment assigned",
			fmt.Sprintf("%d assigned for project work", payment.Amount),
			notification.ViewTeam, payment.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RecordPayment marks a member's project payments paid without posting a ledger transaction
func (f *Facade) RecordPayment(ctx context.Context, actor Actor, req RecordPaymentRequest) (*payout.TeamPaymentRecord, error) {
	var record *payout.TeamPaymentRecord
	err := f.run(ctx, actor, "record_payment", access.OpRecordPayment, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if record, err = f.payouts.RecordPayment(ctx, tx, req.TeamMemberID, req.ProjectIDs); err != nil {
			return nil, err
		}
		return newEvent(notification.EventFreelancerPaid, "Team payment recorded",
			fmt.Sprintf("Record %s totals %d", record.RecordNumber, record.Total),
			notification.ViewTeam, record.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (f *Facade) SignPaymentRecord(ctx context.Context, actor Actor, recordID uuid.UUID, req SignRequest) (*payout.TeamPaymentRecord, error) {
	var record *payout.TeamPaymentRecord
	err := f.run(ctx, actor, "sign_payment_record", access.OpSignPaymentRecord, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if record, err = f.payouts.SignPaymentRecord(ctx, tx, recordID, req.Signature); err != nil {
			return nil, err
		}
		return newEvent(notification.EventPaymentRecordSigned, "Payment record signed",
			fmt.Sprintf("Record %s was signed", record.RecordNumber),
			notification.ViewTeam, record.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (f *Facade) CreatePromoCode(ctx context.Context, actor Actor, req CreatePromoCodeRequest) (*promo.PromoCode, error) {
	var code *promo.PromoCode
	err := f.run(ctx, actor, "create_promo_code", access.OpManagePromoCodes, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		code, err = f.promos.CreatePromoCode(ctx, tx, req.Code, req.DiscountType, req.DiscountValue, req.MaxUses, req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		return newEvent(notification.EventPromoCodeCreated, "Promo code created",
			fmt.Sprintf("%s gives a %s discount of %s", code.Code, code.DiscountType, code.DiscountValue.String()),
			notification.ViewPromo, code.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// SetPromoActive enables or disables a code; already being in the requested state is not a change
func (f *Facade) SetPromoActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*promo.PromoCode, error) {
	var code *promo.PromoCode
	err := f.run(ctx, actor, "set_promo_active", access.OpManagePromoCodes, nil, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if code, err = f.promos.SetActive(ctx, tx, id, active); err != nil {
			return nil, err
		}
		state := "disabled"
		if active {
			state = "enabled"
		}
		return newEvent(notification.EventPromoCodeToggled, "Promo code "+state,
			fmt.Sprintf("%s was %s", code.Code, state),
			notification.ViewPromo, code.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// QuotePromo prices an amount with a code without consuming a use
func (f *Facade) QuotePromo(ctx context.Context, actor Actor, req PromoRequest) (*promo.Redemption, error) {
	var quote *promo.Redemption
	err := f.run(ctx, actor, "quote_promo", access.OpQuotePromo, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		quote, err = f.promos.Quote(ctx, tx, req.Code, req.BaseAmount, f.now())
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// RedeemPromo consumes one use of a code
func (f *Facade) RedeemPromo(ctx context.Context, actor Actor, req PromoRequest) (*promo.Redemption, error) {
	var redemption *promo.Redemption
	err := f.run(ctx, actor, "redeem_promo", access.OpRedeemPromo, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if redemption, err = f.promos.Redeem(ctx, tx, req.Code, req.BaseAmount, f.now()); err != nil {
			return nil, err
		}
		return newEvent(notification.EventPromoRedeemed, "Promo code redeemed",
			fmt.Sprintf("%s took %d off %d", redemption.Code, redemption.Discount, redemption.BaseAmount),
			notification.ViewPromo, redemption.PromoCodeID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}
