package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/reward"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (f *Facade) ListCards(ctx context.Context, actor Actor) ([]*ledger.Card, error) {
	tx, err := f.read(ctx, actor, "list_cards", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	return tx.Cards().List(ctx)
}

func (f *Facade) ListPockets(ctx context.Context, actor Actor) ([]*ledger.Pocket, error) {
	tx, err := f.read(ctx, actor, "list_pockets", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	return tx.Pockets().List(ctx)
}

func (f *Facade) ListTransactions(ctx context.Context, actor Actor, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	tx, err := f.read(ctx, actor, "list_transactions", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	return tx.Transactions().List(ctx, filter)
}

func (f *Facade) GetProject(ctx context.Context, actor Actor, id uuid.UUID) (*project.Project, error) {
	tx, err := f.read(ctx, actor, "get_project", access.OpReadProjects)
	if err != nil {
		return nil, err
	}
	return tx.Projects().GetByID(ctx, id)
}

func (f *Facade) ListProjects(ctx context.Context, actor Actor) ([]*project.Project, error) {
	tx, err := f.read(ctx, actor, "list_projects", access.OpReadProjects)
	if err != nil {
		return nil, err
	}
	return tx.Projects().List(ctx)
}

func (f *Facade) ListContracts(ctx context.Context, actor Actor, projectID uuid.UUID) ([]*project.Contract, error) {
	tx, err := f.read(ctx, actor, "list_contracts", access.OpReadProjects)
	if err != nil {
		return nil, err
	}
	return tx.Contracts().ListByProject(ctx, projectID)
}

func (f *Facade) ListClients(ctx context.Context, actor Actor) ([]*project.Client, error) {
	tx, err := f.read(ctx, actor, "list_clients", access.OpReadProjects)
	if err != nil {
		return nil, err
	}
	return tx.Clients().List(ctx)
}

// ProjectPaymentSummary reports what the client has paid and still owes
func (f *Facade) ProjectPaymentSummary(ctx context.Context, actor Actor, projectID uuid.UUID) (*PaymentSummary, error) {
	tx, err := f.read(ctx, actor, "project_payment_summary", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	p, err := tx.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	paid, err := f.ledger.ProjectIncome(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	return &PaymentSummary{
		ProjectID:   p.ID,
		TotalCost:   p.TotalCost,
		Paid:        paid,
		Outstanding: p.TotalCost - paid,
	}, nil
}

func (f *Facade) ListPromoCodes(ctx context.Context, actor Actor) ([]*promo.PromoCode, error) {
	tx, err := f.read(ctx, actor, "list_promo_codes", access.OpManagePromoCodes)
	if err != nil {
		return nil, err
	}
	return tx.PromoCodes().List(ctx)
}

func (f *Facade) ListTeamPayments(ctx context.Context, actor Actor, memberID uuid.UUID) ([]*payout.TeamProjectPayment, error) {
	tx, err := f.read(ctx, actor, "list_team_payments", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	return tx.TeamPayments().ListPayments(ctx, memberID)
}

func (f *Facade) ListPaymentRecords(ctx context.Context, actor Actor, memberID uuid.UUID) ([]*payout.TeamPaymentRecord, error) {
	tx, err := f.read(ctx, actor, "list_payment_records", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	return tx.TeamPayments().ListRecords(ctx, memberID)
}

func (f *Facade) ListRewards(ctx context.Context, actor Actor, memberID uuid.UUID) ([]*reward.Entry, error) {
	tx, err := f.read(ctx, actor, "list_rewards", access.OpReadFinance)
	if err != nil {
		return nil, err
	}
	return tx.Rewards().ListByMember(ctx, memberID)
}

// RewardBalance is the sum of the member's reward entries
func (f *Facade) RewardBalance(ctx context.Context, actor Actor, memberID uuid.UUID) (int64, error) {
	tx, err := f.read(ctx, actor, "reward_balance", access.OpReadFinance)
	if err != nil {
		return 0, err
	}
	return tx.Rewards().BalanceOf(ctx, memberID)
}

// Notifications belong to the vendor profile

func (f *Facade) ListNotifications(ctx context.Context, actor Actor, limit, offset int) ([]*notification.Notification, error) {
	if _, err := f.read(ctx, actor, "list_notifications", access.OpReadNotifications); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return f.notifications.List(ctx, f.vendor.NotificationEmail, limit, offset)
}

func (f *Facade) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	if _, err := f.read(ctx, actor, "unread_count", access.OpReadNotifications); err != nil {
		return 0, err
	}
	return f.notifications.CountUnread(ctx, f.vendor.NotificationEmail)
}

func (f *Facade) MarkNotificationRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := f.read(ctx, actor, "mark_notification_read", access.OpMarkNotificationsRead); err != nil {
		return err
	}
	return f.notifications.MarkAsRead(ctx, id)
}

// MarkAllRead returns how many notifications flipped to read
func (f *Facade) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	if _, err := f.read(ctx, actor, "mark_all_read", access.OpMarkNotificationsRead); err != nil {
		return 0, err
	}
	return f.notifications.MarkAllAsRead(ctx, f.vendor.NotificationEmail)
}
