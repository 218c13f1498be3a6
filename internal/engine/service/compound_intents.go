package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/payout"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/promo"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/store"
)

// SubmitPublicBooking books a project from the public form: the client is upserted by
// email, an optional promo code prices the job, and a down payment confirms it.
func (f *Facade) SubmitPublicBooking(ctx context.Context, actor Actor, req SubmitPublicBookingRequest) (*BookingResult, error) {
	var result *BookingResult

	err := f.run(ctx, actor, "submit_public_booking", access.OpSubmitPublicBooking, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		if req.DownPayment > 0 && req.CardID == nil {
			return nil, shared.Validation("a down payment needs a destination card")
		}
		if err := f.ledger.EnsureUnused(ctx, tx, req.IdempotencyKey); err != nil {
			return nil, err
		}

		client, err := f.lifecycle.UpsertClient(ctx, tx, req.ClientName, req.ClientEmail, req.ClientPhone)
		if err != nil {
			return nil, err
		}

		finalCost := req.BaseCost
		var redemption *promo.Redemption
		if strings.TrimSpace(req.PromoCode) != "" {
			redemption, err = f.promos.Redeem(ctx, tx, req.PromoCode, req.BaseCost, f.now())
			if err != nil {
				return nil, err
			}
			finalCost = redemption.FinalAmount
		}
		if req.DownPayment > finalCost {
			return nil, shared.Validation("down payment %d exceeds the project cost %d", req.DownPayment, finalCost)
		}

		p, err := project.NewProject(client.ID, req.ProjectName, req.ProjectType, req.EventDate, finalCost)
		if err != nil {
			return nil, err
		}
		if redemption != nil {
			promoID := redemption.PromoCodeID
			p.PromoCodeID = &promoID
		}
		if err := f.lifecycle.CreateProject(ctx, tx, p); err != nil {
			return nil, err
		}

		res := &BookingResult{Client: client, Project: p, Redemption: redemption}
		if req.DownPayment > 0 {
			projectID := p.ID
			txn, err := f.ledger.ApplyTransaction(ctx, tx, ledger.Intent{
				Amount:         req.DownPayment,
				ProjectID:      &projectID,
				CardID:         req.CardID,
				PocketID:       req.PocketID,
				Category:       ledger.CategoryDownPayment,
				Description:    fmt.Sprintf("Down payment for %s", p.Name),
				IdempotencyKey: req.IdempotencyKey,
			})
			if err != nil {
				return nil, err
			}
			confirmed, err := f.lifecycle.AdvanceStatus(ctx, tx, p.ID, project.StatusConfirmed)
			if err != nil {
				return nil, err
			}
			res.DownPayment = txn
			res.Project = confirmed
		}
		result = res

		return newEvent(notification.EventBookingSubmitted,
			"New booking",
			fmt.Sprintf("%s booked %s", client.Name, p.Name),
			notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordClientPayment posts a client payment against a project's outstanding balance.
// A LEAD project is confirmed by its first payment.
func (f *Facade) RecordClientPayment(ctx context.Context, actor Actor, req RecordClientPaymentRequest) (*ClientPaymentResult, error) {
	var result *ClientPaymentResult

	err := f.run(ctx, actor, "record_client_payment", access.OpRecordClientPayment, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		p, err := tx.Projects().LockForUpdate(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if p.Status == project.StatusCancelled || p.Status == project.StatusCompleted {
			return nil, shared.InvalidTransition("project", p.ID.String(), string(p.Status), "PAYMENT")
		}

		paid, err := f.ledger.ProjectIncome(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		outstanding := p.TotalCost - paid
		if req.Amount > outstanding {
			return nil, shared.Validation("payment %d exceeds the outstanding balance %d", req.Amount, outstanding)
		}

		projectID, cardID := p.ID, req.CardID
		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Payment for %s", p.Name)
		}
		txn, err := f.ledger.ApplyTransaction(ctx, tx, ledger.Intent{
			Amount:         req.Amount,
			ProjectID:      &projectID,
			CardID:         &cardID,
			PocketID:       req.PocketID,
			Category:       ledger.CategoryClientPayment,
			Description:    description,
			Date:           req.Date,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return nil, err
		}

		if p.Status == project.StatusLead {
			p, err = f.lifecycle.AdvanceStatus(ctx, tx, p.ID, project.StatusConfirmed)
			if err != nil {
				return nil, err
			}
		}

		result = &ClientPaymentResult{
			Transaction: txn,
			Project:     p,
			Summary: PaymentSummary{
				ProjectID:   p.ID,
				TotalCost:   p.TotalCost,
				Paid:        paid + req.Amount,
				Outstanding: outstanding - req.Amount,
			},
		}

		return newEvent(notification.EventClientPaymentRecorded,
			"Client payment received",
			fmt.Sprintf("%d received for %s, %d outstanding", req.Amount, p.Name, result.Summary.Outstanding),
			notification.ViewFinance, txn.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PayFreelancerBatch pays a team member for the given projects: the unpaid rows are
// recorded as one payout, the total is posted as an expense and the record is
// signed when a signature comes with the request.
func (f *Facade) PayFreelancerBatch(ctx context.Context, actor Actor, req PayFreelancerBatchRequest) (*FreelancerPayoutResult, error) {
	var result *FreelancerPayoutResult

	err := f.run(ctx, actor, "pay_freelancer_batch", access.OpPayFreelancerBatch, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		if err := f.ledger.EnsureUnused(ctx, tx, req.IdempotencyKey); err != nil {
			return nil, err
		}

		record, err := f.payouts.RecordPayment(ctx, tx, req.TeamMemberID, req.ProjectIDs)
		if err != nil {
			return nil, err
		}

		cardID := req.CardID
		txn, err := f.ledger.ApplyTransaction(ctx, tx, ledger.Intent{
			Amount:         -record.Total,
			CardID:         &cardID,
			PocketID:       req.PocketID,
			Category:       ledger.CategoryFreelancerFee,
			Description:    fmt.Sprintf("Payout %s", record.RecordNumber),
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return nil, err
		}

		if strings.TrimSpace(req.Signature) != "" {
			var signed *payout.TeamPaymentRecord
			if signed, err = f.payouts.SignPaymentRecord(ctx, tx, record.ID, req.Signature); err != nil {
				return nil, err
			}
			record = signed
		}
		result = &FreelancerPayoutResult{Record: record, Transaction: txn}

		return newEvent(notification.EventFreelancerPaid,
			"Freelancer paid",
			fmt.Sprintf("Payout %s of %d covers %d project(s)", record.RecordNumber, record.Total, len(record.ProjectPaymentIDs)),
			notification.ViewTeam, record.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
