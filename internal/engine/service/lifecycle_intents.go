package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/store"
)

func (f *Facade) AdvanceStatus(ctx context.Context, actor Actor, projectID uuid.UUID, req AdvanceStatusRequest) (*project.Project, error) {
	var p *project.Project
	err := f.run(ctx, actor, "advance_status", access.OpAdvanceStatus, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if p, err = f.lifecycle.AdvanceStatus(ctx, tx, projectID, req.Status); err != nil {
			return nil, err
		}
		return newEvent(notification.EventProjectStatusChanged, "Project status changed",
			fmt.Sprintf("%s is now %s", p.Name, p.Status),
			notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetActiveSubStatus points the client portal at the sub-status awaiting confirmation
func (f *Facade) SetActiveSubStatus(ctx context.Context, actor Actor, projectID uuid.UUID, req SubStatusRequest) (*project.Project, error) {
	var p *project.Project
	err := f.run(ctx, actor, "set_active_sub_status", access.OpAdvanceStatus, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if p, err = f.lifecycle.SetActiveSubStatus(ctx, tx, projectID, req.SubStatus); err != nil {
			return nil, err
		}
		return newEvent(notification.EventSubStatusActivated, "Waiting on client",
			fmt.Sprintf("%s is waiting for the client to confirm %q", p.Name, p.ActiveSubStatus),
			notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfirmSubStatus records the client's confirmation. Repeating it changes nothing and
// announces nothing.
func (f *Facade) ConfirmSubStatus(ctx context.Context, actor Actor, projectID uuid.UUID, req SubStatusRequest) (*project.Project, error) {
	var p *project.Project
	err := f.run(ctx, actor, "confirm_sub_status", access.OpConfirmSubStatus, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var (
			changed bool
			err     error
		)
		if p, changed, err = f.lifecycle.ConfirmSubStatus(ctx, tx, projectID, req.SubStatus, req.Note); err != nil || !changed {
			return nil, err
		}
		message := fmt.Sprintf("The client confirmed %q on %s", req.SubStatus, p.Name)
		if req.Note != "" {
			message += ": " + req.Note
		}
		return newEvent(notification.EventSubStatusConfirmed, "Client confirmation",
			message, notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *Facade) ConfirmStage(ctx context.Context, actor Actor, projectID uuid.UUID, req ConfirmStageRequest) (*project.Project, error) {
	var p *project.Project
	err := f.run(ctx, actor, "confirm_stage", access.OpConfirmStage, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var (
			changed bool
			err     error
		)
		if p, changed, err = f.lifecycle.ConfirmStage(ctx, tx, projectID, req.Stage); err != nil || !changed {
			return nil, err
		}
		return newEvent(notification.EventStageConfirmed, "Stage approved",
			fmt.Sprintf("The client approved the %s stage of %s", req.Stage, p.Name),
			notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *Facade) AddRevision(ctx context.Context, actor Actor, projectID uuid.UUID, req AddRevisionRequest) (*project.Revision, error) {
	var revision *project.Revision
	err := f.run(ctx, actor, "add_revision", access.OpManageRevisions, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		revision, err = f.lifecycle.AddRevision(ctx, tx, projectID, req.Description, req.FreelancerID, req.Deadline)
		if err != nil {
			return nil, err
		}
		return newEvent(notification.EventRevisionAdded, "Revision requested",
			revision.Description, notification.ViewProjects, projectID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return revision, nil
}

// CompleteRevision stores the freelancer's hand-off and stamps the completion date once
func (f *Facade) CompleteRevision(ctx context.Context, actor Actor, projectID, revisionID uuid.UUID, req CompleteRevisionRequest) (*project.Revision, error) {
	var revision *project.Revision
	err := f.run(ctx, actor, "complete_revision", access.OpCompleteRevision, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		revision, err = f.lifecycle.CompleteRevision(ctx, tx, projectID, revisionID, project.RevisionUpdate{
			FreelancerNotes: req.FreelancerNotes,
			DriveLink:       req.DriveLink,
		})
		if err != nil {
			return nil, err
		}
		return newEvent(notification.EventRevisionCompleted, "Revision completed",
			revision.Description, notification.ViewProjects, projectID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return revision, nil
}

func (f *Facade) CreateContract(ctx context.Context, actor Actor, projectID uuid.UUID) (*project.Contract, error) {
	var contract *project.Contract
	err := f.run(ctx, actor, "create_contract", access.OpCreateContract, nil, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if contract, err = f.lifecycle.CreateContract(ctx, tx, projectID); err != nil {
			return nil, err
		}
		return newEvent(notification.EventContractCreated, "Contract drafted",
			"A contract is ready for signatures", notification.ViewProjects, projectID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (f *Facade) SignContract(ctx context.Context, actor Actor, contractID uuid.UUID, req SignContractRequest) (*project.Contract, error) {
	var contract *project.Contract
	err := f.run(ctx, actor, "sign_contract", access.OpSignContract, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if contract, err = f.lifecycle.SignContract(ctx, tx, contractID, req.Signer, req.Signature); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("The %s signature was added", req.Signer)
		if contract.IsExecuted() {
			message = "Both parties have signed the contract"
		}
		return newEvent(notification.EventContractSigned, "Contract signed",
			message, notification.ViewProjects, contract.ProjectID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (f *Facade) SignInvoice(ctx context.Context, actor Actor, projectID uuid.UUID, req SignRequest) (*project.Project, error) {
	var p *project.Project
	err := f.run(ctx, actor, "sign_invoice", access.OpSignInvoice, &req, func(ctx context.Context, tx store.Tx) (*notification.Event, error) {
		var err error
		if p, err = f.lifecycle.SignInvoice(ctx, tx, projectID, req.Signature); err != nil {
			return nil, err
		}
		return newEvent(notification.EventInvoiceSigned, "Invoice signed",
			fmt.Sprintf("The invoice for %s was signed", p.Name),
			notification.ViewProjects, p.ID.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
