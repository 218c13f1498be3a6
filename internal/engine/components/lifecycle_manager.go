package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/store"
)

// LifecycleManagerImpl applies project state changes under the project row lock
type LifecycleManagerImpl struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLifecycleManager(logger *slog.Logger) service.LifecycleManager {
	return &LifecycleManagerImpl{logger: logger, now: time.Now}
}

// UpsertClient returns the client registered under email, creating it on first use
func (m *LifecycleManagerImpl) UpsertClient(ctx context.Context, tx store.Tx, name, email, phone string) (*project.Client, error) {
	candidate, err := project.NewClient(name, email, phone)
	if err != nil {
		return nil, err
	}

	stored, err := tx.Clients().Upsert(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if stored.ID != candidate.ID {
		m.logger.Debug("Reusing client", "client_id", stored.ID.String())
		return stored, nil
	}
	m.logger.Info("Client created", "client_id", stored.ID.String())
	return stored, nil
}

func (m *LifecycleManagerImpl) CreateProject(ctx context.Context, tx store.Tx, p *project.Project) error {
	if err := tx.Projects().Create(ctx, p); err != nil {
		return err
	}
	m.logger.Info("Project created", "project_id", p.ID.String(), "status", p.Status, "total_cost", p.TotalCost)
	return nil
}

// mutate locks the project, applies change and persists it when change reports a modification
func (m *LifecycleManagerImpl) mutate(ctx context.Context, tx store.Tx, projectID uuid.UUID, change func(p *project.Project) (bool, error)) (*project.Project, bool, error) {
	p, err := tx.Projects().LockForUpdate(ctx, projectID)
	if err != nil {
		return nil, false, err
	}
	changed, err := change(p)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return p, false, nil
	}
	if err := tx.Projects().Update(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (m *LifecycleManagerImpl) AdvanceStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, to project.Status) (*project.Project, error) {
	var from project.Status
	p, _, err := m.mutate(ctx, tx, projectID, func(p *project.Project) (bool, error) {
		from = p.Status
		return true, p.TransitionTo(to)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Project status changed", "project_id", projectID.String(), "from", from, "to", to)
	return p, nil
}

func (m *LifecycleManagerImpl) SetActiveSubStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, subStatus string) (*project.Project, error) {
	p, _, err := m.mutate(ctx, tx, projectID, func(p *project.Project) (bool, error) {
		return true, p.SetActiveSubStatus(subStatus)
	})
	return p, err
}

func (m *LifecycleManagerImpl) ConfirmSubStatus(ctx context.Context, tx store.Tx, projectID uuid.UUID, subStatus, note string) (*project.Project, bool, error) {
	p, changed, err := m.mutate(ctx, tx, projectID, func(p *project.Project) (bool, error) {
		return p.ConfirmSubStatus(subStatus, note)
	})
	if err == nil && !changed {
		m.logger.Debug("Sub-status already confirmed", "project_id", projectID.String(), "sub_status", subStatus)
	}
	return p, changed, err
}

func (m *LifecycleManagerImpl) ConfirmStage(ctx context.Context, tx store.Tx, projectID uuid.UUID, stage project.Stage) (*project.Project, bool, error) {
	return m.mutate(ctx, tx, projectID, func(p *project.Project) (bool, error) {
		return p.ConfirmStage(stage)
	})
}

func (m *LifecycleManagerImpl) AddRevision(ctx context.Context, tx store.Tx, projectID uuid.UUID, description string, freelancerID *uuid.UUID, deadline *time.Time) (*project.Revision, error) {
	p, err := tx.Projects().LockForUpdate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status == project.StatusCancelled {
		return nil, shared.InvalidTransition("project", projectID.String(), string(p.Status), string(p.Status))
	}

	rev, err := project.NewRevision(projectID, description, freelancerID, deadline)
	if err != nil {
		return nil, err
	}
	if err := tx.Projects().AddRevision(ctx, rev); err != nil {
		return nil, err
	}
	m.logger.Info("Revision added", "project_id", projectID.String(), "revision_id", rev.ID.String())
	return rev, nil
}

// CompleteRevision stamps the completion date once; a completed revision is left untouched
func (m *LifecycleManagerImpl) CompleteRevision(ctx context.Context, tx store.Tx, projectID, revisionID uuid.UUID, update project.RevisionUpdate) (*project.Revision, error) {
	p, err := tx.Projects().LockForUpdate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rev, err := p.Revision(revisionID)
	if err != nil {
		return nil, err
	}
	if err := rev.Complete(update, m.now()); err != nil {
		return nil, err
	}
	if err := tx.Projects().UpdateRevision(ctx, rev); err != nil {
		return nil, err
	}
	m.logger.Info("Revision completed", "project_id", projectID.String(), "revision_id", revisionID.String())
	return rev, nil
}

func (m *LifecycleManagerImpl) CreateContract(ctx context.Context, tx store.Tx, projectID uuid.UUID) (*project.Contract, error) {
	if _, err := tx.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	contract := project.NewContract(projectID)
	if err := tx.Contracts().Create(ctx, contract); err != nil {
		return nil, err
	}
	m.logger.Info("Contract created", "project_id", projectID.String(), "contract_id", contract.ID.String())
	return contract, nil
}

func (m *LifecycleManagerImpl) SignContract(ctx context.Context, tx store.Tx, contractID uuid.UUID, signer project.Signer, signature string) (*project.Contract, error) {
	contract, err := tx.Contracts().GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := contract.Sign(signer, signature); err != nil {
		return nil, err
	}

	stored := contract.ClientSignature
	if signer == project.SignerVendor {
		stored = contract.VendorSignature
	}
	if err := tx.Contracts().SetSignature(ctx, contractID, signer, stored); err != nil {
		return nil, err
	}
	m.logger.Info("Contract signed", "contract_id", contractID.String(), "signer", signer, "executed", contract.IsExecuted())
	return contract, nil
}

func (m *LifecycleManagerImpl) SignInvoice(ctx context.Context, tx store.Tx, projectID uuid.UUID, signature string) (*project.Project, error) {
	p, _, err := m.mutate(ctx, tx, projectID, func(p *project.Project) (bool, error) {
		return true, p.SignInvoice(signature)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Invoice signed", "project_id", projectID.String())
	return p, nil
}
