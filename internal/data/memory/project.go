package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type projectRepository struct {
	tx *memTx
}

func (r *projectRepository) Create(ctx context.Context, p *project.Project) error {
	if _, ok := get(r.tx, projectRows, p.ID); ok {
		return shared.Duplicate("project", p.ID.String())
	}
	return stage(r.tx, projectRows, p.ID, p.Clone())
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := get(r.tx, projectRows, id)
	if !ok {
		return nil, shared.NotFound("project", id.String())
	}
	return p.Clone(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows := all(r.tx, projectRows)
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*project.Project, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *projectRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	if err := r.tx.lock(ctx, projectKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// locked returns the stored project after taking its row lock
func (r *projectRepository) locked(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	if err := r.tx.lock(ctx, projectKey(id)); err != nil {
		return nil, err
	}
	stored, ok := get(r.tx, projectRows, id)
	if !ok {
		return nil, shared.NotFound("project", id.String())
	}
	return stored, nil
}

// Update keeps stored revisions and an already stored invoice signature
func (r *projectRepository) Update(ctx context.Context, p *project.Project) error {
	stored, err := r.locked(ctx, p.ID)
	if err != nil {
		return err
	}
	if stored.Version != p.Version-1 {
		return shared.Conflict("project", p.ID.String(), errStaleVersion)
	}

	updated := p.Clone()
	updated.Revisions = slices.Clone(stored.Revisions)
	if stored.InvoiceSignature.IsSet() {
		updated.InvoiceSignature = stored.InvoiceSignature
	}
	return stage(r.tx, projectRows, p.ID, updated)
}

func (r *projectRepository) AddRevision(ctx context.Context, rev *project.Revision) error {
	stored, err := r.locked(ctx, rev.ProjectID)
	if err != nil {
		return err
	}
	if _, err := stored.Revision(rev.ID); err == nil {
		return shared.Duplicate("revision", rev.ID.String())
	}

	updated := stored.Clone()
	updated.Revisions = append(updated.Revisions, *rev)
	return stage(r.tx, projectRows, updated.ID, updated)
}

func (r *projectRepository) UpdateRevision(ctx context.Context, rev *project.Revision) error {
	stored, err := r.locked(ctx, rev.ProjectID)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return shared.NotFound("revision", rev.ID.String())
		}
		return err
	}

	updated := stored.Clone()
	target, err := updated.Revision(rev.ID)
	if err != nil {
		return err
	}
	target.Status = rev.Status
	target.FreelancerNotes = rev.FreelancerNotes
	target.DriveLink = rev.DriveLink
	target.CompletedDate = rev.CompletedDate
	return stage(r.tx, projectRows, updated.ID, updated)
}

func projectKey(id uuid.UUID) string {
	return "project:" + id.String()
}

type contractRepository struct {
	tx *memTx
}

func (r *contractRepository) Create(ctx context.Context, c *project.Contract) error {
	if _, ok := get(r.tx, contractRows, c.ID); ok {
		return shared.Duplicate("contract", c.ID.String())
	}
	if _, ok := get(r.tx, projectRows, c.ProjectID); !ok {
		return shared.NotFound("project", c.ProjectID.String())
	}
	return stage(r.tx, contractRows, c.ID, shallow(c))
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Contract, error) {
	c, ok := get(r.tx, contractRows, id)
	if !ok {
		return nil, shared.NotFound("contract", id.String())
	}
	return shallow(c), nil
}

func (r *contractRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*project.Contract, error) {
	var rows []*project.Contract
	for _, c := range all(r.tx, contractRows) {
		if c.ProjectID == projectID {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*project.Contract, 0, len(rows))
	for _, c := range rows {
		out = append(out, shallow(c))
	}
	return out, nil
}

func (r *contractRepository) SetSignature(ctx context.Context, id uuid.UUID, signer project.Signer, signature shared.Signature) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, "contract:"+id.String()); err != nil {
		return err
	}
	stored, ok := get(r.tx, contractRows, id)
	if !ok {
		return shared.NotFound("contract", id.String())
	}

	updated := shallow(stored)
	if err := updated.Sign(signer, string(signature)); err != nil {
		return err
	}
	return stage(r.tx, contractRows, id, updated)
}

type clientRepository struct {
	tx *memTx
}

func (r *clientRepository) Upsert(ctx context.Context, c *project.Client) (*project.Client, error) {
	if existing, _ := r.GetByEmail(ctx, c.Email); existing != nil {
		return existing, nil
	}
	if _, ok := get(r.tx, clientRows, c.ID); ok {
		return nil, shared.Duplicate("client", c.ID.String())
	}
	if err := stage(r.tx, clientRows, c.ID, shallow(c)); err != nil {
		return nil, err
	}
	return shallow(c), nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Client, error) {
	c, ok := get(r.tx, clientRows, id)
	if !ok {
		return nil, shared.NotFound("client", id.String())
	}
	return shallow(c), nil
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*project.Client, error) {
	email = strings.TrimSpace(email)
	for _, c := range all(r.tx, clientRows) {
		if strings.EqualFold(c.Email, email) {
			return shallow(c), nil
		}
	}
	return nil, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*project.Client, error) {
	rows := all(r.tx, clientRows)
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	out := make([]*project.Client, 0, len(rows))
	for _, c := range rows {
		out = append(out, shallow(c))
	}
	return out, nil
}
