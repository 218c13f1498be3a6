package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const projectColumns = `id, client_id, name, project_type, event_date, status, active_sub_status,
		       confirmed_sub_statuses, client_sub_status_notes,
		       design_confirmed, editing_confirmed, printing_confirmed, delivery_confirmed,
		       invoice_signature, total_cost, promo_code_id, version, created_at, updated_at`

const revisionColumns = `id, project_id, description, freelancer_id, status, freelancer_notes, drive_link,
		       deadline, completed_date, created_at`

const (
	insertProjectQuery = `
		INSERT INTO projects (id, client_id, name, project_type, event_date, status, active_sub_status,
		                      confirmed_sub_statuses, client_sub_status_notes,
		                      design_confirmed, editing_confirmed, printing_confirmed, delivery_confirmed,
		                      invoice_signature, total_cost, promo_code_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	selectProjectQuery = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`
	lockProjectQuery = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
		FOR UPDATE
	`
	listProjectsQuery = `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at, id
	`
	// invoice_signature is write-once; COALESCE keeps a stored value
	updateProjectQuery = `
		UPDATE projects
		SET status = $1, active_sub_status = $2, confirmed_sub_statuses = $3, client_sub_status_notes = $4,
		    design_confirmed = $5, editing_confirmed = $6, printing_confirmed = $7, delivery_confirmed = $8,
		    invoice_signature = COALESCE(invoice_signature, $9), total_cost = $10, promo_code_id = $11,
		    version = $12, updated_at = $13
		WHERE id = $14 AND version = $15
	`
	selectRevisionsQuery = `
		SELECT ` + revisionColumns + `
		FROM revisions
		WHERE project_id = ANY($1)
		ORDER BY created_at, id
	`
	insertRevisionQuery = `
		INSERT INTO revisions (id, project_id, description, freelancer_id, status, freelancer_notes, drive_link,
		                       deadline, completed_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateRevisionQuery = `
		UPDATE revisions
		SET status = $1, freelancer_notes = $2, drive_link = $3, completed_date = $4
		WHERE id = $5 AND project_id = $6
	`
)

// ProjectRepository implements project.Repository for PostgreSQL.
// Revisions live in their own table and are attached on every read.
type ProjectRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewProjectRepository(logger *slog.Logger, querier persistence.Querier) *ProjectRepository {
	return &ProjectRepository{querier: querier, logger: logger}
}

func (r *ProjectRepository) WithTx(tx pgx.Tx) *ProjectRepository {
	return &ProjectRepository{querier: tx, logger: r.logger}
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		p         project.Project
		signature *string
	)
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.Name,
		&p.ProjectType,
		&p.EventDate,
		&p.Status,
		&p.ActiveSubStatus,
		&p.ConfirmedSubStatuses,
		&p.ClientSubStatusNotes,
		&p.Stages.Design,
		&p.Stages.Editing,
		&p.Stages.Printing,
		&p.Stages.Delivery,
		&signature,
		&p.TotalCost,
		&p.PromoCodeID,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.InvoiceSignature = shared.SignatureFromPtr(signature)
	if p.ConfirmedSubStatuses == nil {
		p.ConfirmedSubStatuses = []string{}
	}
	if p.ClientSubStatusNotes == nil {
		p.ClientSubStatusNotes = map[string]string{}
	}
	p.Revisions = []project.Revision{}
	return &p, nil
}

func scanRevision(row pgx.Row) (*project.Revision, error) {
	var rev project.Revision
	err := row.Scan(
		&rev.ID,
		&rev.ProjectID,
		&rev.Description,
		&rev.FreelancerID,
		&rev.Status,
		&rev.FreelancerNotes,
		&rev.DriveLink,
		&rev.Deadline,
		&rev.CompletedDate,
		&rev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	_, err := r.querier.Exec(ctx, insertProjectQuery,
		p.ID,
		p.ClientID,
		p.Name,
		p.ProjectType,
		p.EventDate,
		p.Status,
		p.ActiveSubStatus,
		p.ConfirmedSubStatuses,
		p.ClientSubStatusNotes,
		p.Stages.Design,
		p.Stages.Editing,
		p.Stages.Printing,
		p.Stages.Delivery,
		p.InvoiceSignature.Ptr(),
		p.TotalCost,
		p.PromoCodeID,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return dbError(r.logger, err, "create project", "project", p.ID.String())
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return r.get(ctx, selectProjectQuery, id, "get project")
}

// LockForUpdate locks the project row; revisions are only written under this lock
func (r *ProjectRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return r.get(ctx, lockProjectQuery, id, "lock project for update")
}

func (r *ProjectRepository) get(ctx context.Context, query string, id uuid.UUID, op string) (*project.Project, error) {
	p, err := scanProject(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("project", id.String())
		}
		return nil, dbError(r.logger, err, op, "project", id.String())
	}
	if err := r.attachRevisions(ctx, []*project.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows, err := r.querier.Query(ctx, listProjectsQuery)
	if err != nil {
		return nil, dbError(r.logger, err, "list projects", "project", "")
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan project", "project", "")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate projects", "project", "")
	}
	rows.Close()

	if err := r.attachRevisions(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) attachRevisions(ctx context.Context, projects []*project.Project) error {
	if len(projects) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*project.Project, len(projects))
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.querier.Query(ctx, selectRevisionsQuery, ids)
	if err != nil {
		return dbError(r.logger, err, "list revisions", "revision", "")
	}
	defer rows.Close()

	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return dbError(r.logger, err, "scan revision", "revision", "")
		}
		if p, ok := byID[rev.ProjectID]; ok {
			p.Revisions = append(p.Revisions, *rev)
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(r.logger, err, "iterate revisions", "revision", "")
	}
	return nil
}

// Update persists lifecycle fields with an optimistic version check
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	result, err := r.querier.Exec(ctx, updateProjectQuery,
		p.Status,
		p.ActiveSubStatus,
		p.ConfirmedSubStatuses,
		p.ClientSubStatusNotes,
		p.Stages.Design,
		p.Stages.Editing,
		p.Stages.Printing,
		p.Stages.Delivery,
		p.InvoiceSignature.Ptr(),
		p.TotalCost,
		p.PromoCodeID,
		p.Version,
		p.UpdatedAt,
		p.ID,
		p.Version-1,
	)
	if err != nil {
		return dbError(r.logger, err, "update project", "project", p.ID.String())
	}
	if result.RowsAffected() == 0 {
		return shared.Conflict("project", p.ID.String(), errors.New("concurrent modification"))
	}
	return nil
}

func (r *ProjectRepository) AddRevision(ctx context.Context, rev *project.Revision) error {
	_, err := r.querier.Exec(ctx, insertRevisionQuery,
		rev.ID,
		rev.ProjectID,
		rev.Description,
		rev.FreelancerID,
		rev.Status,
		rev.FreelancerNotes,
		rev.DriveLink,
		rev.Deadline,
		rev.CompletedDate,
		rev.CreatedAt,
	)
	if err != nil {
		return dbError(r.logger, err, "create revision", "revision", rev.ID.String())
	}
	return nil
}

func (r *ProjectRepository) UpdateRevision(ctx context.Context, rev *project.Revision) error {
	result, err := r.querier.Exec(ctx, updateRevisionQuery,
		rev.Status,
		rev.FreelancerNotes,
		rev.DriveLink,
		rev.CompletedDate,
		rev.ID,
		rev.ProjectID,
	)
	if err != nil {
		return dbError(r.logger, err, "update revision", "revision", rev.ID.String())
	}
	if result.RowsAffected() == 0 {
		return shared.NotFound("revision", rev.ID.String())
	}
	return nil
}
