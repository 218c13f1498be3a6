package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

var projectColumnNames = []string{
	"id", "client_id", "name", "project_type", "event_date", "status", "active_sub_status",
	"confirmed_sub_statuses", "client_sub_status_notes",
	"design_confirmed", "editing_confirmed", "printing_confirmed", "delivery_confirmed",
	"invoice_signature", "total_cost", "promo_code_id", "version", "created_at", "updated_at",
}

var revisionColumnNames = []string{
	"id", "project_id", "description", "freelancer_id", "status", "freelancer_notes", "drive_link",
	"deadline", "completed_date", "created_at",
}

func TestProjectRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProjectRepository(newTestLogger(), mock)
	id := uuid.New()
	now := time.Now()
	invoice := "vendor"

	t.Run("attaches revisions", func(t *testing.T) {
		projectRows := pgxmock.NewRows(projectColumnNames).
			AddRow(id, uuid.New(), "Ana & Budi", "Wedding", (*time.Time)(nil), project.StatusInProgress, "Editing",
				[]string{"Editing"}, map[string]string{"Editing": "looks great"},
				true, true, false, false,
				&invoice, int64(12000000), (*uuid.UUID)(nil), 4, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(selectProjectQuery)).WithArgs(id).WillReturnRows(projectRows)

		revisionRows := pgxmock.NewRows(revisionColumnNames).
			AddRow(uuid.New(), id, "Swap cover photo", (*uuid.UUID)(nil), project.RevisionPending, "", "",
				(*time.Time)(nil), (*time.Time)(nil), now)
		mock.ExpectQuery(regexp.QuoteMeta(selectRevisionsQuery)).
			WithArgs([]uuid.UUID{id}).
			WillReturnRows(revisionRows)

		p, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, project.StatusInProgress, p.Status)
		assert.Equal(t, shared.Signature("vendor"), p.InvoiceSignature)
		assert.True(t, p.Stages.Editing)
		require.Len(t, p.Revisions, 1)
		assert.Equal(t, "Swap cover photo", p.Revisions[0].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectProjectQuery)).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		p, err := repo.GetByID(ctx, id)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProjectRepository(newTestLogger(), mock)
	now := time.Now()
	p := &project.Project{
		ID:                   uuid.New(),
		Status:               project.StatusConfirmed,
		ConfirmedSubStatuses: []string{},
		ClientSubStatusNotes: map[string]string{},
		TotalCost:            5000000,
		Version:              2,
		UpdatedAt:            now,
	}
	expectUpdate := func() *pgxmock.ExpectedExec {
		return mock.ExpectExec(regexp.QuoteMeta(updateProjectQuery)).
			WithArgs(p.Status, p.ActiveSubStatus, p.ConfirmedSubStatuses, p.ClientSubStatusNotes,
				false, false, false, false, (*string)(nil), p.TotalCost, p.PromoCodeID,
				2, now, p.ID, 1)
	}

	t.Run("success", func(t *testing.T) {
		expectUpdate().WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		expectUpdate().WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, p)
		assert.ErrorIs(t, err, shared.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_UpdateRevision(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProjectRepository(newTestLogger(), mock)
	done := time.Now()
	rev := &project.Revision{
		ID:              uuid.New(),
		ProjectID:       uuid.New(),
		Status:          project.RevisionCompleted,
		FreelancerNotes: "done",
		DriveLink:       "https://drive.example/x",
		CompletedDate:   &done,
	}

	mock.ExpectExec(regexp.QuoteMeta(updateRevisionQuery)).
		WithArgs(rev.Status, rev.FreelancerNotes, rev.DriveLink, rev.CompletedDate, rev.ID, rev.ProjectID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateRevision(ctx, rev)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
