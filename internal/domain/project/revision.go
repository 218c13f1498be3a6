package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type RevisionStatus string

const (
	RevisionPending   RevisionStatus = "PENDING"
	RevisionCompleted RevisionStatus = "COMPLETED"
)

// Revision is a change request on a delivered piece of work
type Revision struct {
	ID              uuid.UUID      `json:"id"`
	ProjectID       uuid.UUID      `json:"project_id"`
	Description     string         `json:"description"`
	FreelancerID    *uuid.UUID     `json:"freelancer_id,omitempty"`
	Status          RevisionStatus `json:"status"`
	FreelancerNotes string         `json:"freelancer_notes,omitempty"`
	DriveLink       string         `json:"drive_link,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	CompletedDate   *time.Time     `json:"completed_date,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// RevisionUpdate is what the freelancer submits when finishing a revision
type RevisionUpdate struct {
	FreelancerNotes string `json:"freelancer_notes"`
	DriveLink       string `json:"drive_link"`
}

func NewRevision(projectID uuid.UUID, description string, freelancerID *uuid.UUID, deadline *time.Time) (*Revision, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.Validation("revision description cannot be empty")
	}

	return &Revision{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Description:  description,
		FreelancerID: freelancerID,
		Status:       RevisionPending,
		Deadline:     deadline,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Complete moves a pending revision to completed and stamps the completion date
func (r *Revision) Complete(update RevisionUpdate, now time.Time) error {
	if r.Status == RevisionCompleted {
		return shared.AlreadyCompleted("revision", r.ID.String())
	}

	r.Status = RevisionCompleted
	r.FreelancerNotes = strings.TrimSpace(update.FreelancerNotes)
	r.DriveLink = strings.TrimSpace(update.DriveLink)
	completed := now.UTC()
	r.CompletedDate = &completed
	return nil
}
