package project

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Status is a position in the project pipeline
type Status string

const (
	StatusLead       Status = "LEAD"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDelivered  Status = "DELIVERED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var pipeline = map[Status]Status{
	StatusLead:       StatusConfirmed,
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusDelivered,
	StatusDelivered:  StatusCompleted,
}

func (s Status) Valid() bool {
	_, ok := pipeline[s]
	return ok || s == StatusCompleted || s == StatusCancelled
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the following pipeline state, false for terminal states
func (s Status) Next() (Status, bool) {
	next, ok := pipeline[s]
	return next, ok
}

// CanTransitionTo allows exactly one step forward, or cancellation from any non-terminal state
func (s Status) CanTransitionTo(to Status) bool {
	if s.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	next, ok := s.Next()
	return ok && next == to
}

// Project carries the lifecycle state of a booked job
type Project struct {
	ID                   uuid.UUID          `json:"id"`
	ClientID             uuid.UUID          `json:"client_id"`
	Name                 string             `json:"name"`
	ProjectType          string             `json:"project_type,omitempty"`
	EventDate            *time.Time         `json:"event_date,omitempty"`
	Status               Status             `json:"status"`
	ActiveSubStatus      string             `json:"active_sub_status,omitempty"`
	ConfirmedSubStatuses []string           `json:"confirmed_sub_statuses"`
	ClientSubStatusNotes map[string]string  `json:"client_sub_status_notes"`
	Stages               StageConfirmations `json:"stages"`
	InvoiceSignature     shared.Signature   `json:"invoice_signature,omitempty"`
	TotalCost            int64              `json:"total_cost"`
	PromoCodeID          *uuid.UUID         `json:"promo_code_id,omitempty"`
	Revisions            []Revision         `json:"revisions"`
	Version              int                `json:"version"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// NewProject creates a project at the start of the pipeline
func NewProject(clientID uuid.UUID, name, projectType string, eventDate *time.Time, totalCost int64) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("project name cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.Validation("client is required")
	}
	if totalCost < 0 {
		return nil, shared.Validation("total cost cannot be negative")
	}

	now := time.Now().UTC()
	return &Project{
		ID:                   uuid.New(),
		ClientID:             clientID,
		Name:                 name,
		ProjectType:          strings.TrimSpace(projectType),
		EventDate:            eventDate,
		Status:               StatusLead,
		ConfirmedSubStatuses: []string{},
		ClientSubStatusNotes: map[string]string{},
		TotalCost:            totalCost,
		Revisions:            []Revision{},
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func (p *Project) touch() {
	p.Version++
	p.UpdatedAt = time.Now().UTC()
}

// TransitionTo moves the project along the pipeline
func (p *Project) TransitionTo(to Status) error {
	if !to.Valid() {
		return shared.Validation("unknown project status %q", to)
	}
	if !p.Status.CanTransitionTo(to) {
		return shared.InvalidTransition("project", p.ID.String(), string(p.Status), string(to))
	}
	p.Status = to
	p.touch()
	return nil
}

// SetActiveSubStatus records which checklist item the vendor is working on
func (p *Project) SetActiveSubStatus(subStatus string) error {
	if p.Status.IsTerminal() {
		return shared.InvalidTransition("project", p.ID.String(), string(p.Status), string(p.Status))
	}
	p.ActiveSubStatus = strings.TrimSpace(subStatus)
	p.touch()
	return nil
}

// ConfirmSubStatus appends a client confirmation. Confirming an already
// confirmed sub-status is a no-op and reports changed == false.
func (p *Project) ConfirmSubStatus(subStatus, note string) (bool, error) {
	subStatus = strings.TrimSpace(subStatus)
	if subStatus == "" {
		return false, shared.Validation("sub-status cannot be empty")
	}
	if p.Status == StatusCancelled {
		return false, shared.InvalidTransition("project", p.ID.String(), string(p.Status), string(p.Status))
	}
	if slices.Contains(p.ConfirmedSubStatuses, subStatus) {
		return false, nil
	}

	p.ConfirmedSubStatuses = append(p.ConfirmedSubStatuses, subStatus)
	if note = strings.TrimSpace(note); note != "" {
		if p.ClientSubStatusNotes == nil {
			p.ClientSubStatusNotes = map[string]string{}
		}
		p.ClientSubStatusNotes[subStatus] = note
	}
	p.touch()
	return true, nil
}

// ConfirmStage sets a stage confirmation flag; repeated confirmations are no-ops
func (p *Project) ConfirmStage(stage Stage) (bool, error) {
	if p.Status == StatusCancelled {
		return false, shared.InvalidTransition("project", p.ID.String(), string(p.Status), string(p.Status))
	}
	changed, err := p.Stages.Confirm(stage)
	if err != nil || !changed {
		return false, err
	}
	p.touch()
	return true, nil
}

// SignInvoice captures the write-once invoice signature
func (p *Project) SignInvoice(signature string) error {
	if err := shared.Sign(&p.InvoiceSignature, signature, "project_invoice", p.ID.String()); err != nil {
		return err
	}
	p.touch()
	return nil
}

// Revision returns the revision with the given id
func (p *Project) Revision(id uuid.UUID) (*Revision, error) {
	for i := range p.Revisions {
		if p.Revisions[i].ID == id {
			return &p.Revisions[i], nil
		}
	}
	return nil, shared.NotFound("revision", id.String())
}

// Clone returns a deep copy safe to hand to readers
func (p *Project) Clone() *Project {
	c := *p
	c.ConfirmedSubStatuses = slices.Clone(p.ConfirmedSubStatuses)
	if c.ConfirmedSubStatuses == nil {
		c.ConfirmedSubStatuses = []string{}
	}
	c.ClientSubStatusNotes = make(map[string]string, len(p.ClientSubStatusNotes))
	for k, v := range p.ClientSubStatusNotes {
		c.ClientSubStatusNotes[k] = v
	}
	c.Revisions = slices.Clone(p.Revisions)
	if c.Revisions == nil {
		c.Revisions = []Revision{}
	}
	return &c
}
