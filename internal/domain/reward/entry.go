package reward

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Entry is one append-only movement of a team member's reward points
type Entry struct {
	ID           uuid.UUID  `json:"id"`
	TeamMemberID uuid.UUID  `json:"team_member_id"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	Delta        int64      `json:"delta"`
	Reason       string     `json:"reason"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Grant is a request to add (or, when negative, spend) reward points
type Grant struct {
	TeamMemberID uuid.UUID  `json:"team_member_id"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	Points       int64      `json:"points"`
	Reason       string     `json:"reason"`
}

func NewEntry(grant Grant) (*Entry, error) {
	if grant.TeamMemberID == uuid.Nil {
		return nil, shared.Validation("team member is required")
	}
	if grant.Points == 0 {
		return nil, shared.Validation("reward points must be non-zero")
	}
	reason := strings.TrimSpace(grant.Reason)
	if reason == "" {
		return nil, shared.Validation("reward reason is required")
	}

	return &Entry{
		ID:           uuid.New(),
		TeamMemberID: grant.TeamMemberID,
		ProjectID:    grant.ProjectID,
		Delta:        grant.Points,
		Reason:       reason,
		Timestamp:    time.Now().UTC(),
	}, nil
}

// Balance sums entries; it is the only way a reward balance is computed
func Balance(entries []*Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Delta
	}
	return total
}

// Repository manages the append-only reward ledger
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*Entry, error)
	BalanceOf(ctx context.Context, memberID uuid.UUID) (int64, error)

	// LockMember serializes reward spending for one member until the store transaction ends
	LockMember(ctx context.Context, memberID uuid.UUID) error
}
