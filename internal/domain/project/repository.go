package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Repository defines project persistence operations. Revisions are loaded with the project.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Project, error)

	// Update persists lifecycle fields; Version must be one ahead of the stored row.
	// A stored invoice signature is never overwritten.
	Update(ctx context.Context, project *Project) error
	AddRevision(ctx context.Context, revision *Revision) error
	UpdateRevision(ctx context.Context, revision *Revision) error
}

// ContractRepository defines contract persistence operations
type ContractRepository interface {
	Create(ctx context.Context, contract *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Contract, error)

	// SetSignature writes the signer's signature only if none is stored yet
	SetSignature(ctx context.Context, id uuid.UUID, signer Signer, signature shared.Signature) error
}

// ClientRepository defines client persistence operations
type ClientRepository interface {
	// Upsert stores client unless its email is already registered, and
	// returns the stored client for that email either way
	Upsert(ctx context.Context, client *Client) (*Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// GetByEmail returns nil, nil when no client has the email
	GetByEmail(ctx context.Context, email string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
}
