package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Signer identifies which party signs a contract
type Signer string

const (
	SignerClient Signer = "CLIENT"
	SignerVendor Signer = "VENDOR"
)

func ParseSigner(s string) (Signer, error) {
	switch Signer(strings.ToUpper(strings.TrimSpace(s))) {
	case SignerClient:
		return SignerClient, nil
	case SignerVendor:
		return SignerVendor, nil
	}
	return "", shared.Validation("unknown signer %q", s)
}

// Contract is executed once both parties have signed; that state is derived, never stored
type Contract struct {
	ID              uuid.UUID        `json:"id"`
	ProjectID       uuid.UUID        `json:"project_id"`
	ClientSignature shared.Signature `json:"client_signature,omitempty"`
	VendorSignature shared.Signature `json:"vendor_signature,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func NewContract(projectID uuid.UUID) *Contract {
	return &Contract{
		ID:        uuid.New(),
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
	}
}

// Sign sets the signer's signature exactly once
func (c *Contract) Sign(signer Signer, signature string) error {
	switch signer {
	case SignerClient:
		return shared.Sign(&c.ClientSignature, signature, "contract", c.ID.String())
	case SignerVendor:
		return shared.Sign(&c.VendorSignature, signature, "contract", c.ID.String())
	}
	return shared.Validation("unknown signer %q", signer)
}

func (c *Contract) IsExecuted() bool {
	return c.ClientSignature.IsSet() && c.VendorSignature.IsSet()
}
