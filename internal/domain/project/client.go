package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Client is the customer a project is booked for
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClient(name, email, phone string) (*Client, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, shared.Validation("client name cannot be empty")
	}
	if email == "" {
		return nil, shared.Validation("client email cannot be empty")
	}

	return &Client{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now().UTC(),
	}, nil
}
