package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const (
	// A concurrent insert of the same email waits for the other transaction,
	// then yields no row; the caller re-reads the committed client.
	upsertClientQuery = `
		INSERT INTO clients (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, name, email, phone, created_at
	`
	selectClientQuery = `
		SELECT id, name, email, phone, created_at
		FROM clients
		WHERE id = $1
	`
	selectClientByEmailQuery = `
		SELECT id, name, email, phone, created_at
		FROM clients
		WHERE email = $1
	`
	listClientsQuery = `
		SELECT id, name, email, phone, created_at
		FROM clients
		ORDER BY created_at, id
	`
)

// ClientRepository implements project.ClientRepository for PostgreSQL
type ClientRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewClientRepository(logger *slog.Logger, querier persistence.Querier) *ClientRepository {
	return &ClientRepository{querier: querier, logger: logger}
}

func (r *ClientRepository) WithTx(tx pgx.Tx) *ClientRepository {
	return &ClientRepository{querier: tx, logger: r.logger}
}

func scanClient(row pgx.Row) (*project.Client, error) {
	var c project.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Upsert(ctx context.Context, c *project.Client) (*project.Client, error) {
	stored, err := scanClient(r.querier.QueryRow(ctx, upsertClientQuery, c.ID, c.Name, c.Email, c.Phone, c.CreatedAt))
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, dbError(r.logger, err, "upsert client", "client", c.Email)
	}

	existing, err := r.GetByEmail(ctx, c.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, shared.Conflict("client", c.Email, errors.New("email registered but not visible"))
	}
	return existing, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Client, error) {
	c, err := scanClient(r.querier.QueryRow(ctx, selectClientQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("client", id.String())
		}
		return nil, dbError(r.logger, err, "get client", "client", id.String())
	}
	return c, nil
}

// GetByEmail returns nil, nil when no client has the email
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*project.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	c, err := scanClient(r.querier.QueryRow(ctx, selectClientByEmailQuery, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(r.logger, err, "get client by email", "client", email)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*project.Client, error) {
	rows, err := r.querier.Query(ctx, listClientsQuery)
	if err != nil {
		return nil, dbError(r.logger, err, "list clients", "client", "")
	}
	defer rows.Close()

	clients := []*project.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan client", "client", "")
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate clients", "client", "")
	}
	return clients, nil
}
