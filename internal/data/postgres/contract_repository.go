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

const (
	insertContractQuery = `
		INSERT INTO contracts (id, project_id, client_signature, vendor_signature, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	selectContractQuery = `
		SELECT id, project_id, client_signature, vendor_signature, created_at
		FROM contracts
		WHERE id = $1
	`
	listContractsByProjectQuery = `
		SELECT id, project_id, client_signature, vendor_signature, created_at
		FROM contracts
		WHERE project_id = $1
		ORDER BY created_at, id
	`
	signContractClientQuery = `
		UPDATE contracts SET client_signature = $1 WHERE id = $2 AND client_signature IS NULL
	`
	signContractVendorQuery = `
		UPDATE contracts SET vendor_signature = $1 WHERE id = $2 AND vendor_signature IS NULL
	`
)

// ContractRepository implements project.ContractRepository for PostgreSQL
type ContractRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewContractRepository(logger *slog.Logger, querier persistence.Querier) *ContractRepository {
	return &ContractRepository{querier: querier, logger: logger}
}

func (r *ContractRepository) WithTx(tx pgx.Tx) *ContractRepository {
	return &ContractRepository{querier: tx, logger: r.logger}
}

func scanContract(row pgx.Row) (*project.Contract, error) {
	var (
		c               project.Contract
		clientSignature *string
		vendorSignature *string
	)
	if err := row.Scan(&c.ID, &c.ProjectID, &clientSignature, &vendorSignature, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ClientSignature = shared.SignatureFromPtr(clientSignature)
	c.VendorSignature = shared.SignatureFromPtr(vendorSignature)
	return &c, nil
}

func (r *ContractRepository) Create(ctx context.Context, c *project.Contract) error {
	_, err := r.querier.Exec(ctx, insertContractQuery,
		c.ID, c.ProjectID, c.ClientSignature.Ptr(), c.VendorSignature.Ptr(), c.CreatedAt)
	if err != nil {
		return dbError(r.logger, err, "create contract", "contract", c.ID.String())
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Contract, error) {
	c, err := scanContract(r.querier.QueryRow(ctx, selectContractQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("contract", id.String())
		}
		return nil, dbError(r.logger, err, "get contract", "contract", id.String())
	}
	return c, nil
}

func (r *ContractRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*project.Contract, error) {
	rows, err := r.querier.Query(ctx, listContractsByProjectQuery, projectID)
	if err != nil {
		return nil, dbError(r.logger, err, "list contracts", "contract", projectID.String())
	}
	defer rows.Close()

	contracts := []*project.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, dbError(r.logger, err, "scan contract", "contract", "")
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate contracts", "contract", "")
	}
	return contracts, nil
}

// SetSignature writes the signer's column only while it is still NULL
func (r *ContractRepository) SetSignature(ctx context.Context, id uuid.UUID, signer project.Signer, signature shared.Signature) error {
	var query string
	switch signer {
	case project.SignerClient:
		query = signContractClientQuery
	case project.SignerVendor:
		query = signContractVendorQuery
	default:
		return shared.Validation("unknown signer %q", signer)
	}

	result, err := r.querier.Exec(ctx, query, string(signature), id)
	if err != nil {
		return dbError(r.logger, err, "sign contract", "contract", id.String())
	}
	if result.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return shared.AlreadySigned("contract", id.String())
}
