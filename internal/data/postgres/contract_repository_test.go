package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/project"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

func TestContractRepository_SetSignature(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewContractRepository(newTestLogger(), mock)
	id := uuid.New()
	now := time.Now()
	clientSig := "Ana"

	t.Run("client signs", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signContractClientQuery)).
			WithArgs("Ana", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SetSignature(ctx, id, project.SignerClient, "Ana"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("client signature is write-once", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signContractClientQuery)).
			WithArgs("Mallory", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(regexp.QuoteMeta(selectContractQuery)).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "client_signature", "vendor_signature", "created_at"}).
				AddRow(id, uuid.New(), &clientSig, (*string)(nil), now))

		err := repo.SetSignature(ctx, id, project.SignerClient, "Mallory")
		assert.ErrorIs(t, err, shared.ErrAlreadySigned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vendor uses its own column", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(signContractVendorQuery)).
			WithArgs("Studio", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SetSignature(ctx, id, project.SignerVendor, "Studio"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown signer", func(t *testing.T) {
		err := repo.SetSignature(ctx, id, project.Signer("WITNESS"), "x")
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
