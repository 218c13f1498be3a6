package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

func TestPolicy_HasPermission(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleVendor, OpPayFreelancerBatch, true},
		{RoleAdmin, OpSignInvoice, true},
		{RoleFinance, OpRecordClientPayment, true},
		{RoleFinance, OpSignContract, false},
		{RoleFreelancer, OpCompleteRevision, true},
		{RoleFreelancer, OpApplyTransaction, false},
		{RoleClient, OpSignContract, true},
		{RoleClient, OpSignInvoice, false},
		{RolePublic, OpSubmitPublicBooking, true},
		{RolePublic, OpQuotePromo, true},
		{RolePublic, OpReadProjects, false},
		{Role("INTRUDER"), OpReadProjects, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, p.HasPermission(tt.role, tt.op))
		})
	}
}

func TestCheck(t *testing.T) {
	p := NewPolicy()
	assert.NoError(t, Check(p, RoleVendor, OpGrantReward))

	err := Check(p, RoleClient, OpGrantReward)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "grant_reward")
}
