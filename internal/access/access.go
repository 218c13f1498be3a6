// Package access is the capability gate in front of every engine operation.
package access

import (
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Role is the caller's role as asserted by the surrounding application
type Role string

const (
	RoleVendor     Role = "VENDOR"
	RoleAdmin      Role = "ADMIN"
	RoleFinance    Role = "FINANCE"
	RoleFreelancer Role = "FREELANCER"
	RoleClient     Role = "CLIENT"
	RolePublic     Role = "PUBLIC"
)

// Operation names a gated engine capability
type Operation string

const (
	OpSubmitPublicBooking   Operation = "submit_public_booking"
	OpRecordClientPayment   Operation = "record_client_payment"
	OpPayFreelancerBatch    Operation = "pay_freelancer_batch"
	OpApplyTransaction      Operation = "apply_transaction"
	OpSignTransaction       Operation = "sign_transaction"
	OpTransferPockets       Operation = "transfer_between_pockets"
	OpManageAccounts        Operation = "manage_accounts"
	OpGrantReward           Operation = "grant_reward"
	OpAssignTeamPayment     Operation = "assign_team_payment"
	OpRecordPayment         Operation = "record_payment"
	OpSignPaymentRecord     Operation = "sign_payment_record"
	OpManagePromoCodes      Operation = "manage_promo_codes"
	OpRedeemPromo           Operation = "redeem_promo"
	OpQuotePromo            Operation = "quote_promo"
	OpAdvanceStatus         Operation = "advance_status"
	OpConfirmSubStatus      Operation = "confirm_sub_status"
	OpConfirmStage          Operation = "confirm_stage"
	OpManageRevisions       Operation = "manage_revisions"
	OpCompleteRevision      Operation = "complete_revision"
	OpCreateContract        Operation = "create_contract"
	OpSignContract          Operation = "sign_contract"
	OpSignInvoice           Operation = "sign_invoice"
	OpReadFinance           Operation = "read_finance"
	OpReadProjects          Operation = "read_projects"
	OpReadNotifications     Operation = "read_notifications"
	OpMarkNotificationsRead Operation = "mark_notifications_read"
)

// Authorizer decides whether a role may perform an operation
type Authorizer interface {
	HasPermission(role Role, op Operation) bool
}

// Policy is a static role to operation table. Vendor and admin may do everything.
type Policy struct {
	grants map[Role]map[Operation]struct{}
}

func grant(ops ...Operation) map[Operation]struct{} {
	m := make(map[Operation]struct{}, len(ops))
	for _, op := range ops {
		m[op] = struct{}{}
	}
	return m
}

func NewPolicy() *Policy {
	return &Policy{
		grants: map[Role]map[Operation]struct{}{
			RoleFinance: grant(
				OpRecordClientPayment, OpPayFreelancerBatch, OpApplyTransaction, OpSignTransaction,
				OpTransferPockets, OpManageAccounts, OpGrantReward, OpAssignTeamPayment, OpRecordPayment,
				OpSignPaymentRecord, OpRedeemPromo, OpQuotePromo, OpReadFinance, OpReadProjects,
			),
			RoleFreelancer: grant(OpCompleteRevision, OpReadProjects),
			RoleClient: grant(
				OpConfirmSubStatus, OpConfirmStage, OpSignContract, OpReadProjects,
			),
			RolePublic: grant(OpSubmitPublicBooking, OpQuotePromo),
		},
	}
}

func (p *Policy) HasPermission(role Role, op Operation) bool {
	if role == RoleVendor || role == RoleAdmin {
		return true
	}
	ops, ok := p.grants[role]
	if !ok {
		return false
	}
	_, ok = ops[op]
	return ok
}

// Check returns PermissionDenied when the role lacks the operation
func Check(a Authorizer, role Role, op Operation) error {
	if a.HasPermission(role, op) {
		return nil
	}
	return shared.PermissionDenied(string(role), string(op))
}
