package handler

import (
	"github.com/google/uuid"
)

// PageParams is the limit/offset window for list endpoints
type PageParams struct {
	Limit  int `form:"limit" binding:"omitempty,min=0,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// TransactionQuery narrows GET /transactions
type TransactionQuery struct {
	PageParams
	CardID    string `form:"card_id" binding:"omitempty,uuid"`
	PocketID  string `form:"pocket_id" binding:"omitempty,uuid"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
}

// SetActiveRequest toggles a promo code
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ClientPaymentBody is RecordClientPayment without the project id, which comes from the path
type ClientPaymentBody struct {
	Amount         int64      `json:"amount"`
	CardID         uuid.UUID  `json:"card_id"`
	PocketID       *uuid.UUID `json:"pocket_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// QueuedIntentResponse answers an intent accepted for asynchronous processing
type QueuedIntentResponse struct {
	IntentID string `json:"intent_id"`
	Status   string `json:"status"`
}

type BalanceResponse struct {
	TeamMemberID string `json:"team_member_id"`
	Balance      int64  `json:"balance"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
