package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// TeamHandler serves freelancer payments and reward points
type TeamHandler struct {
	team   service.TeamService
	queue  service.IntentQueue
	logger *slog.Logger
}

func NewTeamHandler(logger *slog.Logger, team service.TeamService, queue service.IntentQueue) *TeamHandler {
	return &TeamHandler{
		team:   team,
		queue:  queue,
		logger: logger,
	}
}

func (h *TeamHandler) AssignPayment(c *gin.Context) {
	var req engine.AssignTeamPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.team.AssignTeamPayment(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, payment)
}

func (h *TeamHandler) ListPayments(c *gin.Context) {
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}
	payments, err := h.team.ListTeamPayments(c.Request.Context(), actorFrom(c), memberID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, payments)
}

// RecordPayment settles payments without moving money on the ledger
func (h *TeamHandler) RecordPayment(c *gin.Context) {
	var req engine.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.team.RecordPayment(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, record)
}

func (h *TeamHandler) ListPaymentRecords(c *gin.Context) {
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}
	records, err := h.team.ListPaymentRecords(c.Request.Context(), actorFrom(c), memberID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, records)
}

func (h *TeamHandler) SignPaymentRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SignRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.team.SignPaymentRecord(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, record)
}

// PayFreelancer settles payments and posts the payout transaction together
func (h *TeamHandler) PayFreelancer(c *gin.Context) {
	var req engine.PayFreelancerBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.team.PayFreelancerBatch(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, result)
}

func (h *TeamHandler) QueuePayout(c *gin.Context) {
	if h.queue == nil {
		RespondError(c, h.logger, shared.Unavailable("intent queue is not configured"))
		return
	}
	var req engine.PayFreelancerBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	intentID, err := h.queue.Enqueue(c.Request.Context(), actorFrom(c), shared.IntentPayFreelancerBatch, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondAccepted(c, QueuedIntentResponse{IntentID: intentID.String(), Status: "QUEUED"})
}

func (h *TeamHandler) GrantReward(c *gin.Context) {
	var req engine.GrantRewardRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.team.GrantReward(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, entry)
}

func (h *TeamHandler) ListRewards(c *gin.Context) {
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}
	entries, err := h.team.ListRewards(c.Request.Context(), actorFrom(c), memberID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, entries)
}

func (h *TeamHandler) RewardBalance(c *gin.Context) {
	memberID, ok := pathID(c, "memberId")
	if !ok {
		return
	}
	balance, err := h.team.RewardBalance(c.Request.Context(), actorFrom(c), memberID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, BalanceResponse{TeamMemberID: memberID.String(), Balance: balance})
}
