package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// ProjectHandler serves bookings, client payments and the project lifecycle
type ProjectHandler struct {
	projects service.ProjectService
	queue    service.IntentQueue
	logger   *slog.Logger
}

// NewProjectHandler builds the handler; queue may be nil, which disables queued bookings
func NewProjectHandler(logger *slog.Logger, projects service.ProjectService, queue service.IntentQueue) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		queue:    queue,
		logger:   logger,
	}
}

// SubmitBooking runs the public booking form inline
func (h *ProjectHandler) SubmitBooking(c *gin.Context) {
	var req engine.SubmitPublicBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.projects.SubmitPublicBooking(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, result)
}

// QueueBooking hands the booking to the intent processor and answers 202
func (h *ProjectHandler) QueueBooking(c *gin.Context) {
	if h.queue == nil {
		RespondError(c, h.logger, shared.Unavailable("intent queue is not configured"))
		return
	}
	var req engine.SubmitPublicBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	intentID, err := h.queue.Enqueue(c.Request.Context(), actorFrom(c), shared.IntentSubmitPublicBooking, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondAccepted(c, QueuedIntentResponse{IntentID: intentID.String(), Status: "QUEUED"})
}

func (h *ProjectHandler) RecordClientPayment(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body ClientPaymentBody
	if !bindJSON(c, &body) {
		return
	}
	result, err := h.projects.RecordClientPayment(c.Request.Context(), actorFrom(c), engine.RecordClientPaymentRequest{
		ProjectID:      projectID,
		Amount:         body.Amount,
		CardID:         body.CardID,
		PocketID:       body.PocketID,
		Description:    body.Description,
		IdempotencyKey: body.IdempotencyKey,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, result)
}

func (h *ProjectHandler) PaymentSummary(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.projects.ProjectPaymentSummary(c.Request.Context(), actorFrom(c), projectID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, summary)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.GetProject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.ListProjects(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, projects)
}

func (h *ProjectHandler) ListClients(c *gin.Context) {
	clients, err := h.projects.ListClients(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, clients)
}

func (h *ProjectHandler) AdvanceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.AdvanceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.AdvanceStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}

func (h *ProjectHandler) SetActiveSubStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SubStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.SetActiveSubStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}

func (h *ProjectHandler) ConfirmSubStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SubStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.ConfirmSubStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}

func (h *ProjectHandler) ConfirmStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.ConfirmStageRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.ConfirmStage(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}

func (h *ProjectHandler) AddRevision(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.AddRevisionRequest
	if !bindJSON(c, &req) {
		return
	}
	revision, err := h.projects.AddRevision(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, revision)
}

func (h *ProjectHandler) CompleteRevision(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	revisionID, ok := pathID(c, "revisionId")
	if !ok {
		return
	}
	var req engine.CompleteRevisionRequest
	if !bindJSON(c, &req) {
		return
	}
	revision, err := h.projects.CompleteRevision(c.Request.Context(), actorFrom(c), projectID, revisionID, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, revision)
}

func (h *ProjectHandler) CreateContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.projects.CreateContract(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, contract)
}

func (h *ProjectHandler) ListContracts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contracts, err := h.projects.ListContracts(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, contracts)
}

func (h *ProjectHandler) SignContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SignContractRequest
	if !bindJSON(c, &req) {
		return
	}
	contract, err := h.projects.SignContract(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, contract)
}

func (h *ProjectHandler) SignInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SignRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.SignInvoice(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, p)
}
