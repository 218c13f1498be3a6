package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
	"github.com/vendor-ops-ledger/internal/domain/ledger"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// FinanceHandler serves cards, pockets, transactions and promo codes
type FinanceHandler struct {
	finance service.FinanceService
	logger  *slog.Logger
}

func NewFinanceHandler(logger *slog.Logger, finance service.FinanceService) *FinanceHandler {
	return &FinanceHandler{
		finance: finance,
		logger:  logger,
	}
}

func (h *FinanceHandler) CreateCard(c *gin.Context) {
	var req engine.CreateCardRequest
	if !bindJSON(c, &req) {
		return
	}
	card, err := h.finance.CreateCard(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, card)
}

func (h *FinanceHandler) ListCards(c *gin.Context) {
	cards, err := h.finance.ListCards(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, cards)
}

func (h *FinanceHandler) CreatePocket(c *gin.Context) {
	var req engine.CreatePocketRequest
	if !bindJSON(c, &req) {
		return
	}
	pocket, err := h.finance.CreatePocket(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, pocket)
}

func (h *FinanceHandler) ListPockets(c *gin.Context) {
	pockets, err := h.finance.ListPockets(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, pockets)
}

func (h *FinanceHandler) Transfer(c *gin.Context) {
	var req engine.TransferRequest
	if !bindJSON(c, &req) {
		return
	}
	transfer, err := h.finance.TransferBetweenPockets(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, transfer)
}

func (h *FinanceHandler) ApplyTransaction(c *gin.Context) {
	var req engine.ApplyTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.finance.ApplyTransaction(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, txn)
}

func (h *FinanceHandler) SignTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req engine.SignRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.finance.SignTransaction(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, txn)
}

// ListTransactions filters by card, pocket or project
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := ledger.TransactionFilter{
		CardID:    optionalID(query.CardID),
		PocketID:  optionalID(query.PocketID),
		ProjectID: optionalID(query.ProjectID),
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	txns, err := h.finance.ListTransactions(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondWithList(c, txns, query.Limit, query.Offset, len(txns))
}

func (h *FinanceHandler) CreatePromoCode(c *gin.Context) {
	var req engine.CreatePromoCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.finance.CreatePromoCode(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, code)
}

func (h *FinanceHandler) ListPromoCodes(c *gin.Context) {
	codes, err := h.finance.ListPromoCodes(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, codes)
}

func (h *FinanceHandler) SetPromoActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.finance.SetPromoActive(c.Request.Context(), actorFrom(c), id, *req.Active)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, code)
}

// QuotePromo prices an amount without consuming a use
func (h *FinanceHandler) QuotePromo(c *gin.Context) {
	var req engine.PromoRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.finance.QuotePromo(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, quote)
}

func (h *FinanceHandler) RedeemPromo(c *gin.Context) {
	var req engine.PromoRequest
	if !bindJSON(c, &req) {
		return
	}
	redemption, err := h.finance.RedeemPromo(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, redemption)
}
