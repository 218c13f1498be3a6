package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/middleware"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// ErrorInfo carries the error kind and a message fit for display
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

var statusByKind = map[shared.ErrorKind]int{
	shared.KindNotFound:                http.StatusNotFound,
	shared.KindInsufficientFunds:       http.StatusUnprocessableEntity,
	shared.KindAlreadySigned:           http.StatusConflict,
	shared.KindAlreadyCompleted:        http.StatusConflict,
	shared.KindAlreadyPaid:             http.StatusConflict,
	shared.KindPromoExpiredOrExhausted: http.StatusUnprocessableEntity,
	shared.KindNothingToPay:            http.StatusUnprocessableEntity,
	shared.KindPermissionDenied:        http.StatusForbidden,
	shared.KindConflict:                http.StatusConflict,
	shared.KindUnavailable:             http.StatusServiceUnavailable,
	shared.KindValidation:              http.StatusBadRequest,
	shared.KindInvalidTransition:       http.StatusConflict,
	shared.KindDuplicate:               http.StatusConflict,
}

// StatusFor maps an engine error to its HTTP status; foreign errors are 500
func StatusFor(err error) int {
	if status, ok := statusByKind[shared.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func RespondWithData(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithList sends a page of results with the window it was read with
func RespondWithList(c *gin.Context, data any, limit, offset, count int) {
	c.JSON(http.StatusOK, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta:          &MetaInfo{Limit: limit, Offset: offset, Count: count},
	})
}

// RespondError logs err and answers with its kind and user-facing message
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	status := StatusFor(err)
	code := string(shared.KindOf(err))
	if code == "" {
		code = "INTERNAL"
	}

	logger = logger.With("route", c.FullPath(), "status", status, "correlation_id", middleware.GetCorrelationID(c))
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "error", err)
	}

	_ = c.Error(err)
	RespondWithError(c, status, code, engine.UserMessage(err))
}

func RespondOK(c *gin.Context, data any) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data any) {
	RespondWithData(c, http.StatusCreated, data)
}

func RespondAccepted(c *gin.Context, data any) {
	RespondWithData(c, http.StatusAccepted, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, string(shared.KindValidation), message)
}
