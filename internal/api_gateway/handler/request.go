package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/api_gateway/middleware"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
)

func actorFrom(c *gin.Context) engine.Actor {
	return engine.Actor{
		Role:          access.Role(middleware.GetActorRole(c)),
		ID:            middleware.GetActorID(c),
		CorrelationID: middleware.GetCorrelationID(c),
	}
}

// pathID parses a uuid path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		RespondBadRequest(c, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body; the engine validates the decoded shape
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func optionalID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id := uuid.MustParse(raw)
	return &id
}
