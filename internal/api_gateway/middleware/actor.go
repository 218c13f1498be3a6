package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ActorRoleHeader carries the role asserted by the upstream auth layer
	ActorRoleHeader = "X-Actor-Role"
	ActorIDHeader   = "X-Actor-ID"

	ActorRoleKey = "actor_role"
	ActorIDKey   = "actor_id"

	// DefaultRole applies to requests that arrive without a role, such as the public booking form
	DefaultRole = "PUBLIC"
)

// Actor records who the caller claims to be. Authentication happens upstream;
// the engine's permission gate decides what the role may do.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToUpper(strings.TrimSpace(c.GetHeader(ActorRoleHeader)))
		if role == "" {
			role = DefaultRole
		}

		c.Set(ActorRoleKey, role)
		c.Set(ActorIDKey, strings.TrimSpace(c.GetHeader(ActorIDHeader)))

		c.Next()
	}
}

func GetActorRole(c *gin.Context) string {
	if role := c.GetString(ActorRoleKey); role != "" {
		return role
	}
	return DefaultRole
}

func GetActorID(c *gin.Context) string {
	return c.GetString(ActorIDKey)
}
