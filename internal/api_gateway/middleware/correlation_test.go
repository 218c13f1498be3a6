package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "uses correlation header", headers: map[string]string{CorrelationIDHeader: "corr-1", RequestIDHeader: "req-1"}, want: "corr-1"},
		{name: "falls back to request id", headers: map[string]string{RequestIDHeader: "req-1"}, want: "req-1"},
		{name: "generates one when absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CorrelationID())
			var captured string
			router.GET("/test", func(c *gin.Context) {
				captured = GetCorrelationID(c)
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, captured, rr.Header().Get(CorrelationIDHeader))
			if tt.want != "" {
				assert.Equal(t, tt.want, captured)
			} else {
				_, err := uuid.Parse(captured)
				assert.NoError(t, err)
			}
		})
	}

	t.Run("EmptyOutsideMiddleware", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Empty(t, GetCorrelationID(c))
	})
}

func TestActorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		role     string
		id       string
		wantRole string
	}{
		{name: "normalizes role", role: " finance ", id: "u-7", wantRole: "FINANCE"},
		{name: "defaults to public", wantRole: DefaultRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Actor())
			var role, id string
			router.GET("/test", func(c *gin.Context) {
				role, id = GetActorRole(c), GetActorID(c)
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			if tt.role != "" {
				req.Header.Set(ActorRoleHeader, tt.role)
			}
			if tt.id != "" {
				req.Header.Set(ActorIDHeader, tt.id)
			}
			router.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.id, id)
		})
	}
}
