package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(tokens TokenValidator, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	group := engine.Group("", AuthMiddleware(tokens))
	if len(roles) > 0 {
		group.Use(RoleAuthMiddleware(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetInt64(UserIDKey),
			"role":       c.GetString(UserRoleKey),
			"request_id": c.GetString(utils.RequestIDKey),
		})
	})
	return engine
}

func serve(engine *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("middleware-secret-0123456789", time.Hour)
	token, err := tokens.GenerateAccessToken(7, "cody", "Cook")
	require.NoError(t, err)
	engine := newTestEngine(tokens)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := map[string]string{}
			if tt.header != "" {
				h["Authorization"] = tt.header
			}
			w := serve(engine, h)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := serve(engine, map[string]string{"Authorization": "Bearer " + token})
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"role":"Cook"`)
}

func TestRoleAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("middleware-secret-0123456789", time.Hour)
	cook, err := tokens.GenerateAccessToken(7, "cody", "Cook")
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken(1, "alice", "admin")
	require.NoError(t, err)

	engine := newTestEngine(tokens, "Admin", "Server")

	w := serve(engine, map[string]string{"Authorization": "Bearer " + cook})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), utils.ErrCodeForbidden)

	// Role names match case-insensitively.
	w = serve(engine, map[string]string{"Authorization": "Bearer " + admin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	tokens := utils.NewTokenManager("middleware-secret-0123456789", time.Hour)
	token, err := tokens.GenerateAccessToken(1, "alice", "Admin")
	require.NoError(t, err)
	engine := newTestEngine(tokens)

	w := serve(engine, map[string]string{"Authorization": "Bearer " + token, "X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)

	w = serve(engine, map[string]string{"Authorization": "Bearer " + token})
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
