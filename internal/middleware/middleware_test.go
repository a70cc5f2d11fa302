package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/auth"
)

type resolverFunc func(ctx context.Context, token string) (*model.Session, error)

func (f resolverFunc) Current(ctx context.Context, token string) (*model.Session, error) {
	return f(ctx, token)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	sessions := resolverFunc(func(_ context.Context, token string) (*model.Session, error) {
		switch token {
		case "good":
			return &model.Session{Token: token, User: model.User{ID: "2", Role: model.RoleDoctor}}, nil
		case "broken":
			return nil, errors.New("redis unavailable")
		}
		return nil, auth.ErrSessionNotFound
	})
	m := NewAuthMiddleware(sessions)

	r := gin.New()
	r.GET("/me", m.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": handler.CurrentUser(c).ID, "token": handler.CurrentToken(c)})
	})

	w := do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"2","token":"good"}`, w.Body.String())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"store failure", "Bearer broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := map[string]string{}
			if tt.header != "" {
				h["Authorization"] = tt.header
			}
			assert.Equal(t, tt.want, do(r, http.MethodGet, "/me", h).Code)
		})
	}
}

func TestRequireCapability(t *testing.T) {
	m := NewAuthMiddleware(nil)
	withUser := func(role model.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(handler.UserKey, &model.User{ID: "x", Role: role})
		}
	}

	for role, want := range map[model.Role]int{
		model.RoleAdmin:      http.StatusOK,
		model.RoleSupervisor: http.StatusForbidden,
		model.RolePatient:    http.StatusForbidden,
	} {
		r := gin.New()
		r.GET("/users/new", withUser(role), m.RequireCapability(access.ManageUsers), func(c *gin.Context) { c.Status(http.StatusOK) })
		assert.Equal(t, want, do(r, http.MethodGet, "/users/new", nil).Code, role)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://localhost:5173"}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodOptions, "/", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = do(r, http.MethodOptions, "/", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(auth.ErrSessionNotFound) })

	w := do(r, http.MethodGet, "/panic", map[string]string{HeaderXRequestID: "rid-1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "rid-1", w.Header().Get(HeaderXRequestID))

	w = do(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}
