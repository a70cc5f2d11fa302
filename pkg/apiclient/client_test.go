package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second})
}

func TestLoginSendsCredentialsAndDecodes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "doctor@naturecure.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"remote-token","user":{"id":"2","email":"doctor@naturecure.com","name":"Dr. Olivia Turner","role":"doctor","isActive":true,"isApproved":true}}`))
	})

	resp, err := c.Login(context.Background(), LoginRequest{Email: "doctor@naturecure.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "remote-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "doctor", resp.User.Role)
	assert.True(t, resp.User.IsApproved)
}

func TestBearerTokenAttached(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"2","role":"doctor"}`))
	})

	user, err := c.WithToken("abc").Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", user.ID)
}

func TestErrorUsesBodyMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		body2   interface{}
	}{
		{"message field", http.StatusUnauthorized, `{"message":"bad password"}`, "bad password", map[string]interface{}{"message": "bad password"}},
		{"error field", http.StatusBadRequest, `{"error":"email taken"}`, "email taken", map[string]interface{}{"error": "email taken"}},
		{"status text", http.StatusInternalServerError, `{"detail":"x"}`, "Internal Server Error", map[string]interface{}{"detail": "x"}},
		{"raw text", http.StatusBadGateway, `upstream down`, "Bad Gateway", "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), LoginRequest{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.body2, apiErr.Body)
		})
	}
}

func TestNoContentAndResourcePaths(t *testing.T) {
	var seen []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	var out map[string]interface{}
	require.NoError(t, c.Create(ctx, Patients, map[string]string{"full_name": "Jane Doe"}, &out))
	require.NoError(t, c.Update(ctx, Beds, "bed-101-1", map[string]bool{"is_occupied": false}, nil))
	require.NoError(t, c.Delete(ctx, HealthRecords, "hr-1"))
	assert.Nil(t, out)

	assert.Equal(t, []string{
		"POST /api/patients",
		"PUT /api/beds/bed-101-1",
		"DELETE /api/health-records/hr-1",
	}, seen)
}

func TestTransportFailure(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := c.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures carry no status")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("FACILITY_API_URL", "http://remote.example/api/")
	t.Setenv("FACILITY_API_TIMEOUT", "3s")

	cfg, err := LoadConfigFromEnv("FACILITY")
	require.NoError(t, err)
	assert.Equal(t, "http://remote.example/api/", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	assert.Equal(t, "http://remote.example/api", New(cfg).BaseURL())
}
