package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
)

const DefaultBaseURL = "http://localhost:5000/api"

type Config struct {
	BaseURL    string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	Timeout    time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	RetryCount int           `envconfig:"API_RETRY_COUNT" default:"0"`
}

// LoadConfigFromEnv reads <PREFIX>_API_URL, <PREFIX>_API_TIMEOUT and
// <PREFIX>_API_RETRY_COUNT.
func LoadConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load api client config: %w", err)
	}
	return cfg, nil
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	// Body is the decoded JSON body, or the raw text when it is not JSON.
	Body interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the optional remote facility API.
type Client struct {
	http  *resty.Client
	token string
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// WithToken returns a client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	return &Client{http: c.http, token: token}
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// do sends the request and decodes a 2xx JSON body into out. A 204 or an
// empty body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	raw := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return newAPIError(resp.StatusCode(), raw)
	}
	if resp.StatusCode() == http.StatusNoContent || len(raw) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		apiErr.Body = string(raw)
		return apiErr
	}
	apiErr.Body = decoded

	if fields, ok := decoded.(map[string]interface{}); ok {
		for _, key := range []string{"message", "error"} {
			if msg, ok := fields[key].(string); ok && msg != "" {
				apiErr.Message = msg
				break
			}
		}
	}
	return apiErr
}
