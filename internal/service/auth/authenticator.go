package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/pkg/apiclient"
	"github.com/jwalitptl/facility-api/pkg/circuitbreaker"
)

var (
	ErrInvalidCredentials = model.ErrInvalidCredentials
	ErrEmailTaken         = errors.New("email is already registered")
	ErrMalformedResponse  = errors.New("malformed authentication response")
)

// Authenticator is one stage of the login and signup chain. The returned
// token is empty when the stage does not issue one.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	Register(ctx context.Context, req model.SignupRequest) (*model.User, string, error)
}

// RemoteAuth delegates to the remote facility API.
type RemoteAuth struct {
	client  *apiclient.Client
	breaker *circuitbreaker.CircuitBreaker
}

var _ Authenticator = (*RemoteAuth)(nil)

func NewRemoteAuth(client *apiclient.Client, breaker *circuitbreaker.CircuitBreaker) *RemoteAuth {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "remote-auth"})
	}
	return &RemoteAuth{client: client, breaker: breaker}
}

func (r *RemoteAuth) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	resp, err := r.guard(func() (*apiclient.AuthResponse, error) {
		return r.client.Login(ctx, apiclient.LoginRequest{Email: email, Password: password})
	})
	if err != nil {
		return nil, "", err
	}
	return fromResponse(resp)
}

func (r *RemoteAuth) Register(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	resp, err := r.guard(func() (*apiclient.AuthResponse, error) {
		return r.client.Signup(ctx, apiclient.SignupRequest{
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			Password:    req.Password,
			DateOfBirth: req.DateOfBirth,
		})
	})
	if err != nil {
		return nil, "", err
	}
	return fromResponse(resp)
}

// guard runs call through the breaker. A 4xx answer means the remote is
// healthy and does not count as a breaker failure.
func (r *RemoteAuth) guard(call func() (*apiclient.AuthResponse, error)) (*apiclient.AuthResponse, error) {
	var (
		resp    *apiclient.AuthResponse
		callErr error
	)
	err := r.breaker.Execute(func() error {
		resp, callErr = call()
		var apiErr *apiclient.APIError
		if errors.As(callErr, &apiErr) && apiErr.Status < 500 {
			return nil
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, callErr
	}
	return resp, nil
}

func fromResponse(resp *apiclient.AuthResponse) (*model.User, string, error) {
	if resp == nil || resp.User == nil || resp.User.ID == "" {
		return nil, "", fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}
	role, ok := model.ParseRole(resp.User.Role)
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown role %q", ErrMalformedResponse, resp.User.Role)
	}
	user := &model.User{
		ID:             resp.User.ID,
		Email:          resp.User.Email,
		Name:           resp.User.Name,
		Role:           role,
		Phone:          resp.User.Phone,
		Specialization: resp.User.Specialization,
		Avatar:         resp.User.Avatar,
		IsActive:       resp.User.IsActive,
		IsApproved:     resp.User.IsApproved,
	}
	return user, resp.Token, nil
}

// remoteFailureReason buckets a remote error for logs and metrics.
func remoteFailureReason(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		return "circuit_open"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &apiErr):
		if apiErr.Status >= 500 {
			return "server_error"
		}
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unavailable"
	}
}
