package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	pkgauth "github.com/jwalitptl/facility-api/pkg/auth"
	"github.com/jwalitptl/facility-api/pkg/logger"
	"github.com/jwalitptl/facility-api/pkg/metrics"
)

var ErrNoHandoff = errors.New("no pending signup handoff")

const (
	defaultSessionTTL = 24 * time.Hour
	handoffTTL        = time.Hour

	operationLogin  = "login"
	operationSignup = "signup"
)

// Service runs the remote-then-local authentication chain and owns sessions.
type Service struct {
	remote  Authenticator
	local   *LocalAuth
	users   repository.UserRepository
	storage SessionStorage
	tokens  pkgauth.TokenManager
	metrics *metrics.Metrics
	log     *logger.Logger
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Service)

// WithRemote puts a remote authenticator in front of the local tables.
func WithRemote(remote Authenticator) Option {
	return func(s *Service) { s.remote = remote }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(
	local *LocalAuth,
	users repository.UserRepository,
	storage SessionStorage,
	tokens pkgauth.TokenManager,
	opts ...Option,
) *Service {
	s := &Service{
		local:   local,
		users:   users,
		storage: storage,
		tokens:  tokens,
		metrics: metrics.NewNop(),
		log:     logger.Nop(),
		ttl:     defaultSessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates email and password and opens a session. Every
// credential failure surfaces as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, token, stage, err := s.chain(ctx, operationLogin, func(a Authenticator) (*model.User, string, error) {
		return a.Authenticate(ctx, email, password)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Info("login rejected", "email", email)
		}
		return nil, err
	}
	if !user.CanSignIn() {
		s.log.Info("login rejected for inactive or unapproved account", "user_id", user.ID, "stage", stage)
		return nil, ErrInvalidCredentials
	}
	s.mirror(ctx, user)
	return s.open(ctx, user, token, stage)
}

// Signup registers a patient account, leaves the signup handoff for the
// patient-creation flow and opens a session. It does not create a patient.
func (s *Service) Signup(ctx context.Context, req model.SignupRequest) (*model.Session, error) {
	user, token, stage, err := s.chain(ctx, operationSignup, func(a Authenticator) (*model.User, string, error) {
		return a.Register(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, user)

	handoff := model.SignupHandoff{
		ID:          user.ID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
	}
	b, err := json.Marshal(handoff)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signup handoff: %w", err)
	}
	if err := s.storage.Set(ctx, handoffKey(user.ID), b, handoffTTL); err != nil {
		return nil, err
	}
	return s.open(ctx, user, token, stage)
}

// ConsumeSignupHandoff returns the handoff left by userID's signup and
// deletes it.
func (s *Service) ConsumeSignupHandoff(ctx context.Context, userID string) (*model.SignupHandoff, error) {
	key := handoffKey(userID)
	b, err := s.storage.Get(ctx, key)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNoHandoff
	}
	if err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return nil, err
	}

	var handoff model.SignupHandoff
	if err := json.Unmarshal(b, &handoff); err != nil {
		return nil, fmt.Errorf("failed to decode signup handoff: %w", err)
	}
	return &handoff, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.storage.Delete(ctx, sessionKey(token, userKeySuffix), sessionKey(token, tokenKeySuffix))
}

// Current restores the session for token. The user is refreshed from the
// store so role, approval and active changes apply immediately; an account
// that can no longer sign in loses its session.
func (s *Service) Current(ctx context.Context, token string) (*model.Session, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Stage == model.AuthStageLocal {
		if _, err := s.tokens.Validate(token); err != nil {
			_ = s.Logout(ctx, token)
			return nil, ErrSessionNotFound
		}
	}

	fresh, err := s.users.GetUser(ctx, session.User.ID)
	switch {
	case err == nil:
		if !fresh.CanSignIn() {
			_ = s.Logout(ctx, token)
			return nil, ErrSessionNotFound
		}
		session.User = *fresh
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}
	return session, nil
}

// UpdateSessionUser replaces the user held by the session for token.
func (s *Service) UpdateSessionUser(ctx context.Context, token string, user model.User) error {
	session, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	session.User = user
	return s.save(ctx, session)
}

// AddStaffAccount registers local credentials for a staff user.
func (s *Service) AddStaffAccount(email, password, userID string) error {
	return s.local.AddStaffAccount(email, password, userID)
}

// chain tries the remote authenticator, then the local one. A remote failure
// is logged and counted, never returned.
func (s *Service) chain(
	ctx context.Context,
	operation string,
	call func(Authenticator) (*model.User, string, error),
) (*model.User, string, model.AuthStage, error) {
	if s.remote != nil {
		user, token, err := call(s.remote)
		if err == nil {
			s.metrics.AuthAttempts.WithLabelValues(operation, string(model.AuthStageRemote), "success").Inc()
			return user, token, model.AuthStageRemote, nil
		}
		reason := remoteFailureReason(err)
		s.metrics.AuthAttempts.WithLabelValues(operation, string(model.AuthStageRemote), "failure").Inc()
		s.metrics.RemoteAuthFailures.WithLabelValues(reason).Inc()
		s.log.Warn(err, "remote authentication failed, trying local credentials",
			"operation", operation, "reason", reason)
	}

	user, token, err := call(s.local)
	if err != nil {
		s.metrics.AuthAttempts.WithLabelValues(operation, string(model.AuthStageLocal), "failure").Inc()
		return nil, "", model.AuthStageLocal, err
	}
	s.metrics.AuthAttempts.WithLabelValues(operation, string(model.AuthStageLocal), "success").Inc()
	return user, token, model.AuthStageLocal, nil
}

// mirror copies a remotely authenticated user into the store so the rest of
// the API can reference it.
func (s *Service) mirror(ctx context.Context, user *model.User) {
	if _, err := s.users.GetUser(ctx, user.ID); !errors.Is(err, repository.ErrNotFound) {
		return
	}
	copied := *user
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = s.now()
	}
	if err := s.users.AddUser(ctx, &copied); err != nil {
		s.log.Warn(err, "failed to mirror remote user", "user_id", user.ID)
	}
}

func (s *Service) open(ctx context.Context, user *model.User, token string, stage model.AuthStage) (*model.Session, error) {
	expires := s.now().Add(s.ttl)
	if token == "" {
		var err error
		token, expires, err = s.tokens.Generate(user.ID, user.Email, string(user.Role))
		if err != nil {
			return nil, fmt.Errorf("failed to issue session token: %w", err)
		}
	}

	session := &model.Session{Token: token, User: *user, Stage: stage, ExpiresAt: expires}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("session opened", "user_id", user.ID, "role", user.Role, "stage", stage)
	return session, nil
}

func (s *Service) save(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.storage.Set(ctx, sessionKey(session.Token, userKeySuffix), b, ttl); err != nil {
		return err
	}
	return s.storage.Set(ctx, sessionKey(session.Token, tokenKeySuffix), []byte(session.Token), ttl)
}

func (s *Service) load(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	b, err := s.storage.Get(ctx, sessionKey(token, userKeySuffix))
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
