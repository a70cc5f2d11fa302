package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/logger"
)

// CredentialRegistrar stores login credentials for a staff user.
type CredentialRegistrar interface {
	AddStaffAccount(email, password, userID string) error
}

type UserServicer interface {
	CreateStaff(ctx context.Context, actor *model.User, req model.CreateStaffRequest) (*model.User, error)
	Approve(ctx context.Context, actor *model.User, id string) (*model.User, error)
	SetRole(ctx context.Context, actor *model.User, id string, role model.Role) (*model.User, error)
	SetActive(ctx context.Context, actor *model.User, id string, active bool) (*model.User, error)
	UpdateProfile(ctx context.Context, actor *model.User, req model.UpdateProfileRequest) (*model.User, error)
	List(ctx context.Context, actor *model.User, role model.Role) ([]*model.User, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.User, error)
}

type Service struct {
	repo        repository.UserRepository
	credentials CredentialRegistrar
	notifier    notification.Notifier
	log         *logger.Logger
	ids         *idgen.Generator
}

var _ UserServicer = (*Service)(nil)

func NewService(repo repository.UserRepository, credentials CredentialRegistrar, notifier notification.Notifier, log *logger.Logger, ids *idgen.Generator) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if ids == nil {
		ids = idgen.NewGenerator(nil)
	}
	return &Service{
		repo:        repo,
		credentials: credentials,
		notifier:    notifier,
		log:         log,
		ids:         ids,
	}
}

// CreateStaff adds an approved doctor, supervisor or physiotherapist and
// registers their login.
func (s *Service) CreateStaff(ctx context.Context, actor *model.User, req model.CreateStaffRequest) (*model.User, error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	if err := s.validateStaff(ctx, req); err != nil {
		return nil, err
	}

	u := &model.User{
		ID:             s.ids.Next("staff-"),
		Email:          strings.TrimSpace(req.Email),
		Name:           strings.TrimSpace(req.Name),
		Role:           req.Role,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		IsActive:       true,
		IsApproved:     true,
		CreatedAt:      s.ids.Now(),
	}
	if err := s.repo.AddUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	if err := s.credentials.AddStaffAccount(u.Email, req.Password, u.ID); err != nil {
		// a staff user without credentials stays inactive
		if _, deactivateErr := s.repo.UpdateUser(ctx, u.ID, model.UpdateUserRequest{IsActive: model.BoolPtr(false)}); deactivateErr != nil {
			s.log.Error(deactivateErr, "failed to deactivate staff user without credentials", "user_id", u.ID)
		}
		return nil, fmt.Errorf("failed to register staff credentials: %w", err)
	}
	s.log.Info("staff account created", "user_id", u.ID, "role", u.Role, "created_by", actor.ID)

	if s.notifier != nil {
		if _, err := s.notifier.Add(ctx, model.NewNotification{
			Title:   "Staff Account Created",
			Message: fmt.Sprintf("New %s account created for %s", u.Role, u.Name),
			Type:    model.NotificationInfo,
			Role:    string(model.RoleAdmin),
			Link:    "/users",
		}); err != nil {
			s.log.Warn(err, "failed to add notification", "user_id", u.ID)
		}
	}
	return u, nil
}

// Approve makes a pending account eligible to sign in.
func (s *Service) Approve(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	u, err := s.repo.ApproveUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("user approved", "user_id", id, "approved_by", actor.ID)
	return u, nil
}

// SetRole moves a user between roles. Only staff roles can be assigned, and
// only an admin may grant admin. Non-admin editors may touch staff accounts
// only.
func (s *Service) SetRole(ctx context.Context, actor *model.User, id string, role model.Role) (*model.User, error) {
	if err := access.Require(actor, access.ManageUsers, access.ViewUsers); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", role), nil)
	}
	if id == actor.ID {
		return nil, apperrors.BadRequest("cannot change your own role", nil)
	}
	isAdmin := actor.Role == model.RoleAdmin
	if role == model.RoleAdmin {
		if !isAdmin {
			return nil, fmt.Errorf("grant admin: %w", access.ErrForbidden)
		}
	} else if !role.IsStaffRole() {
		return nil, apperrors.BadRequest(fmt.Sprintf("role %q cannot be assigned", role), nil)
	}

	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !target.Role.IsStaffRole() {
		return nil, fmt.Errorf("change %s account: %w", target.Role, access.ErrForbidden)
	}

	u, err := s.repo.UpdateUser(ctx, id, model.UpdateUserRequest{Role: &role})
	if err != nil {
		return nil, err
	}
	s.log.Info("user role changed", "user_id", id, "role", role, "changed_by", actor.ID)
	return u, nil
}

func (s *Service) SetActive(ctx context.Context, actor *model.User, id string, active bool) (*model.User, error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	if id == actor.ID && !active {
		return nil, apperrors.BadRequest("cannot deactivate your own account", nil)
	}
	u, err := s.repo.UpdateUser(ctx, id, model.UpdateUserRequest{IsActive: &active})
	if err != nil {
		return nil, err
	}
	s.log.Info("user active flag changed", "user_id", id, "is_active", active, "changed_by", actor.ID)
	return u, nil
}

// UpdateProfile edits the actor's own name, phone, specialization and avatar.
func (s *Service) UpdateProfile(ctx context.Context, actor *model.User, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.BadRequest("name cannot be empty", nil)
	}
	return s.repo.UpdateUser(ctx, actor.ID, req.ToUpdate())
}

func (s *Service) List(ctx context.Context, actor *model.User, role model.Role) ([]*model.User, error) {
	if err := access.Require(actor, access.ManageUsers, access.ViewUsers); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", role), nil)
	}
	return s.repo.ListUsers(ctx, role)
}

// Get returns a user. Anyone may read their own account.
func (s *Service) Get(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if actor == nil || id != actor.ID {
		if err := access.Require(actor, access.ManageUsers, access.ViewUsers); err != nil {
			return nil, err
		}
	}
	return s.repo.GetUser(ctx, id)
}

func (s *Service) validateStaff(ctx context.Context, req model.CreateStaffRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.BadRequest("name is required", nil)
	}
	if !req.Role.IsStaffRole() {
		return apperrors.BadRequest(fmt.Sprintf("role %q cannot be assigned to staff accounts", req.Role), nil)
	}
	_, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	switch {
	case err == nil:
		return apperrors.Conflict("email is already registered", nil)
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return nil
}
