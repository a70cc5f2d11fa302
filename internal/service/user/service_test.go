package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/repository/memory"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/auth"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/security"
)

type registrarFunc func(email, password, userID string) error

func (f registrarFunc) AddStaffAccount(email, password, userID string) error {
	return f(email, password, userID)
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewSeeded(context.Background())
	require.NoError(t, err)
	return store
}

func get(t *testing.T, s *memory.Store, id string) *model.User {
	t.Helper()
	u, err := s.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func appCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestCreateStaffRegistersLogin(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	local := auth.NewLocalAuth(store, security.NewBcryptHasher(bcrypt.MinCost))
	feed := notification.NewFeed(nil, nil, nil)
	ids := idgen.NewGenerator(func() time.Time { return time.UnixMilli(1710460800000) })
	svc := NewService(store, local, feed, nil, ids)

	u, err := svc.CreateStaff(ctx, get(t, store, memory.DemoAdminID), model.CreateStaffRequest{
		Name:           "Liam Chen",
		Email:          "liam@naturecure.com",
		Password:       "strongpass",
		Role:           model.RolePhysiotherapist,
		Specialization: "Neuro Rehab",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff-1710460800000", u.ID)
	assert.True(t, u.IsApproved)
	assert.True(t, u.IsActive)

	loggedIn, _, err := local.Authenticate(ctx, "liam@naturecure.com", "strongpass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, loggedIn.ID)

	assert.Equal(t, "Staff Account Created", feed.List()[0].Title)
}

func TestCreateStaffValidation(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, registrarFunc(func(string, string, string) error { return nil }), nil, nil, nil)
	admin := get(t, store, memory.DemoAdminID)
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, admin, model.CreateStaffRequest{Name: "X", Email: "x@naturecure.com", Password: "strongpass", Role: model.RoleAdmin})
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))

	_, err = svc.CreateStaff(ctx, admin, model.CreateStaffRequest{Name: "X", Email: "x@naturecure.com", Password: "strongpass", Role: model.RolePatient})
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))

	_, err = svc.CreateStaff(ctx, admin, model.CreateStaffRequest{Name: "X", Email: "DOCTOR@naturecure.com", Password: "strongpass", Role: model.RoleDoctor})
	assert.Equal(t, apperrors.ErrConflict, appCode(t, err))

	_, err = svc.CreateStaff(ctx, get(t, store, memory.DemoSupervisorID), model.CreateStaffRequest{Name: "X", Email: "y@naturecure.com", Password: "strongpass", Role: model.RoleDoctor})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestCreateStaffCredentialFailureDeactivates(t *testing.T) {
	store := newStore(t)
	boom := errors.New("credential store down")
	svc := NewService(store, registrarFunc(func(string, string, string) error { return boom }), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, get(t, store, memory.DemoAdminID), model.CreateStaffRequest{Name: "Zoe", Email: "zoe@naturecure.com", Password: "strongpass", Role: model.RoleDoctor})
	assert.ErrorIs(t, err, boom)

	u, err := store.FindUserByEmail(ctx, "zoe@naturecure.com")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestApproveMakesPendingUserEligible(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	local := auth.NewLocalAuth(store, security.NewBcryptHasher(bcrypt.MinCost))
	svc := NewService(store, local, nil, nil, nil)

	pending := &model.User{ID: "staff-pending", Email: "pending@naturecure.com", Name: "Pending", Role: model.RoleDoctor, IsActive: true}
	require.NoError(t, store.AddUser(ctx, pending))
	require.NoError(t, local.AddStaffAccount(pending.Email, "strongpass", pending.ID))

	_, _, err := local.Authenticate(ctx, pending.Email, "strongpass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	approved, err := svc.Approve(ctx, get(t, store, memory.DemoAdminID), pending.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	_, _, err = local.Authenticate(ctx, pending.Email, "strongpass")
	assert.NoError(t, err)

	_, err = svc.Approve(ctx, get(t, store, memory.DemoSupervisorID), pending.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Approve(ctx, get(t, store, memory.DemoAdminID), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetRole(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()
	supervisor := get(t, store, memory.DemoSupervisorID)

	u, err := svc.SetRole(ctx, supervisor, memory.DemoPhysiotherapistID, model.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, u.Role)

	_, err = svc.SetRole(ctx, supervisor, memory.DemoDoctorID, model.RoleAdmin)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.SetRole(ctx, supervisor, memory.DemoSupervisorID, model.RoleDoctor)
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))

	_, err = svc.SetRole(ctx, supervisor, memory.DemoDoctorID, model.Role("nurse"))
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))

	_, err = svc.SetRole(ctx, get(t, store, memory.DemoDoctorID), memory.DemoPhysiotherapistID, model.RoleDoctor)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestSetRoleLimitsSupervisorToStaff(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()
	supervisor := get(t, store, memory.DemoSupervisorID)

	_, err := svc.SetRole(ctx, supervisor, memory.DemoAdminID, model.RolePatient)
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))

	_, err = svc.SetRole(ctx, supervisor, memory.DemoAdminID, model.RoleDoctor)
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Equal(t, model.RoleAdmin, get(t, store, memory.DemoAdminID).Role)

	_, err = svc.SetRole(ctx, supervisor, "p1", model.RoleDoctor)
	assert.ErrorIs(t, err, access.ErrForbidden)
	p1 := get(t, store, "p1")
	assert.Equal(t, model.RolePatient, p1.Role)
	assert.False(t, access.Can(p1.Role, access.CreatePatient))

	_, err = svc.SetRole(ctx, supervisor, "ghost", model.RoleDoctor)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetRoleByAdmin(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()
	admin := get(t, store, memory.DemoAdminID)

	u, err := svc.SetRole(ctx, admin, memory.DemoSupervisorID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	_, err = svc.SetRole(ctx, admin, memory.DemoDoctorID, model.RolePatient)
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))
	assert.Equal(t, model.RoleDoctor, get(t, store, memory.DemoDoctorID).Role)
}

func TestSetActive(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()
	admin := get(t, store, memory.DemoAdminID)

	u, err := svc.SetActive(ctx, admin, memory.DemoDoctorID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = svc.SetActive(ctx, admin, memory.DemoAdminID, false)
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))
}

func TestUpdateProfileTouchesOnlySelf(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()
	doctor := get(t, store, memory.DemoDoctorID)

	u, err := svc.UpdateProfile(ctx, doctor, model.UpdateProfileRequest{Specialization: model.StringPtr("Neurology")})
	require.NoError(t, err)
	assert.Equal(t, "Neurology", u.Specialization)
	assert.Equal(t, model.RoleDoctor, u.Role)

	_, err = svc.UpdateProfile(ctx, doctor, model.UpdateProfileRequest{Name: model.StringPtr("  ")})
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))
}

func TestListAndGet(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	patients, err := svc.List(ctx, get(t, store, memory.DemoSupervisorID), model.RolePatient)
	require.NoError(t, err)
	assert.Len(t, patients, 5)
	for _, u := range patients {
		assert.True(t, strings.HasPrefix(u.ID, "p"))
	}

	_, err = svc.List(ctx, get(t, store, memory.DemoDoctorID), "")
	assert.ErrorIs(t, err, access.ErrForbidden)

	self, err := svc.Get(ctx, get(t, store, "p2"), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Michael Davidson", self.Name)

	_, err = svc.Get(ctx, get(t, store, "p2"), "p1")
	assert.ErrorIs(t, err, access.ErrForbidden)
}
