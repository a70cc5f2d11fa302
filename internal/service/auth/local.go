package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/pkg/idgen"
	"github.com/jwalitptl/facility-api/pkg/security"
)

// Fixed passwords of the built-in demo accounts.
const (
	DemoStaffPassword   = "password"
	DemoPatientPassword = "patient123"
)

// Account binds a login email to a user id. Password is the plain sentinel
// for demo accounts and a bcrypt hash for dynamic ones.
type Account struct {
	Email    string
	Password string
	UserID   string
}

// DemoAccounts builds fixed-password accounts for users.
func DemoAccounts(users []model.User, password string) []Account {
	accounts := make([]Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, Account{Email: u.Email, Password: password, UserID: u.ID})
	}
	return accounts
}

// LocalAuth is the in-process fallback authenticator. Tables are searched
// in order: demo staff, demo patients, dynamic staff, dynamic patients.
type LocalAuth struct {
	mu       sync.RWMutex
	users    repository.UserRepository
	hasher   security.PasswordHasher
	demo     []Account
	staff    map[string]Account
	patients map[string]Account
	now      func() time.Time
}

var _ Authenticator = (*LocalAuth)(nil)

func NewLocalAuth(users repository.UserRepository, hasher security.PasswordHasher, demo ...[]Account) *LocalAuth {
	l := &LocalAuth{
		users:    users,
		hasher:   hasher,
		staff:    make(map[string]Account),
		patients: make(map[string]Account),
		now:      time.Now,
	}
	for _, table := range demo {
		l.demo = append(l.demo, table...)
	}
	return l
}

func (l *LocalAuth) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	key := normalizeEmail(email)

	var candidates []string
	l.mu.RLock()
	for _, a := range l.demo {
		if normalizeEmail(a.Email) == key && a.Password == password {
			candidates = append(candidates, a.UserID)
		}
	}
	var hashed []Account
	for _, table := range []map[string]Account{l.staff, l.patients} {
		if a, ok := table[key]; ok {
			hashed = append(hashed, a)
		}
	}
	l.mu.RUnlock()

	for _, a := range hashed {
		if l.hasher.Compare(a.Password, password) == nil {
			candidates = append(candidates, a.UserID)
		}
	}

	for _, id := range candidates {
		user, err := l.users.GetUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		if !user.CanSignIn() {
			continue
		}
		return user, "", nil
	}
	return nil, "", ErrInvalidCredentials
}

// Register creates a patient account and its user. The id has the form
// pat<base36 unix ms><3 random base36 chars>.
func (l *LocalAuth) Register(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	if l.emailTaken(ctx, req.Email) {
		return nil, "", ErrEmailTaken
	}
	hashed, err := l.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		ID:         idgen.Base36("pat", l.now(), 3),
		Email:      req.Email,
		Name:       req.FullName,
		Role:       model.RolePatient,
		Phone:      req.Phone,
		IsActive:   true,
		IsApproved: true,
		CreatedAt:  l.now(),
	}
	if err := l.users.AddUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create patient user: %w", err)
	}

	l.mu.Lock()
	l.patients[normalizeEmail(req.Email)] = Account{Email: req.Email, Password: hashed, UserID: user.ID}
	l.mu.Unlock()
	return user, "", nil
}

// AddStaffAccount registers credentials for an existing staff user.
func (l *LocalAuth) AddStaffAccount(email, password, userID string) error {
	if l.hasCredentials(email) {
		return ErrEmailTaken
	}
	hashed, err := l.hasher.Hash(password)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.staff[normalizeEmail(email)] = Account{Email: email, Password: hashed, UserID: userID}
	return nil
}

func (l *LocalAuth) emailTaken(ctx context.Context, email string) bool {
	if l.hasCredentials(email) {
		return true
	}
	_, err := l.users.FindUserByEmail(ctx, email)
	return err == nil
}

func (l *LocalAuth) hasCredentials(email string) bool {
	key := normalizeEmail(email)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.demo {
		if normalizeEmail(a.Email) == key {
			return true
		}
	}
	_, staff := l.staff[key]
	_, patient := l.patients[key]
	return staff || patient
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
