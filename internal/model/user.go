package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleSupervisor      Role = "supervisor"
	RoleDoctor          Role = "doctor"
	RolePhysiotherapist Role = "physiotherapist"
	RolePatient         Role = "patient"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleDoctor, RolePhysiotherapist, RolePatient}

// StaffRoles are the roles an admin may create accounts for.
var StaffRoles = []Role{RoleDoctor, RoleSupervisor, RolePhysiotherapist}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaffRole reports whether r can be assigned through staff account creation.
func (r Role) IsStaffRole() bool {
	for _, staff := range StaffRoles {
		if r == staff {
			return true
		}
	}
	return false
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// User represents a principal of any role, staff or patient.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	IsActive       bool      `json:"is_active"`
	IsApproved     bool      `json:"is_approved"`
	CreatedAt      time.Time `json:"created_at"`
}

// CanSignIn reports whether the account is allowed to hold a session.
func (u *User) CanSignIn() bool {
	return u.IsActive && u.IsApproved
}

// DisplayName prefixes doctors with "Dr. " unless the name already has it.
func (u *User) DisplayName() string {
	if u.Role == RoleDoctor && !strings.HasPrefix(u.Name, "Dr. ") {
		return "Dr. " + u.Name
	}
	return u.Name
}

// UpdateUserRequest carries a partial user update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	Specialization *string `json:"specialization"`
	Avatar         *string `json:"avatar"`
	Role           *Role   `json:"role" binding:"omitempty,role"`
	IsActive       *bool   `json:"is_active"`
	IsApproved     *bool   `json:"is_approved"`
}

// Apply merges the non-nil fields of req into u.
func (req *UpdateUserRequest) Apply(u *User) {
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Specialization != nil {
		u.Specialization = *req.Specialization
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsApproved != nil {
		u.IsApproved = *req.IsApproved
	}
}

// CreateStaffRequest is the admin-only staff account creation payload.
type CreateStaffRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Phone          string `json:"phone"`
	Role           Role   `json:"role" binding:"required,role"`
	Specialization string `json:"specialization"`
}

type SetRoleRequest struct {
	Role Role `json:"role" binding:"required,role"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateProfileRequest is what a user may change about themselves.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Specialization *string `json:"specialization"`
	Avatar         *string `json:"avatar"`
}

// ToUpdate narrows a profile edit to a user update.
func (p *UpdateProfileRequest) ToUpdate() UpdateUserRequest {
	return UpdateUserRequest{
		Name:           p.Name,
		Phone:          p.Phone,
		Specialization: p.Specialization,
		Avatar:         p.Avatar,
	}
}
