package model

import (
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DateOfBirth string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
}

// SignupHandoff is what signup leaves behind for the patient-creation flow.
// It is consumed once.
type SignupHandoff struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
}

// AuthStage names which authenticator produced a session.
type AuthStage string

const (
	AuthStageRemote AuthStage = "remote"
	AuthStageLocal  AuthStage = "local"
)

// Session is the current authenticated principal.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	Stage     AuthStage `json:"stage"`
	ExpiresAt time.Time `json:"expires_at"`
}
