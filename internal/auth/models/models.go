package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User is a persisted identity. Role is fixed at creation.
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserResponse is the public view of a User.
type UserResponse struct {
	UserID    domain.UserID `json:"userId"`
	UserEmail string        `json:"userEmail"`
	UserRole  domain.Role   `json:"userRole"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:    u.ID,
		UserEmail: u.Email,
		UserRole:  u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalises the email and collects every violation.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	r.Email = NormalizeEmail(r.Email)

	var violations []string
	switch {
	case r.Email == "":
		violations = append(violations, "email is required")
	case !govalidator.StringLength(r.Email, "3", "255") || !govalidator.IsEmail(r.Email):
		violations = append(violations, "email must be a valid email address")
	}
	switch {
	case r.Password == "":
		violations = append(violations, "password is required")
	case len(r.Password) < MinPasswordLength:
		violations = append(violations, "password must be at least 6 characters long")
	case len(r.Password) > 72:
		violations = append(violations, "password must be at most 72 bytes long")
	}
	if len(violations) > 0 {
		return dErrors.NewValidation("Validation failed", violations)
	}
	return nil
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "Email and password are required")
	}
	r.Email = NormalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Email and password are required")
	}
	return nil
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
