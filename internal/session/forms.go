package session

import (
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
)

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c Credentials) Validate() error {
	return validation.Struct(c)
}

// Registration is the sign-up form. An empty Role registers a User.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=User Receptionist Doctor Admin"`
}

func (r Registration) Validate() error {
	return validation.Struct(r)
}

func (r Registration) withDefaults() Registration {
	if r.Role == "" {
		r.Role = auth.DefaultRole
	}
	return r
}

// PasswordChange is the profile screen's change-password form.
type PasswordChange struct {
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (p PasswordChange) Validate() error {
	return validation.Struct(p)
}
