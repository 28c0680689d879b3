package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// User is a sandbox account. The password is kept only as a bcrypt hash.
type User struct {
	UserID       int64
	Username     string
	Email        string
	Role         string
	PasswordHash []byte
}

func (u User) Identity() auth.Identity {
	return auth.Identity{UserID: u.UserID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup is the registration request body. An empty role registers a User.
type Signup struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=User Receptionist Doctor Admin"`
}

// PasswordReset is the change-password request body.
type PasswordReset struct {
	UserID      int64  `json:"userId" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// Accounts stores users and signs the tokens handed out at login.
type Accounts struct {
	users *db.Table[User]
	key   []byte
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

func NewAccounts(users *db.Table[User], key []byte, ttl time.Duration, cost int, now func() time.Time) *Accounts {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if now == nil {
		now = time.Now
	}
	return &Accounts{users: users, key: key, ttl: ttl, cost: cost, now: now}
}

// Login checks creds and returns a signed token for the matching user.
func (a *Accounts) Login(creds Credentials) (string, error) {
	if err := validation.Struct(creds); err != nil {
		return "", err
	}
	u, ok := a.lookup(creds.Username)
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return auth.IssueToken(u.Identity(), a.key, a.ttl, a.now())
}

// Register creates an account. Usernames are unique ignoring case.
func (a *Accounts) Register(s Signup) (User, error) {
	if err := validation.Struct(s); err != nil {
		return User{}, err
	}
	if s.Role == "" {
		s.Role = auth.DefaultRole
	}
	if _, taken := a.lookup(s.Username); taken {
		return User{}, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), a.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return a.users.Insert(func(id int64) User {
		return User{
			UserID:       id,
			Username:     s.Username,
			Email:        s.Email,
			Role:         s.Role,
			PasswordHash: hash,
		}
	}), nil
}

// ChangePassword replaces the password of user r.UserID.
func (a *Accounts) ChangePassword(r PasswordReset) error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.NewPassword), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = a.users.Update(r.UserID, func(u User) User {
		u.PasswordHash = hash
		return u
	})
	return err
}

func (a *Accounts) lookup(username string) (User, bool) {
	return a.users.Find(func(u User) bool {
		return strings.EqualFold(u.Username, username)
	})
}
