package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already in use")
)

// NotificationPreference is a comma-joined list of channels the user wants
// notifications on: "email", "sms", "whatsapp", "none", or combinations
// such as "email,sms".
type NotificationPreference string

// DefaultNotificationPreference is assigned to new users.
const DefaultNotificationPreference NotificationPreference = "email"

// WantsEmail reports whether the preference includes the email channel.
func (p NotificationPreference) WantsEmail() bool {
	for _, part := range strings.Split(string(p), ",") {
		if strings.TrimSpace(strings.ToLower(part)) == "email" {
			return true
		}
	}
	return false
}

// User represents a registered community member.
// swagger:model User
type User struct {
	ID                     string                 `json:"id"`
	Username               string                 `json:"username"`
	Email                  string                 `json:"email"`
	PhoneNumber            string                 `json:"phone_number,omitempty"`
	PasswordHash           string                 `json:"-"`
	Salt                   string                 `json:"-"`
	IsAdmin                bool                   `json:"is_admin"`
	IsVerifiedOrganizer    bool                   `json:"is_verified_organizer"`
	IsBanned               bool                   `json:"is_banned"`
	NotificationPreference NotificationPreference `json:"notification_preference"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// NewUser returns a new User with default role flags. ID is set by the
// repository on create.
func NewUser(username, email, phoneNumber string, createdAt time.Time) *User {
	return &User{
		Username:               username,
		Email:                  email,
		PhoneNumber:            phoneNumber,
		NotificationPreference: DefaultNotificationPreference,
		CreatedAt:              createdAt,
		UpdatedAt:              createdAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmailOrUsername(ctx context.Context, emailOrUsername string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
}

// AuthService defines registration, login, and identity resolution.
type AuthService interface {
	Register(ctx context.Context, username, email, phoneNumber, password string) (token string, user *User, err error)
	Login(ctx context.Context, emailOrUsername, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, userID string) (*User, error)
}
