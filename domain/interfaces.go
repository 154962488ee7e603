package domain

import (
	"context"
	"time"
)

// AuthProvider is the remote authentication contract the client core depends on.
// Implementations must capture failures as errors, never panic.
type AuthProvider interface {
	// RequestOTP sends a one-time passcode via SMS to phone
	RequestOTP(ctx context.Context, phone string) error
	// VerifyOTP exchanges a passcode for a session
	VerifyOTP(ctx context.Context, phone, code string) (*Session, error)
	// SignOut invalidates the provider's current session
	SignOut(ctx context.Context) error
	// CurrentSession returns the live session, or nil when signed out
	CurrentSession(ctx context.Context) (*Session, error)
	// RestoreSession adopts a persisted session, refreshing it if expired.
	// Returns nil without error when the session is no longer valid.
	RestoreSession(ctx context.Context, session *Session) (*Session, error)
	// OnAuthChange subscribes to auth state changes; the returned func unsubscribes
	OnAuthChange(handler AuthChangeHandler) func()
}

// ProfileStore defines user profile persistence with upsert semantics
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Upsert(ctx context.Context, userID string, update ProfileUpdate) (*UserProfile, error)
}

// KeyValueStore is durable key-value storage with install-lifetime persistence
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) error
}

// AuthService defines OTP sign-in business logic
type AuthService interface {
	SignInWithOTP(ctx context.Context, phone string) (*User, error)
	VerifyOTP(ctx context.Context, phone, code string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	SignOut(ctx context.Context, sessionID string) error
}

// OTPService defines OTP operations
type OTPService interface {
	Generate(ctx context.Context, phone, userID string) (*OTPRequest, error)
	Verify(ctx context.Context, phone, code, userID string) (bool, error)
	CanResend(ctx context.Context, phone string) (bool, int64, error)
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID, role, sessionID string) (string, error)
	GenerateRefreshToken(userID, role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// Clock abstracts time for cooldown arithmetic
type Clock interface {
	Now() time.Time
}

// RealClock is the wall-clock implementation of Clock
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
