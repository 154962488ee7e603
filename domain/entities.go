package domain

import (
	"strings"
	"time"
)

// User represents an AgriLink account, created on first OTP sign-in
type User struct {
	ID        string
	Phone     string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents an authenticated session issued after OTP verification
type Session struct {
	ID           string
	UserID       string
	Phone        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the session's access token has expired at the given time
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// OTPRequest represents OTP verification data
type OTPRequest struct {
	Phone     string
	Code      string
	UserID    string
	ExpiresAt time.Time
	Attempts  int
}

// UserProfile holds the shop owner's onboarding data, one row per user.
// OnboardingCompleted is monotonic: once true it is never set back to false
// by application logic.
type UserProfile struct {
	UserID              string
	FullName            string
	Phone               string
	ProfileImageURL     string
	Region              string
	District            string
	StreetArea          string
	ShopName            string
	ShopType            string
	BusinessSize        string
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProfileUpdate is a partial update; nil fields are left untouched
type ProfileUpdate struct {
	FullName            *string
	Phone               *string
	ProfileImageURL     *string
	Region              *string
	District            *string
	StreetArea          *string
	ShopName            *string
	ShopType            *string
	BusinessSize        *string
	OnboardingCompleted *bool
}

// CompletionStatus classifies how far a profile has progressed through onboarding
type CompletionStatus string

const (
	CompletionNeedsName        CompletionStatus = "needs_name"
	CompletionNeedsShopAddress CompletionStatus = "needs_shop_address"
	CompletionComplete         CompletionStatus = "complete"
)

// AuthSnapshot is an immutable view of the auth state machine at a point in time
type AuthSnapshot struct {
	Session          *Session
	Loading          bool
	Err              string
	Initialized      bool
	OTPSent          bool
	VerifyingOTP     bool
	SavedPhoneNumber string
	OTPCooldownUntil time.Time
	ResendCount      int
}

// Authenticated reports whether the snapshot carries a session
func (s AuthSnapshot) Authenticated() bool {
	return s.Session != nil
}

// NormalizePhone strips spaces and dashes so stored numbers stay E.164-comparable
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	return phone
}
