package domain

import (
	"errors"
	"fmt"
	"time"
)

// Authentication errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserInactive     = errors.New("user account is inactive")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// OTP errors
var (
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	ErrOTPNotFound    = errors.New("otp not found")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Profile errors
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Key-value store errors
var (
	ErrKeyNotFound = errors.New("key not found")
)

// CooldownError reports a resend attempted before the cooldown expired.
// It is raised before any network call is made.
type CooldownError struct {
	Remaining time.Duration
}

// Error renders the remaining wait as "Xm Ys" or "Ys"
func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %s before requesting another code", FormatCooldown(e.Remaining))
}

// FormatCooldown renders a duration as "Xm Ys" when a full minute remains, "Ys" otherwise.
// Sub-second remainders round up so the user never sees "0s" while still throttled.
func FormatCooldown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	if secs >= 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}
