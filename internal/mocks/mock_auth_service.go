package mocks

import (
	"context"
	"time"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	SignInWithOTPFunc func(ctx context.Context, phone string) (*domain.User, error)
	VerifyOTPFunc     func(ctx context.Context, phone, code string) (*domain.AuthResult, error)
	RefreshTokenFunc  func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	SignOutFunc       func(ctx context.Context, sessionID string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// SignInWithOTP starts a phone sign-in
func (m *MockAuthService) SignInWithOTP(ctx context.Context, phone string) (*domain.User, error) {
	if m.SignInWithOTPFunc != nil {
		return m.SignInWithOTPFunc(ctx, phone)
	}
	// Default behavior: return a mock user
	return &domain.User{
		ID:        "mock_user_id",
		Phone:     phone,
		Role:      "retailer",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// VerifyOTP completes a phone sign-in
func (m *MockAuthService) VerifyOTP(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code)
	}
	// Default behavior: return a successful auth result
	return &domain.AuthResult{
		User: &domain.User{
			ID:       "mock_user_id",
			Phone:    phone,
			Role:     "retailer",
			IsActive: true,
		},
		AccessToken:  "mock_access_token",
		RefreshToken: "mock_refresh_token",
		SessionID:    "mock_session_id",
		ExpiresIn:    900,
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token
func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	// Default behavior: return a new auth result
	return &domain.AuthResult{
		User: &domain.User{
			ID:       "mock_user_id",
			Phone:    "+255700000001",
			Role:     "retailer",
			IsActive: true,
		},
		AccessToken:  "new_mock_access_token",
		RefreshToken: refreshToken,
		SessionID:    "mock_session_id",
		ExpiresIn:    900,
	}, nil
}

// SignOut terminates a session
func (m *MockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
