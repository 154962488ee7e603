package mocks

import (
	"context"
	"time"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	GenerateFunc  func(ctx context.Context, phone, userID string) (*domain.OTPRequest, error)
	VerifyFunc    func(ctx context.Context, phone, code, userID string) (bool, error)
	CanResendFunc func(ctx context.Context, phone string) (bool, int64, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Generate creates and sends an OTP
func (m *MockOTPService) Generate(ctx context.Context, phone, userID string) (*domain.OTPRequest, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, phone, userID)
	}
	// Default behavior: return a mock OTP request
	return &domain.OTPRequest{
		Phone:     phone,
		Code:      "123456",
		UserID:    userID,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

// Verify checks an OTP code
func (m *MockOTPService) Verify(ctx context.Context, phone, code, userID string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code, userID)
	}
	// Default behavior: accept "123456"
	if code == "123456" {
		return true, nil
	}
	return false, domain.ErrOTPInvalid
}

// CanResend reports whether another OTP may be sent
func (m *MockOTPService) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, phone)
	}
	// Default behavior: allowed
	return true, 0, nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
