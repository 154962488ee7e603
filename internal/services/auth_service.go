package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// DefaultRole is assigned to accounts created through phone sign-in
const DefaultRole = "retailer"

// AuthServiceImpl implements domain.AuthService. Sign-in is passwordless:
// a phone number identifies the account and an OTP proves possession.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	accessTTL   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	accessTTL time.Duration,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenSvc:    tokenSvc,
		otpSvc:      otpSvc,
		accessTTL:   accessTTL,
	}
}

// SignInWithOTP implements domain.AuthService. The account is created on
// first contact, so a new shop owner and a returning one follow the same path.
func (s *AuthServiceImpl) SignInWithOTP(ctx context.Context, phone string) (*domain.User, error) {
	phone = domain.NormalizePhone(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		user = &domain.User{
			ID:       uuid.NewString(),
			Phone:    phone,
			Role:     DefaultRole,
			IsActive: true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if _, err := s.otpSvc.Generate(ctx, phone, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	phone = domain.NormalizePhone(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	valid, err := s.otpSvc.Verify(ctx, phone, code, user.ID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, domain.ErrOTPInvalid
	}

	session := &domain.Session{
		ID:        fmt.Sprintf("sess_%s_%d", user.ID, time.Now().UnixNano()),
		UserID:    user.ID,
		Phone:     user.Phone,
		ExpiresAt: time.Now().Add(s.accessTTL),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// RefreshToken implements domain.AuthService
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken, // Keep same refresh token
		SessionID:    session.ID,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// SignOut implements domain.AuthService
func (s *AuthServiceImpl) SignOut(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}
