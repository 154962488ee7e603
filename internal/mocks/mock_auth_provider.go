package mocks

import (
	"context"
	"sync"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// MockAuthProvider implements domain.AuthProvider interface for testing
type MockAuthProvider struct {
	RequestOTPFunc     func(ctx context.Context, phone string) error
	VerifyOTPFunc      func(ctx context.Context, phone, code string) (*domain.Session, error)
	SignOutFunc        func(ctx context.Context) error
	CurrentSessionFunc func(ctx context.Context) (*domain.Session, error)
	RestoreSessionFunc func(ctx context.Context, session *domain.Session) (*domain.Session, error)

	mu       sync.Mutex
	handlers map[int]domain.AuthChangeHandler
	nextID   int
}

// NewMockAuthProvider creates a new MockAuthProvider with default behaviors
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{handlers: make(map[int]domain.AuthChangeHandler)}
}

// RequestOTP sends a passcode
func (m *MockAuthProvider) RequestOTP(ctx context.Context, phone string) error {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, phone)
	}
	// Default behavior: success
	return nil
}

// VerifyOTP exchanges a passcode for a session
func (m *MockAuthProvider) VerifyOTP(ctx context.Context, phone, code string) (*domain.Session, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code)
	}
	// Default behavior: return a mock session
	return &domain.Session{
		ID:          "mock_session_id",
		UserID:      "mock_user_id",
		Phone:       phone,
		AccessToken: "mock_access_token",
	}, nil
}

// SignOut invalidates the current session
func (m *MockAuthProvider) SignOut(ctx context.Context) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	// Default behavior: success
	return nil
}

// CurrentSession returns the live session
func (m *MockAuthProvider) CurrentSession(ctx context.Context) (*domain.Session, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	// Default behavior: signed out
	return nil, nil
}

// RestoreSession adopts a persisted session
func (m *MockAuthProvider) RestoreSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if m.RestoreSessionFunc != nil {
		return m.RestoreSessionFunc(ctx, session)
	}
	// Default behavior: accept the session as-is
	return session, nil
}

// OnAuthChange subscribes to auth state changes
func (m *MockAuthProvider) OnAuthChange(handler domain.AuthChangeHandler) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

// Emit delivers an auth-change event to all subscribed handlers
func (m *MockAuthProvider) Emit(event domain.AuthChangeEvent, session *domain.Session) {
	m.mu.Lock()
	handlers := make([]domain.AuthChangeHandler, 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(event, session)
	}
}

// HandlerCount reports how many subscribers are attached
func (m *MockAuthProvider) HandlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// Compile-time interface compliance verification
var _ domain.AuthProvider = (*MockAuthProvider)(nil)
