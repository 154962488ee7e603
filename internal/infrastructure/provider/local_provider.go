package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// LocalProvider adapts the auth service into the domain.AuthProvider contract
// the client core consumes. It tracks the provider-side current session and
// fans auth-change events out to subscribers, the way a hosted auth SDK does.
type LocalProvider struct {
	authSvc  domain.AuthService
	sessions domain.SessionRepository
	log      *zap.Logger

	mu      sync.Mutex
	current *domain.Session
	subs    map[int]domain.AuthChangeHandler
	nextSub int
}

// NewLocalProvider creates a provider backed by the in-repo auth service
func NewLocalProvider(authSvc domain.AuthService, sessions domain.SessionRepository, log *zap.Logger) *LocalProvider {
	return &LocalProvider{
		authSvc:  authSvc,
		sessions: sessions,
		log:      log,
		subs:     make(map[int]domain.AuthChangeHandler),
	}
}

// RequestOTP implements domain.AuthProvider
func (p *LocalProvider) RequestOTP(ctx context.Context, phone string) error {
	_, err := p.authSvc.SignInWithOTP(ctx, phone)
	return err
}

// VerifyOTP implements domain.AuthProvider
func (p *LocalProvider) VerifyOTP(ctx context.Context, phone, code string) (*domain.Session, error) {
	result, err := p.authSvc.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:           result.SessionID,
		UserID:       result.User.ID,
		Phone:        result.User.Phone,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
		CreatedAt:    time.Now(),
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

// SignOut implements domain.AuthProvider. The local session is cleared even
// when the remote invalidation fails; the error is still returned so callers
// can surface it.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()

	if current == nil {
		return nil
	}

	err := p.authSvc.SignOut(ctx, current.ID)
	p.emit(domain.AuthEventSignedOut, nil)
	return err
}

// CurrentSession implements domain.AuthProvider. An expired session is
// refreshed transparently; a session the backend no longer knows is dropped.
func (p *LocalProvider) CurrentSession(ctx context.Context) (*domain.Session, error) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return nil, nil
	}
	if !current.Expired(time.Now()) {
		return current, nil
	}
	return p.refresh(ctx, current)
}

// RestoreSession implements domain.AuthProvider
func (p *LocalProvider) RestoreSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session == nil {
		return nil, nil
	}

	if _, err := p.sessions.FindByID(ctx, session.ID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			p.log.Info("persisted session no longer valid", zap.String("session_id", session.ID))
			return nil, nil
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		refreshed, err := p.refresh(ctx, session)
		if err != nil || refreshed == nil {
			return refreshed, err
		}
		session = refreshed
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

// OnAuthChange implements domain.AuthProvider
func (p *LocalProvider) OnAuthChange(handler domain.AuthChangeHandler) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = handler
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) refresh(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	result, err := p.authSvc.RefreshToken(ctx, session.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			p.log.Info("session refresh rejected, signing out", zap.String("session_id", session.ID))
			p.mu.Lock()
			p.current = nil
			p.mu.Unlock()
			p.emit(domain.AuthEventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}

	refreshed := &domain.Session{
		ID:           result.SessionID,
		UserID:       result.User.ID,
		Phone:        result.User.Phone,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
		CreatedAt:    session.CreatedAt,
	}

	p.mu.Lock()
	p.current = refreshed
	p.mu.Unlock()

	p.emit(domain.AuthEventTokenRefreshed, refreshed)
	return refreshed, nil
}

// emit calls subscribers outside the provider lock so handlers may call back in
func (p *LocalProvider) emit(event domain.AuthChangeEvent, session *domain.Session) {
	p.mu.Lock()
	handlers := make([]domain.AuthChangeHandler, 0, len(p.subs))
	for _, h := range p.subs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(event, session)
	}
}

var _ domain.AuthProvider = (*LocalProvider)(nil)
