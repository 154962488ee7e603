package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/mocks"
)

type recordedEvent struct {
	event   domain.AuthChangeEvent
	session *domain.Session
}

func subscribe(p *LocalProvider) *[]recordedEvent {
	events := &[]recordedEvent{}
	p.OnAuthChange(func(event domain.AuthChangeEvent, session *domain.Session) {
		*events = append(*events, recordedEvent{event, session})
	})
	return events
}

func TestVerifyOTPTracksSessionAndEmitsSignedIn(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	p := NewLocalProvider(authSvc, mocks.NewMockSessionRepository(), zap.NewNop())
	events := subscribe(p)

	session, err := p.VerifyOTP(context.Background(), "+255700000001", "123456")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "mock_session_id", session.ID)
	assert.False(t, session.Expired(time.Now()))

	current, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session, current)

	require.Len(t, *events, 1)
	assert.Equal(t, domain.AuthEventSignedIn, (*events)[0].event)
	assert.Equal(t, session, (*events)[0].session)
}

func TestVerifyOTPFailureEmitsNothing(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
		return nil, domain.ErrOTPInvalid
	}
	p := NewLocalProvider(authSvc, mocks.NewMockSessionRepository(), zap.NewNop())
	events := subscribe(p)

	_, err := p.VerifyOTP(context.Background(), "+255700000001", "000000")
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	assert.Empty(t, *events)

	current, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestSignOutClearsSessionEvenWhenRemoteFails(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.SignOutFunc = func(ctx context.Context, sessionID string) error {
		return errors.New("backend unavailable")
	}
	p := NewLocalProvider(authSvc, mocks.NewMockSessionRepository(), zap.NewNop())

	_, err := p.VerifyOTP(context.Background(), "+255700000001", "123456")
	require.NoError(t, err)
	events := subscribe(p)

	err = p.SignOut(context.Background())
	require.Error(t, err)

	current, cerr := p.CurrentSession(context.Background())
	require.NoError(t, cerr)
	assert.Nil(t, current, "local session is gone regardless of the backend")

	require.Len(t, *events, 1)
	assert.Equal(t, domain.AuthEventSignedOut, (*events)[0].event)
}

func TestSignOutWithoutSessionIsNoOp(t *testing.T) {
	p := NewLocalProvider(mocks.NewMockAuthService(), mocks.NewMockSessionRepository(), zap.NewNop())
	events := subscribe(p)

	require.NoError(t, p.SignOut(context.Background()))
	assert.Empty(t, *events)
}

func TestCurrentSessionRefreshesExpired(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	expired := &domain.Session{
		ID:           "sess_old",
		UserID:       "mock_user_id",
		Phone:        "+255700000001",
		RefreshToken: "rt_old",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	p := NewLocalProvider(authSvc, mocks.NewMockSessionRepository(), zap.NewNop())

	restored, err := p.RestoreSession(context.Background(), expired)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.False(t, restored.Expired(time.Now()), "expired persisted session is refreshed on restore")
	assert.Equal(t, "new_mock_access_token", restored.AccessToken)
}

func TestRestoreSessionDropsUnknownSession(t *testing.T) {
	sessions := mocks.NewMockSessionRepository()
	sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return nil, domain.ErrSessionNotFound
	}
	p := NewLocalProvider(mocks.NewMockAuthService(), sessions, zap.NewNop())
	events := subscribe(p)

	restored, err := p.RestoreSession(context.Background(), &domain.Session{ID: "sess_gone"})
	require.NoError(t, err)
	assert.Nil(t, restored, "a session the backend forgot is not an error")
	assert.Empty(t, *events)
}

func TestRefreshRejectionSignsOut(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.RefreshTokenFunc = func(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
		return nil, domain.ErrTokenInvalid
	}
	p := NewLocalProvider(authSvc, mocks.NewMockSessionRepository(), zap.NewNop())

	_, err := p.VerifyOTP(context.Background(), "+255700000001", "123456")
	require.NoError(t, err)

	// Force the tracked session to look expired.
	p.mu.Lock()
	p.current.ExpiresAt = time.Now().Add(-time.Minute)
	p.mu.Unlock()

	events := subscribe(p)
	current, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)

	require.Len(t, *events, 1)
	assert.Equal(t, domain.AuthEventSignedOut, (*events)[0].event)
}

func TestOnAuthChangeUnsubscribe(t *testing.T) {
	p := NewLocalProvider(mocks.NewMockAuthService(), mocks.NewMockSessionRepository(), zap.NewNop())

	var count int
	unsubscribe := p.OnAuthChange(func(event domain.AuthChangeEvent, session *domain.Session) {
		count++
	})

	_, err := p.VerifyOTP(context.Background(), "+255700000001", "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unsubscribe()
	_, err = p.VerifyOTP(context.Background(), "+255700000001", "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
