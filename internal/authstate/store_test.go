package authstate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/infrastructure/kv"
	"github.com/ibrahimkeyboad/agrilink/internal/mocks"
)

func newTestStore(t *testing.T) (*Store, *mocks.MockAuthProvider, *kv.MemoryStore, *mocks.MockClock) {
	t.Helper()
	provider := mocks.NewMockAuthProvider()
	storage := kv.NewMemoryStore()
	clock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := New(provider, storage, clock, zap.NewNop(), Config{})
	t.Cleanup(store.Close)
	return store, provider, storage, clock
}

func TestInitializeIsIdempotent(t *testing.T) {
	store, provider, _, _ := newTestStore(t)

	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, provider.HandlerCount(), "second Initialize must not subscribe again")
}

func TestInitializeSetsInitializedOnProviderError(t *testing.T) {
	store, provider, _, _ := newTestStore(t)
	provider.CurrentSessionFunc = func(ctx context.Context) (*domain.Session, error) {
		return nil, errors.New("network unreachable")
	}

	err := store.Initialize(context.Background())
	require.Error(t, err)

	snap := store.Snapshot()
	assert.True(t, snap.Initialized, "initialization failure must not wedge the client")
	assert.False(t, snap.Loading)
	assert.Equal(t, "network unreachable", snap.Err)
	assert.Nil(t, snap.Session)
}

func TestInitializeAdoptsCurrentSession(t *testing.T) {
	store, provider, _, _ := newTestStore(t)
	live := &domain.Session{ID: "sess_1", UserID: "u1", Phone: "+255700000001"}
	provider.CurrentSessionFunc = func(ctx context.Context) (*domain.Session, error) {
		return live, nil
	}

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, live, snap.Session)
	assert.True(t, snap.Authenticated())
}

func TestRequestOTPFirstSendArmsShortCooldown(t *testing.T) {
	store, provider, _, _ := newTestStore(t)

	var gotPhone string
	provider.RequestOTPFunc = func(ctx context.Context, phone string) error {
		gotPhone = phone
		return nil
	}

	require.NoError(t, store.RequestOTP(context.Background(), "+255 700-000-001"))

	assert.Equal(t, "+255700000001", gotPhone, "phone must be normalized before the provider sees it")

	snap := store.Snapshot()
	assert.True(t, snap.OTPSent)
	assert.False(t, snap.Loading)
	assert.Equal(t, "+255700000001", snap.SavedPhoneNumber)
	assert.Equal(t, 1, snap.ResendCount)
	assert.Equal(t, 60*time.Second, store.ResendCooldownRemaining())
	assert.False(t, store.CanResendOTP())
}

func TestRequestOTPResendArmsLongCooldown(t *testing.T) {
	store, _, _, clock := newTestStore(t)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	clock.Advance(61 * time.Second)
	require.True(t, store.CanResendOTP())

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))

	snap := store.Snapshot()
	assert.Equal(t, 2, snap.ResendCount)
	assert.Equal(t, 6*time.Hour, store.ResendCooldownRemaining())
}

func TestRequestOTPDuringCooldownIsRejectedLocally(t *testing.T) {
	store, provider, _, clock := newTestStore(t)

	var calls atomic.Int32
	provider.RequestOTPFunc = func(ctx context.Context, phone string) error {
		calls.Add(1)
		return nil
	}

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	clock.Advance(10 * time.Second)

	err := store.RequestOTP(context.Background(), "+255700000001")

	var cdErr *domain.CooldownError
	require.ErrorAs(t, err, &cdErr)
	assert.Equal(t, 50*time.Second, cdErr.Remaining)
	assert.Equal(t, int32(1), calls.Load(), "no network call while the cooldown is active")

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, snap.ResendCount, "rejected request must not consume a resend")
	assert.NotEmpty(t, snap.Err)
}

func TestRequestOTPFailureLeavesCooldownUntouched(t *testing.T) {
	store, provider, _, clock := newTestStore(t)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	before := store.Snapshot()
	clock.Advance(61 * time.Second)

	provider.RequestOTPFunc = func(ctx context.Context, phone string) error {
		return errors.New("sms gateway down")
	}
	err := store.RequestOTP(context.Background(), "+255700000001")
	require.Error(t, err)

	snap := store.Snapshot()
	assert.Equal(t, before.ResendCount, snap.ResendCount)
	assert.Equal(t, before.OTPCooldownUntil, snap.OTPCooldownUntil)
	assert.False(t, snap.OTPSent)
	assert.False(t, snap.Loading)
	assert.Equal(t, "sms gateway down", snap.Err)
}

func TestVerifyOTPSuccessResetsCounters(t *testing.T) {
	store, provider, _, clock := newTestStore(t)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	clock.Advance(61 * time.Second)
	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))

	session := &domain.Session{ID: "sess_1", UserID: "u1", Phone: "+255700000001"}
	provider.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.Session, error) {
		return session, nil
	}

	require.NoError(t, store.VerifyOTP(context.Background(), "+255700000001", "123456"))

	snap := store.Snapshot()
	assert.Equal(t, session, snap.Session)
	assert.False(t, snap.VerifyingOTP)
	assert.False(t, snap.OTPSent)
	assert.Equal(t, 0, snap.ResendCount)
	assert.True(t, snap.OTPCooldownUntil.IsZero())
	assert.True(t, store.CanResendOTP(), "a fresh verification cycle starts clean")
	assert.Equal(t, "+255700000001", snap.SavedPhoneNumber)
}

func TestVerifyOTPFailureKeepsOTPSent(t *testing.T) {
	store, provider, _, _ := newTestStore(t)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	provider.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.Session, error) {
		return nil, domain.ErrOTPInvalid
	}

	err := store.VerifyOTP(context.Background(), "+255700000001", "000000")
	require.ErrorIs(t, err, domain.ErrOTPInvalid)

	snap := store.Snapshot()
	assert.True(t, snap.OTPSent, "the user can still retry the code")
	assert.False(t, snap.VerifyingOTP)
	assert.Nil(t, snap.Session)
	assert.Equal(t, 1, snap.ResendCount)
	assert.Equal(t, domain.ErrOTPInvalid.Error(), snap.Err)
}

func TestSignOutClearsLocalStateEvenWhenProviderFails(t *testing.T) {
	store, provider, _, _ := newTestStore(t)

	session := &domain.Session{ID: "sess_1", UserID: "u1", Phone: "+255700000001"}
	provider.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.Session, error) {
		return session, nil
	}
	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	require.NoError(t, store.VerifyOTP(context.Background(), "+255700000001", "123456"))

	provider.SignOutFunc = func(ctx context.Context) error {
		return errors.New("backend unavailable")
	}

	err := store.SignOut(context.Background())
	require.Error(t, err)

	snap := store.Snapshot()
	assert.Nil(t, snap.Session, "local sign-out must not be blocked by the backend")
	assert.False(t, snap.Authenticated())
	assert.Empty(t, snap.SavedPhoneNumber)
	assert.Equal(t, 0, snap.ResendCount)
	assert.Equal(t, "backend unavailable", snap.Err)
}

func TestResetOTPStateClearsFlowWithoutTouchingSession(t *testing.T) {
	store, provider, _, _ := newTestStore(t)

	session := &domain.Session{ID: "sess_1", UserID: "u1"}
	provider.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.Session, error) {
		return session, nil
	}
	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	require.NoError(t, store.VerifyOTP(context.Background(), "+255700000001", "123456"))
	require.NoError(t, store.RequestOTP(context.Background(), "+255700000002"))

	store.ResetOTPState()

	snap := store.Snapshot()
	assert.False(t, snap.OTPSent)
	assert.False(t, snap.VerifyingOTP)
	assert.Equal(t, 0, snap.ResendCount)
	assert.True(t, snap.OTPCooldownUntil.IsZero())
	assert.Equal(t, session, snap.Session, "resetting the OTP flow keeps the session")
}

func TestClearError(t *testing.T) {
	store, provider, _, _ := newTestStore(t)
	provider.RequestOTPFunc = func(ctx context.Context, phone string) error {
		return errors.New("boom")
	}

	_ = store.RequestOTP(context.Background(), "+255700000001")
	require.NotEmpty(t, store.Snapshot().Err)

	store.ClearError()
	assert.Empty(t, store.Snapshot().Err)
}

func TestSubscribeDeliversSnapshotsUntilUnsubscribed(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	var seen []domain.AuthSnapshot
	unsubscribe := store.Subscribe(func(snap domain.AuthSnapshot) {
		seen = append(seen, snap)
	})

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.True(t, last.OTPSent)

	count := len(seen)
	unsubscribe()
	store.ClearError()
	assert.Len(t, seen, count, "no deliveries after unsubscribe")
}

func TestAuthChangeEventsFoldIntoState(t *testing.T) {
	store, provider, _, _ := newTestStore(t)
	require.NoError(t, store.Initialize(context.Background()))

	session := &domain.Session{ID: "sess_ext", UserID: "u1", Phone: "+255700000001"}
	provider.Emit(domain.AuthEventSignedIn, session)

	snap := store.Snapshot()
	assert.Equal(t, session, snap.Session)
	assert.Equal(t, "+255700000001", snap.SavedPhoneNumber)

	refreshed := &domain.Session{ID: "sess_ext_2", UserID: "u1", Phone: "+255700000001"}
	provider.Emit(domain.AuthEventTokenRefreshed, refreshed)
	assert.Equal(t, refreshed, store.Snapshot().Session)

	provider.Emit(domain.AuthEventSignedOut, nil)
	snap = store.Snapshot()
	assert.Nil(t, snap.Session)
	assert.Empty(t, snap.SavedPhoneNumber)
}

func TestCooldownConfigOverrides(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	clock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := New(provider, kv.NewMemoryStore(), clock, zap.NewNop(), Config{
		FirstSendCooldown: 5 * time.Second,
		ResendCooldown:    time.Minute,
	})
	t.Cleanup(store.Close)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	assert.Equal(t, 5*time.Second, store.ResendCooldownRemaining())

	clock.Advance(6 * time.Second)
	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	assert.Equal(t, time.Minute, store.ResendCooldownRemaining())
}

func TestResendCooldownRemainingNeverNegative(t *testing.T) {
	store, _, _, clock := newTestStore(t)

	require.NoError(t, store.RequestOTP(context.Background(), "+255700000001"))
	clock.Advance(2 * time.Hour)

	assert.Equal(t, time.Duration(0), store.ResendCooldownRemaining())
	assert.True(t, store.CanResendOTP())
}
