package authstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// Default cooldown policy: the first send in a verification cycle only guards
// against accidental double-taps; every resend after it is throttled hard to
// cap SMS cost per phone number.
const (
	DefaultFirstSendCooldown = 60 * time.Second
	DefaultResendCooldown    = 6 * time.Hour
	DefaultStorageKey        = "agrilink-auth"
)

// Config tunes the store's cooldown policy and persistence key
type Config struct {
	FirstSendCooldown time.Duration
	ResendCooldown    time.Duration
	StorageKey        string
}

func (c *Config) applyDefaults() {
	if c.FirstSendCooldown == 0 {
		c.FirstSendCooldown = DefaultFirstSendCooldown
	}
	if c.ResendCooldown == 0 {
		c.ResendCooldown = DefaultResendCooldown
	}
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
}

// action identifies a logical operation for the staleness guard
type action int

const (
	actionInit action = iota
	actionRequest
	actionVerify
	actionSignOut
	actionCount
)

// state is the mutable auth state. Only Store methods touch it, always under mu.
type state struct {
	session       *domain.Session
	loading       bool
	err           string
	initialized   bool
	otpSent       bool
	verifyingOTP  bool
	savedPhone    string
	cooldownUntil time.Time
	resendCount   int
}

// Store is the auth state machine. It is the single writer of the auth state:
// every transition happens under its lock, and each logical action carries an
// epoch so a completion that raced with a newer action is discarded instead of
// overwriting fresher fields.
//
// Operations capture provider failures into the snapshot's Err field and also
// return them; the snapshot is the authoritative view for reactive callers.
type Store struct {
	provider domain.AuthProvider
	kv       domain.KeyValueStore
	clock    domain.Clock
	log      *zap.Logger
	cfg      Config

	mu          sync.Mutex
	state       state
	epochs      [actionCount]uint64
	subs        map[int]func(domain.AuthSnapshot)
	nextSub     int
	unsubscribe func()

	persistWG   sync.WaitGroup
	persistMu   sync.Mutex
	persistSeq  uint64
	persistDone uint64
}

// New creates a store with its own isolated state
func New(provider domain.AuthProvider, kv domain.KeyValueStore, clock domain.Clock, log *zap.Logger, cfg Config) *Store {
	cfg.applyDefaults()
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Store{
		provider: provider,
		kv:       kv,
		clock:    clock,
		log:      log,
		cfg:      cfg,
		subs:     make(map[int]func(domain.AuthSnapshot)),
	}
}

// Initialize restores persisted auth state, queries the provider for a live
// session and subscribes to its auth-change feed. It never blocks callers on
// failure: initialized is set unconditionally and errors land in Err.
// Calling it again after it has run is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state.initialized {
		s.mu.Unlock()
		return nil
	}
	epoch := s.beginLocked(actionInit)
	s.state.loading = true
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	restored := s.loadPersisted(ctx)

	var session *domain.Session
	var err error
	if restored != nil && restored.Session != nil {
		session, err = s.provider.RestoreSession(ctx, restored.Session)
	} else {
		session, err = s.provider.CurrentSession(ctx)
	}

	unsubscribe := s.provider.OnAuthChange(s.handleAuthChange)

	s.mu.Lock()
	if !s.currentLocked(actionInit, epoch) {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	if restored != nil {
		s.state.savedPhone = restored.SavedPhoneNumber
		s.state.resendCount = restored.ResendCount
		s.state.cooldownUntil = restored.CooldownUntil()
	}
	if err != nil {
		s.state.err = err.Error()
		s.log.Warn("auth initialization error", zap.Error(err))
	}
	// The auth-change feed may already have delivered a fresher session while
	// we held none; don't clobber it with a nil result.
	if session != nil || s.state.session == nil {
		s.state.session = session
	}
	s.state.loading = false
	s.state.initialized = true
	s.unsubscribe = unsubscribe
	snap = s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// RequestOTP asks the provider to send a passcode to phone. The cooldown is
// re-derived here regardless of what the caller checked: while it is active no
// network call is made and loading is never set. A failed send leaves the
// cooldown and resend count untouched; a successful one arms the cooldown
// (short for the first send of a cycle, long for resends) and increments the
// resend count.
func (s *Store) RequestOTP(ctx context.Context, phone string) error {
	phone = domain.NormalizePhone(phone)

	s.mu.Lock()
	now := s.clock.Now()
	if now.Before(s.state.cooldownUntil) {
		cdErr := &domain.CooldownError{Remaining: s.state.cooldownUntil.Sub(now)}
		s.state.err = cdErr.Error()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return cdErr
	}
	epoch := s.beginLocked(actionRequest)
	s.state.loading = true
	s.state.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	err := s.provider.RequestOTP(ctx, phone)

	s.mu.Lock()
	if !s.currentLocked(actionRequest, epoch) {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.state.loading = false
		s.state.otpSent = false
		s.state.err = err.Error()
		snap = s.commitLocked()
		s.mu.Unlock()
		s.notify(snap)
		return err
	}

	cooldown := s.cfg.FirstSendCooldown
	if s.state.resendCount >= 1 {
		cooldown = s.cfg.ResendCooldown
	}
	s.state.cooldownUntil = s.clock.Now().Add(cooldown)
	s.state.resendCount++
	s.state.otpSent = true
	s.state.savedPhone = phone
	s.state.loading = false
	s.state.err = ""
	snap = s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// VerifyOTP exchanges the passcode for a session. Failure keeps otpSent so the
// user can retry the code or request a new one; success adopts the session and
// clears the abuse counters.
func (s *Store) VerifyOTP(ctx context.Context, phone, code string) error {
	phone = domain.NormalizePhone(phone)

	s.mu.Lock()
	epoch := s.beginLocked(actionVerify)
	s.state.verifyingOTP = true
	s.state.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	session, err := s.provider.VerifyOTP(ctx, phone, code)

	s.mu.Lock()
	if !s.currentLocked(actionVerify, epoch) {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.state.verifyingOTP = false
		s.state.err = err.Error()
		snap = s.commitLocked()
		s.mu.Unlock()
		s.notify(snap)
		return err
	}

	s.state.session = session
	s.state.verifyingOTP = false
	s.state.otpSent = false
	s.state.err = ""
	s.state.savedPhone = phone
	s.state.resendCount = 0
	s.state.cooldownUntil = time.Time{}
	snap = s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// SignOut clears the local session optimistically: a provider failure leaves
// at worst a stale remote session, recoverable on next sign-in, and is
// surfaced through Err without blocking the local sign-out.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	epoch := s.beginLocked(actionSignOut)
	s.state.loading = true
	s.state.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	err := s.provider.SignOut(ctx)

	s.mu.Lock()
	if !s.currentLocked(actionSignOut, epoch) {
		s.mu.Unlock()
		return err
	}
	s.state.session = nil
	s.state.otpSent = false
	s.state.verifyingOTP = false
	s.state.savedPhone = ""
	s.state.resendCount = 0
	s.state.cooldownUntil = time.Time{}
	s.state.loading = false
	if err != nil {
		s.state.err = err.Error()
	}
	snap = s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// CanResendOTP reports whether the resend cooldown has expired
func (s *Store) CanResendOTP() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.clock.Now().Before(s.state.cooldownUntil)
}

// ResendCooldownRemaining returns how long until another OTP may be requested
func (s *Store) ResendCooldownRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.state.cooldownUntil.Sub(s.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetOTPState clears the OTP flow without touching the session, for when
// the user backs out to change the phone number. In-flight request/verify
// completions are invalidated so they cannot resurrect the cleared fields.
func (s *Store) ResetOTPState() {
	s.mu.Lock()
	s.beginLocked(actionRequest)
	s.beginLocked(actionVerify)
	s.state.otpSent = false
	s.state.verifyingOTP = false
	s.state.resendCount = 0
	s.state.cooldownUntil = time.Time{}
	s.state.err = ""
	snap := s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// ClearError clears the last error message
func (s *Store) ClearError() {
	s.mu.Lock()
	s.state.err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns a copy of the current auth state
func (s *Store) Snapshot() domain.AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a snapshot observer; the returned func unsubscribes.
// Observers are called after each committed transition, in commit order for
// single-threaded callers. They must not call mutating store operations
// synchronously.
func (s *Store) Subscribe(fn func(domain.AuthSnapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close detaches from the provider feed and waits for pending persistence writes
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.Flush()
}

// Flush blocks until queued persistence writes have completed
func (s *Store) Flush() {
	s.persistWG.Wait()
}

// handleAuthChange folds provider events into the state. Token refreshes and
// external sign-ins land here; the OTP-flow fields are left alone.
func (s *Store) handleAuthChange(event domain.AuthChangeEvent, session *domain.Session) {
	s.mu.Lock()
	switch event {
	case domain.AuthEventSignedIn, domain.AuthEventTokenRefreshed:
		s.state.session = session
		if session != nil && session.Phone != "" {
			s.state.savedPhone = session.Phone
		}
	case domain.AuthEventSignedOut:
		s.state.session = nil
		s.state.savedPhone = ""
	}
	s.state.loading = false
	s.state.err = ""
	snap := s.commitLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) beginLocked(a action) uint64 {
	s.epochs[a]++
	return s.epochs[a]
}

func (s *Store) currentLocked(a action, epoch uint64) bool {
	return s.epochs[a] == epoch
}

func (s *Store) snapshotLocked() domain.AuthSnapshot {
	return domain.AuthSnapshot{
		Session:          s.state.session,
		Loading:          s.state.loading,
		Err:              s.state.err,
		Initialized:      s.state.initialized,
		OTPSent:          s.state.otpSent,
		VerifyingOTP:     s.state.verifyingOTP,
		SavedPhoneNumber: s.state.savedPhone,
		OTPCooldownUntil: s.state.cooldownUntil,
		ResendCount:      s.state.resendCount,
	}
}

// commitLocked persists the durable subset and returns the snapshot to notify with
func (s *Store) commitLocked() domain.AuthSnapshot {
	s.persistLocked()
	return s.snapshotLocked()
}

func (s *Store) notify(snap domain.AuthSnapshot) {
	s.mu.Lock()
	handlers := make([]func(domain.AuthSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(snap)
	}
}
