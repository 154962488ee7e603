package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// persistedState is the durable subset of the auth state. Transient flags
// (loading, otpSent, verifyingOtp, err) never survive a restart.
type persistedState struct {
	Session          *domain.Session `json:"session,omitempty"`
	SavedPhoneNumber string          `json:"saved_phone_number,omitempty"`
	ResendCount      int             `json:"resend_count"`
	OTPCooldownUntil int64           `json:"otp_cooldown_until"` // unix milliseconds, 0 when no cooldown
}

// CooldownUntil converts the stored millisecond timestamp back to a time
func (p *persistedState) CooldownUntil() time.Time {
	if p.OTPCooldownUntil == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.OTPCooldownUntil)
}

// loadPersisted reads the stored state, tolerating absence and corruption.
// A record that fails to decode is discarded rather than wedging startup.
func (s *Store) loadPersisted(ctx context.Context) *persistedState {
	raw, err := s.kv.Get(ctx, s.cfg.StorageKey)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.log.Warn("failed to read persisted auth state", zap.Error(err))
		}
		return nil
	}

	var persisted persistedState
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.log.Warn("discarding corrupt persisted auth state", zap.Error(err))
		return nil
	}
	return &persisted
}

// persistLocked queues a write of the durable subset. Writes are asynchronous
// so UI-facing transitions never block on storage; Flush waits for the queue.
func (s *Store) persistLocked() {
	persisted := persistedState{
		Session:          s.state.session,
		SavedPhoneNumber: s.state.savedPhone,
		ResendCount:      s.state.resendCount,
	}
	if !s.state.cooldownUntil.IsZero() {
		persisted.OTPCooldownUntil = s.state.cooldownUntil.UnixMilli()
	}

	raw, err := json.Marshal(persisted)
	if err != nil {
		s.log.Error("failed to encode auth state", zap.Error(err))
		return
	}

	s.persistSeq++
	seq := s.persistSeq

	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()

		// Writes are serialized and a stale one is dropped, so the stored
		// record always reflects the newest committed state.
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if seq <= s.persistDone {
			return
		}
		s.persistDone = seq

		if err := s.kv.Set(context.Background(), s.cfg.StorageKey, string(raw)); err != nil {
			s.log.Warn("failed to persist auth state", zap.Error(err))
		}
	}()
}
