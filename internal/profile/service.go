package profile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// Completion pairs the derived status with the persisted onboarding flag.
// The status is recomputed from profile fields; the flag is the durable
// record that the user finished the whole flow, including the optional
// shop-details step the field check cannot see.
type Completion struct {
	Status              domain.CompletionStatus
	OnboardingCompleted bool
}

// Service wraps the profile store with onboarding semantics
type Service struct {
	store domain.ProfileStore
	log   *zap.Logger
}

// NewService creates a profile service
func NewService(store domain.ProfileStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Get fetches the profile for userID
func (s *Service) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.store.Get(ctx, userID)
}

// Completion evaluates how far userID has progressed through onboarding.
// Every failure degrades to needs_name: routing a finished user back to the
// first onboarding step is annoying but safe, while guessing complete on bad
// data would strand an unfinished user in the main app.
func (s *Service) Completion(ctx context.Context, userID string) Completion {
	if userID == "" {
		return Completion{Status: domain.CompletionNeedsName}
	}

	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			s.log.Warn("profile fetch failed, degrading to needs_name",
				zap.String("user_id", userID), zap.Error(err))
		}
		return Completion{Status: domain.CompletionNeedsName}
	}

	return Completion{
		Status:              EvaluateCompletion(p),
		OnboardingCompleted: p.OnboardingCompleted,
	}
}

// UpdatePersonalInfo records the identity step of onboarding
func (s *Service) UpdatePersonalInfo(ctx context.Context, userID, fullName, phone, imageURL string) (*domain.UserProfile, error) {
	update := domain.ProfileUpdate{FullName: &fullName}
	if phone != "" {
		normalized := domain.NormalizePhone(phone)
		update.Phone = &normalized
	}
	if imageURL != "" {
		update.ProfileImageURL = &imageURL
	}
	return s.upsert(ctx, userID, update)
}

// UpdateShopLocation records the shop address step of onboarding
func (s *Service) UpdateShopLocation(ctx context.Context, userID, region, district, streetArea string) (*domain.UserProfile, error) {
	return s.upsert(ctx, userID, domain.ProfileUpdate{
		Region:     &region,
		District:   &district,
		StreetArea: &streetArea,
	})
}

// UpdateShopDetails records the shop description step of onboarding
func (s *Service) UpdateShopDetails(ctx context.Context, userID, shopName, shopType, businessSize string) (*domain.UserProfile, error) {
	return s.upsert(ctx, userID, domain.ProfileUpdate{
		ShopName:     &shopName,
		ShopType:     &shopType,
		BusinessSize: &businessSize,
	})
}

// Update applies an arbitrary partial update
func (s *Service) Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	return s.upsert(ctx, userID, update)
}

// CompleteOnboarding marks the flow finished. The flag is monotonic; calling
// this twice is harmless.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (*domain.UserProfile, error) {
	completed := true
	return s.upsert(ctx, userID, domain.ProfileUpdate{OnboardingCompleted: &completed})
}

func (s *Service) upsert(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	p, err := s.store.Upsert(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
