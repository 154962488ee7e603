package mocks

import (
	"context"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// MockProfileStore implements domain.ProfileStore interface for testing
type MockProfileStore struct {
	GetFunc    func(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpsertFunc func(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error)
}

// NewMockProfileStore creates a new MockProfileStore with default behaviors
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{}
}

// Get fetches a profile by user ID
func (m *MockProfileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	// Default behavior: not found
	return nil, domain.ErrProfileNotFound
}

// Upsert creates or patches a profile
func (m *MockProfileStore) Upsert(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, update)
	}
	// Default behavior: echo the update onto a fresh profile
	profile := &domain.UserProfile{UserID: userID}
	if update.FullName != nil {
		profile.FullName = *update.FullName
	}
	if update.Region != nil {
		profile.Region = *update.Region
	}
	if update.District != nil {
		profile.District = *update.District
	}
	if update.StreetArea != nil {
		profile.StreetArea = *update.StreetArea
	}
	return profile, nil
}

// Compile-time interface compliance verification
var _ domain.ProfileStore = (*MockProfileStore)(nil)
