package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// ProfileRepositoryImpl implements domain.ProfileStore using GORM.
// Exactly one row per user; writes are upserts keyed by user ID.
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// DBUserProfile represents the database model for UserProfile
type DBUserProfile struct {
	UserID              string    `gorm:"primaryKey;size:36;column:id"`
	FullName            string    `gorm:"size:255"`
	Phone               string    `gorm:"index;size:32"`
	ProfileImageURL     string    `gorm:"size:512"`
	Region              string    `gorm:"size:128"`
	District            string    `gorm:"size:128"`
	StreetArea          string    `gorm:"size:255"`
	ShopName            string    `gorm:"size:255"`
	ShopType            string    `gorm:"size:64"`
	BusinessSize        string    `gorm:"size:64"`
	OnboardingCompleted bool      `gorm:"index"`
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUserProfile) TableName() string {
	return "user_profiles"
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileStore {
	return &ProfileRepositoryImpl{db: db}
}

// Get implements domain.ProfileStore
func (r *ProfileRepositoryImpl) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var dbProfile DBUserProfile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&dbProfile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbProfile), nil
}

// Upsert implements domain.ProfileStore. The row is created on first write and
// patched field-by-field after that. OnboardingCompleted never transitions
// true -> false regardless of the update payload.
func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	var result *domain.UserProfile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbProfile DBUserProfile
		err := tx.Where("id = ?", userID).First(&dbProfile).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			dbProfile = DBUserProfile{UserID: userID}
		}

		applyUpdate(&dbProfile, update)

		if err := tx.Save(&dbProfile).Error; err != nil {
			return err
		}
		result = r.dbToDomain(&dbProfile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyUpdate(p *DBUserProfile, u domain.ProfileUpdate) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.ProfileImageURL != nil {
		p.ProfileImageURL = *u.ProfileImageURL
	}
	if u.Region != nil {
		p.Region = *u.Region
	}
	if u.District != nil {
		p.District = *u.District
	}
	if u.StreetArea != nil {
		p.StreetArea = *u.StreetArea
	}
	if u.ShopName != nil {
		p.ShopName = *u.ShopName
	}
	if u.ShopType != nil {
		p.ShopType = *u.ShopType
	}
	if u.BusinessSize != nil {
		p.BusinessSize = *u.BusinessSize
	}
	// Monotonic: ignore attempts to clear the flag
	if u.OnboardingCompleted != nil && *u.OnboardingCompleted {
		p.OnboardingCompleted = true
	}
}

func (r *ProfileRepositoryImpl) dbToDomain(p *DBUserProfile) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:              p.UserID,
		FullName:            p.FullName,
		Phone:               p.Phone,
		ProfileImageURL:     p.ProfileImageURL,
		Region:              p.Region,
		District:            p.District,
		StreetArea:          p.StreetArea,
		ShopName:            p.ShopName,
		ShopType:            p.ShopType,
		BusinessSize:        p.BusinessSize,
		OnboardingCompleted: p.OnboardingCompleted,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
