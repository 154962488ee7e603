package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/profile"
)

// ProfileHandlers handles onboarding profile HTTP requests
type ProfileHandlers struct {
	profiles *profile.Service
}

// NewProfileHandlers creates new profile handlers
func NewProfileHandlers(profiles *profile.Service) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles}
}

// ProfileUpdateRequest is a partial profile update; omitted fields stay untouched
type ProfileUpdateRequest struct {
	FullName        *string `json:"full_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
	Region          *string `json:"region,omitempty"`
	District        *string `json:"district,omitempty"`
	StreetArea      *string `json:"street_area,omitempty"`
	ShopName        *string `json:"shop_name,omitempty"`
	ShopType        *string `json:"shop_type,omitempty"`
	BusinessSize    *string `json:"business_size,omitempty"`
}

// Get returns the authenticated user's profile
func (h *ProfileHandlers) Get(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profileJSON(p)})
}

// Update patches the authenticated user's profile
func (h *ProfileHandlers) Update(c *gin.Context) {
	userID := c.GetString("user_id")

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := domain.ProfileUpdate{
		FullName:        req.FullName,
		Phone:           req.Phone,
		ProfileImageURL: req.ProfileImageURL,
		Region:          req.Region,
		District:        req.District,
		StreetArea:      req.StreetArea,
		ShopName:        req.ShopName,
		ShopType:        req.ShopType,
		BusinessSize:    req.BusinessSize,
	}

	p, err := h.profiles.Update(c.Request.Context(), userID, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profileJSON(p)})
}

// CompleteOnboarding marks the authenticated user's onboarding finished
func (h *ProfileHandlers) CompleteOnboarding(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.profiles.CompleteOnboarding(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete onboarding"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profileJSON(p)})
}

// Completion reports how far the authenticated user has progressed
func (h *ProfileHandlers) Completion(c *gin.Context) {
	userID := c.GetString("user_id")

	completion := h.profiles.Completion(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"status":               completion.Status,
			"onboarding_completed": completion.OnboardingCompleted,
		},
	})
}

func profileJSON(p *domain.UserProfile) gin.H {
	return gin.H{
		"user_id":              p.UserID,
		"full_name":            p.FullName,
		"phone":                p.Phone,
		"profile_image_url":    p.ProfileImageURL,
		"region":               p.Region,
		"district":             p.District,
		"street_area":          p.StreetArea,
		"shop_name":            p.ShopName,
		"shop_type":            p.ShopType,
		"business_size":        p.BusinessSize,
		"onboarding_completed": p.OnboardingCompleted,
		"created_at":           p.CreatedAt,
		"updated_at":           p.UpdatedAt,
	}
}
