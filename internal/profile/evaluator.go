package profile

import (
	"strings"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// EvaluateCompletion classifies a profile's onboarding progress. Identity comes
// before address: a profile missing both reports needs_name, and only a named
// profile can report needs_shop_address. A nil profile means the user has not
// started onboarding at all.
func EvaluateCompletion(p *domain.UserProfile) domain.CompletionStatus {
	if p == nil {
		return domain.CompletionNeedsName
	}
	if strings.TrimSpace(p.FullName) == "" {
		return domain.CompletionNeedsName
	}
	if p.Region == "" || p.District == "" || p.StreetArea == "" {
		return domain.CompletionNeedsShopAddress
	}
	return domain.CompletionComplete
}
