package validation

import (
	"fmt"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("source_tier", validateSourceTier); err != nil {
		panic(fmt.Sprintf("failed to register source_tier validator: %v", err))
	}
	if err := Validate.RegisterValidation("fetch_method", validateFetchMethod); err != nil {
		panic(fmt.Sprintf("failed to register fetch_method validator: %v", err))
	}
}

func validateSourceTier(fl validator.FieldLevel) bool {
	switch models.SourceTier(fl.Field().String()) {
	case models.SourceTierOfficial, models.SourceTierExpert, models.SourceTierCommunity:
		return true
	default:
		return false
	}
}

func validateFetchMethod(fl validator.FieldLevel) bool {
	switch models.FetchMethod(fl.Field().String()) {
	case models.FetchMethodRSS, models.FetchMethodYouTube, models.FetchMethodReddit, models.FetchMethodWebpage:
		return true
	default:
		return false
	}
}

// ValidateSourceTier validates a tier string outside struct validation
func ValidateSourceTier(tier string) error {
	switch models.SourceTier(tier) {
	case models.SourceTierOfficial, models.SourceTierExpert, models.SourceTierCommunity:
		return nil
	default:
		return fmt.Errorf("invalid source tier %q (must be tier_1, tier_2 or tier_3)", tier)
	}
}

// ValidateFetchMethod validates a fetch method string outside struct validation
func ValidateFetchMethod(method string) error {
	switch models.FetchMethod(method) {
	case models.FetchMethodRSS, models.FetchMethodYouTube, models.FetchMethodReddit, models.FetchMethodWebpage:
		return nil
	default:
		return fmt.Errorf("invalid fetch method %q (must be rss, youtube, reddit or webpage)", method)
	}
}
