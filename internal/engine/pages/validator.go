package pages

import (
	"fmt"
	"net/url"
	"slices"
	"unicode/utf8"

	apperrors "biolink/internal/pkg/errors"
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("invalid %s format", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("%s must start with http:// or https://", field)
	}
	return nil
}

func ValidateLink(link *Link) error {
	if link.Text == "" {
		return invalid("text is required")
	}
	if link.URL == "" {
		return invalid("url is required")
	}
	return validateURL("url", link.URL)
}

func ValidateSocialLinks(links []SocialLink) error {
	for _, s := range links {
		if !slices.Contains(SocialNetworks, s.Name) {
			return invalid("unsupported social network %q", s.Name)
		}
		if err := validateURL("social link url", s.URL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCampaign checks the campaign on its own and against the links of cfg.
// Overlap with other campaigns is checked separately.
func ValidateCampaign(cfg *Config, c *Campaign) error {
	if c.Name == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(c.Message) > MaxCampaignMessageLength {
		return invalid("message must be at most %d characters", MaxCampaignMessageLength)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return invalid("startDate and endDate are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return invalid("endDate must not be before startDate")
	}
	for _, id := range c.Links {
		if cfg.linkIndex(id) < 0 {
			return invalid("unknown link %q", id)
		}
	}
	return nil
}
