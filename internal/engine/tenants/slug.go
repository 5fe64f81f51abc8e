package tenants

import (
	"fmt"
	"strings"

	apperrors "biolink/internal/pkg/errors"
)

const (
	slugChars     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"
	minSlugLength = 2
	maxSlugLength = 40
)

var reservedSlugs = []string{"api", "admin", "auth", "go", "health", "login", "metrics", "static", "uploads"}

// ValidateSlug checks a tenant name before it becomes a store key and a public path segment.
func ValidateSlug(slug string) error {
	if len(slug) < minSlugLength || len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug must be %d to %d characters", apperrors.ErrInvalidInput, minSlugLength, maxSlugLength)
	}

	for _, c := range slug {
		if !strings.ContainsRune(slugChars, c) {
			return fmt.Errorf("%w: slug may only contain letters, digits and '-'", apperrors.ErrInvalidInput)
		}
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("%w: slug must not start or end with '-'", apperrors.ErrInvalidInput)
	}

	for _, r := range reservedSlugs {
		if strings.EqualFold(slug, r) {
			return fmt.Errorf("%w: slug %q is reserved", apperrors.ErrInvalidInput, slug)
		}
	}

	return nil
}
