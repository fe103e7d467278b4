package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ValidateTweetContent checks length limits for tweet bodies.
// Length is counted in runes so multibyte characters are not penalized.
func ValidateTweetContent(content string, maxLen int) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxLen {
		return fmt.Errorf("content must not exceed %d characters", maxLen)
	}
	return nil
}

// ValidateImageURL checks that an optional image URL is absolute http(s).
func ValidateImageURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid image URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("image URL must be absolute")
	}
	return nil
}

// ValidateWebsite checks an optional profile website field.
func ValidateWebsite(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if len(rawURL) > 255 {
		return fmt.Errorf("website must not exceed 255 characters")
	}
	return ValidateImageURL(rawURL)
}
