package utils

import (
	"net/url"
	"strings"
)

// ValidateURL checks that the submitted URL is an absolute http/https URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrEmptyURL
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrInvalidScheme
	}

	if parsedURL.Host == "" {
		return ErrEmptyHost
	}

	return nil
}

// ExtractFileID derives the short code from a URL: strip the query string and
// fragment, split the remainder on "/", take the last non-empty segment.
// Returns "" when the URL has no path segment to derive from.
func ExtractFileID(rawURL string) string {
	clean := rawURL
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		clean = clean[:i]
	}

	segments := strings.Split(clean, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
