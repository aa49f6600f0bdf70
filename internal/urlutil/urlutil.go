// Package urlutil normalizes operator-supplied destinations before the
// engine classifies or navigates to them.
package urlutil

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when normalization consumes the entire input.
var ErrEmptyInput = errors.New("urlutil: empty input")

// ErrUnsafeScheme is returned for scheme handlers that can execute code or
// read local state.
var ErrUnsafeScheme = errors.New("urlutil: unsafe scheme")

// Schemes that must never reach the browsing surface.
var unsafeSchemes = []string{"javascript:", "data:", "file:", "vbscript:", "blob:"}

// NormalizeDomain reduces a URL or bare host to its lowercase domain:
// whitespace trimmed, http/https scheme stripped, everything from the first
// slash dropped, trailing port removed.
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "https://") {
		s = s[len("https://"):]
	} else if strings.HasPrefix(lower, "http://") {
		s = s[len("http://"):]
	}

	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	s = strings.ToLower(s)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// NormalizeURL validates a destination before navigation. Dangerous schemes
// are rejected case-insensitively; scheme-less host-like input is promoted
// to https.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyInput
	}

	lower := strings.ToLower(s)
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", ErrUnsafeScheme
		}
	}

	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	return s, nil
}
