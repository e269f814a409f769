package domain

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s\-.]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slugify derives a stable model_id from a raw display name: case-fold,
// strip characters outside [a-z0-9 .-], collapse whitespace runs to single
// hyphens. Same input always yields the same slug.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	return s
}

// RecordID composes the globally unique record identifier.
func RecordID(providerName, modelID string) string {
	return providerName + ":" + modelID
}
