// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookup.
// The users collection's unique index is on the normalized form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person or group name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value (mentorship or group role).
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Industry lowercases and trims an industry label for the _ci field and
// for filter candidates.
func Industry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a raw query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
