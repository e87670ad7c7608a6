// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims and lowercases a username or login identifier.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status trims and lowercases an enumerated status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query-string value, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// RestaurantCode extracts n from a "REST<n>" login code (any case,
// surrounding space). ok is false when s is not a well-formed code.
func RestaurantCode(s string) (n int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "REST") || len(s) == len("REST") {
		return 0, false
	}
	for _, r := range s[len("REST"):] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000_000 {
			return 0, false
		}
	}
	return n, n > 0
}
