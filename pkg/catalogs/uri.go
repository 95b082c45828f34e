package catalogs

import (
	"net/url"
	"strings"
)

// IsAbsoluteURI reports whether s parses as an absolute URI with a scheme
// and, for hierarchical schemes, a host.
func IsAbsoluteURI(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n<>\"") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Opaque != "" {
		return true
	}
	return u.Host != ""
}
