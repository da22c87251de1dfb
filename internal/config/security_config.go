package config

import "strings"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// routeSecurity maps path prefixes to their required security level.
// The longest matching prefix wins; unmatched paths require an access token.
var routeSecurity = map[string]SecurityLevel{
	"/healthz":           SecurityPublic,
	"/webhooks/":         SecurityPublic, // authenticated by payload signature instead
	"/api/":              SecurityAccess,
	"/api/bookings":      SecurityAccess,
	"/api/earnings":      SecurityAccess,
	"/api/payments":      SecurityAccess,
	"/api/notifications": SecurityAccess,
}

// GetSecurityLevel returns the security level for a request path
func GetSecurityLevel(path string) SecurityLevel {
	best := ""
	level := SecurityAccess
	for prefix, l := range routeSecurity {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
			level = l
		}
	}
	return level
}
