package models

import "strings"

// SanitizeKeySegment escapes the ':' delimiter so a caller-controlled value
// cannot spill into an adjacent key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the limiter key for a client address.
func IPKey(ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + SanitizeKeySegment(ip)
}
