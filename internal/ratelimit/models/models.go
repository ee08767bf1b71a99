// Package models holds the ingress throttle's value types.
package models

import "time"

// Decision is one admit/deny outcome for a key.
type Decision struct {
	Key     string
	Allowed bool
	// RetryAfter is how long until a token is available. Zero when allowed.
	RetryAfter time.Duration
	Method     string
	Route      string
	At         time.Time
}

// Counters tallies decisions.
type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}
