package models

// RateLimitExceededResponse is written when a client exceeds its ingress budget.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}
