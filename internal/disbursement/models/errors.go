package models

import (
	"fmt"
	"time"

	dErrors "faucetgate/pkg/domain-errors"
)

// CooldownActiveError rejects a request inside the identity's window.
// It unwraps to a CodeCooldownActive domain error.
type CooldownActiveError struct {
	Identity      string
	LastSuccessAt time.Time
	RetryAt       time.Time
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("identity %q is in cooldown until %s", e.Identity, e.RetryAt.UTC().Format(time.RFC3339))
}

func (e *CooldownActiveError) Unwrap() error {
	return dErrors.New(dErrors.CodeCooldownActive,
		fmt.Sprintf("already received a grant; next eligible at %s", e.RetryAt.UTC().Format(time.RFC3339)))
}
