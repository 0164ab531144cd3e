package trial

import (
	"errors"
	"fmt"
)

// ErrNotAuthorized is returned when the reset control is not in its
// actionable state for the current user.
var ErrNotAuthorized = errors.New("user is not authorized to restart the trial. Make sure user has Administrator role")

// LoginError is returned when the identity shown after login does not match
// the configured username.
type LoginError struct {
	Username string
	Password string
	Shown    string // identity read back, empty when none appeared
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("logging in failed with credentials: '%s': '%s'", e.Username, mask(e.Password))
}

// ParseError is returned when the countdown text is not a clock value.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid countdown %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
