package trial

import (
	"fmt"
	"time"

	"dev/bravebird/trial-resetter/pkg/browser"
	"dev/bravebird/trial-resetter/pkg/logging"
)

// Identity is the username shown in the page header, if any.
type Identity struct {
	Name  string
	Found bool
}

// ReadLoggedInUser waits up to timeout for the logged-in username.
func ReadLoggedInUser(s browser.Session, timeout time.Duration) (Identity, error) {
	p, err := s.Lookup(loggedInUserSelector, timeout)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: p.Text, Found: p.Found}, nil
}

// Login submits the two-step login form and confirms the identity readback.
func (c *Checker) Login(s browser.Session) error {
	steps := []struct {
		selector string
		typed    bool
		value    string
	}{
		{selector: loginLinkSelector},
		{selector: usernameSelector, typed: true, value: c.cfg.Username},
		{selector: submitSelector},
		{selector: passwordSelector, typed: true, value: c.cfg.Password},
		{selector: submitSelector},
	}

	for _, step := range steps {
		var err error
		if step.typed {
			err = s.Input(step.selector, step.value)
		} else {
			err = s.Click(step.selector)
		}
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	identity, err := ReadLoggedInUser(s, c.cfg.LoginCheckTimeout)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !identity.Found || identity.Name != c.cfg.Username {
		return &LoginError{Username: c.cfg.Username, Password: c.cfg.Password, Shown: identity.Name}
	}

	logging.Success(&c.logger).Str("username", c.cfg.Username).Msg("User logged in successfully")
	return nil
}
