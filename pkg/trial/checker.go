// Package trial drives the countdown check, login and reset on the gateway page.
package trial

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dev/bravebird/trial-resetter/pkg/browser"
	"dev/bravebird/trial-resetter/pkg/config"
	"dev/bravebird/trial-resetter/pkg/logging"
	"dev/bravebird/trial-resetter/pkg/models"
)

// Page elements
const (
	countdownSelector    = ".countdown"
	loginLinkSelector    = "#login-link"
	usernameSelector     = `[name="username"]`
	passwordSelector     = `[name="password"]`
	submitSelector       = ".submit-button"
	loggedInUserSelector = "div.user-info span:not([class])"
	resetAnchorSelector  = "#reset-trial-anchor"

	resetLabel = "Reset Trial"
)

// Checker runs one check-and-reset iteration per call.
type Checker struct {
	factory browser.Factory
	cfg     config.Config
	logger  zerolog.Logger
	now     func() time.Time
}

// NewChecker creates a checker.
func NewChecker(factory browser.Factory, cfg config.Config, logger zerolog.Logger) *Checker {
	return &Checker{
		factory: factory,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// RunOnce opens a session, checks the countdown and resets the trial when it
// has expired. The session is closed before RunOnce returns on every path.
func (c *Checker) RunOnce(ctx context.Context) (result models.CheckResult, err error) {
	start := c.now()
	result = models.CheckResult{
		ID:        uuid.New().String(),
		StartedAt: start,
		Outcome:   models.OutcomeWaiting,
	}
	defer func() {
		result.Duration = c.now().Sub(start).Milliseconds()
		if err != nil {
			result.Outcome = models.OutcomeFailed
			result.ErrorMessage = err.Error()
		}
	}()

	session, err := c.factory.NewSession(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("Failed to close browser session")
			if err == nil {
				err = cerr
			}
		}
	}()

	return c.check(session, result)
}

func (c *Checker) check(s browser.Session, result models.CheckResult) (models.CheckResult, error) {
	if err := s.Navigate(c.cfg.TargetURL()); err != nil {
		return result, err
	}

	seconds, err := ReadCountdown(s)
	if err != nil {
		return result, err
	}
	result.SecondsRemaining = seconds

	if seconds != 0 {
		c.logger.Info().Int("seconds", seconds).Msgf("Time remaining: %d", seconds)
		return result, nil
	}

	c.logger.Info().Msg("Trial Expired.")

	identity, err := ReadLoggedInUser(s, c.cfg.SessionCheckTimeout)
	if err != nil {
		return result, err
	}
	if !identity.Found {
		c.logger.Info().Msg("Login Required.")
		if err := c.Login(s); err != nil {
			return result, err
		}
	}
	result.LoggedIn = true

	if err := ClickRestartTrial(s); err != nil {
		return result, err
	}

	after, err := ReadCountdown(s)
	if err != nil {
		return result, err
	}
	result.Outcome = models.OutcomeReset
	result.SecondsAfterReset = after

	logging.Success(&c.logger).Int("seconds", after).Msgf("Time remaining: %d", after)
	return result, nil
}
