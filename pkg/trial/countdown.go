package trial

import (
	"errors"
	"regexp"
	"time"

	"dev/bravebird/trial-resetter/pkg/browser"
)

const countdownLayout = "15:04:05"

// time.Parse accepts a fractional second after the seconds field even when
// the layout has none, so the shape is checked first.
var countdownPattern = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}$`)

var errCountdownFormat = errors.New("countdown is not in HH:MM:SS format")

// ParseCountdown converts an HH:MM:SS countdown into seconds.
func ParseCountdown(text string) (int, error) {
	if !countdownPattern.MatchString(text) {
		return 0, &ParseError{Text: text, Err: errCountdownFormat}
	}
	t, err := time.Parse(countdownLayout, text)
	if err != nil {
		return 0, &ParseError{Text: text, Err: err}
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// ReadCountdown reads the countdown timer from the current page.
func ReadCountdown(s browser.Session) (int, error) {
	text, err := s.Text(countdownSelector)
	if err != nil {
		return 0, err
	}
	return ParseCountdown(text)
}
