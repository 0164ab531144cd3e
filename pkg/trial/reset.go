package trial

import (
	"dev/bravebird/trial-resetter/pkg/browser"
)

// ClickRestartTrial clicks the reset control when its label shows the
// current user may use it. Only the rendered label is checked.
func ClickRestartTrial(s browser.Session) error {
	label, err := s.Text(resetAnchorSelector)
	if err != nil {
		return err
	}
	if label != resetLabel {
		return ErrNotAuthorized
	}
	return s.Click(resetAnchorSelector)
}
