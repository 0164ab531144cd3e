// Package browserfakes provides an in-memory trial page for tests.
package browserfakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dev/bravebird/trial-resetter/pkg/browser"
)

// Selectors the fake page understands.
const (
	CountdownSelector    = ".countdown"
	LoginLinkSelector    = "#login-link"
	UsernameSelector     = `[name="username"]`
	PasswordSelector     = `[name="password"]`
	SubmitSelector       = ".submit-button"
	LoggedInUserSelector = "div.user-info span:not([class])"
	ResetAnchorSelector  = "#reset-trial-anchor"
)

// Site is the shared state behind every fake session.
type Site struct {
	mu sync.Mutex

	// Countdowns are returned one per countdown read; the last one repeats.
	Countdowns []string
	ResetLabel string

	// Accepted credentials. DisplayName overrides the identity shown after a
	// successful login.
	Username    string
	Password    string
	DisplayName string

	// AlreadyLoggedIn is the identity every new session starts with.
	AlreadyLoggedIn string

	// Errors fails any operation on the given selector.
	Errors      map[string]error
	NavigateErr error

	reads  int
	clicks map[string]int
	calls  []string
}

func (s *Site) record(call string) {
	s.calls = append(s.calls, call)
}

// Calls returns the operations issued so far, in order.
func (s *Site) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Clicks returns how many times selector was clicked.
func (s *Site) Clicks(selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[selector]
}

// Factory hands out sessions on a Site.
type Factory struct {
	Site *Site
	Err  error

	mu       sync.Mutex
	sessions []*Session
}

var _ browser.Factory = (*Factory)(nil)

func (f *Factory) NewSession(ctx context.Context) (browser.Session, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	f.Site.mu.Lock()
	identity := f.Site.AlreadyLoggedIn
	f.Site.mu.Unlock()

	s := &Session{site: f.Site, identity: identity, typed: make(map[string]string)}

	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

// Sessions returns every session opened so far.
func (f *Factory) Sessions() []*Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Session(nil), f.sessions...)
}

// Session is a fake browser session.
type Session struct {
	site     *Site
	identity string
	typed    map[string]string
	closes   int
}

var _ browser.Session = (*Session)(nil)

// Closes reports how many times Close was called.
func (s *Session) Closes() int {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	return s.closes
}

func (s *Session) Navigate(url string) error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record("navigate " + url)
	return s.site.NavigateErr
}

func (s *Session) Text(selector string) (string, error) {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record("text " + selector)
	if err := s.site.Errors[selector]; err != nil {
		return "", err
	}

	switch selector {
	case CountdownSelector:
		if len(s.site.Countdowns) == 0 {
			return "", fmt.Errorf("element not found: %s", selector)
		}
		i := s.site.reads
		if i >= len(s.site.Countdowns) {
			i = len(s.site.Countdowns) - 1
		}
		s.site.reads++
		return s.site.Countdowns[i], nil
	case ResetAnchorSelector:
		return s.site.ResetLabel, nil
	case LoggedInUserSelector:
		if s.identity == "" {
			return "", fmt.Errorf("element not found: %s", selector)
		}
		return s.identity, nil
	}
	return "", fmt.Errorf("element not found: %s", selector)
}

func (s *Session) Click(selector string) error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record("click " + selector)
	if err := s.site.Errors[selector]; err != nil {
		return err
	}
	if s.site.clicks == nil {
		s.site.clicks = make(map[string]int)
	}
	s.site.clicks[selector]++

	if selector == SubmitSelector {
		user, hasUser := s.typed[UsernameSelector]
		pass, hasPass := s.typed[PasswordSelector]
		if hasUser && hasPass && user == s.site.Username && pass == s.site.Password {
			s.identity = user
			if s.site.DisplayName != "" {
				s.identity = s.site.DisplayName
			}
		}
	}
	return nil
}

func (s *Session) Input(selector, value string) error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record("input " + selector)
	if err := s.site.Errors[selector]; err != nil {
		return err
	}
	s.typed[selector] = value
	return nil
}

func (s *Session) Lookup(selector string, timeout time.Duration) (browser.Presence, error) {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record(fmt.Sprintf("lookup %s %s", selector, timeout))
	if err := s.site.Errors[selector]; err != nil {
		return browser.Presence{}, err
	}
	if selector == LoggedInUserSelector && s.identity != "" {
		return browser.Presence{Text: s.identity, Found: true}, nil
	}
	return browser.Presence{}, nil
}

func (s *Session) Close() error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()

	s.site.record("close")
	s.closes++
	return nil
}
