package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"dev/bravebird/trial-resetter/pkg/config"
)

// RodFactory opens sessions with go-rod, either through a remote rod manager
// or by launching a local browser.
type RodFactory struct {
	Mode           string
	ManagerURL     string
	ChromeBin      string
	ImplicitWait   time.Duration
	CommandTimeout time.Duration
}

// NewRodFactory creates a factory from process configuration.
func NewRodFactory(cfg config.Config) *RodFactory {
	return &RodFactory{
		Mode:           cfg.BrowserMode,
		ManagerURL:     cfg.BrowserURL,
		ChromeBin:      cfg.ChromeBin,
		ImplicitWait:   cfg.ImplicitWait,
		CommandTimeout: cfg.CommandTimeout,
	}
}

// configure applies the flags every session runs with.
func configure(l *launcher.Launcher) *launcher.Launcher {
	return l.Headless(true).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu")
}

// NewSession connects to a fresh browser and opens a blank page bound to ctx.
// The browser connection itself stays unbound so Close works after ctx ends.
func (f *RodFactory) NewSession(ctx context.Context) (Session, error) {
	var (
		browser *rod.Browser
		local   *launcher.Launcher
	)

	switch f.Mode {
	case config.BrowserModeLocal:
		l := launcher.New()
		if f.ChromeBin != "" {
			l = l.Bin(f.ChromeBin)
		}
		l = configure(l)

		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		local = l
		browser = rod.New().ControlURL(url)

	default:
		l, err := launcher.NewManaged(f.ManagerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to reach browser manager %s: %w", f.ManagerURL, err)
		}
		client, err := configure(l).Client()
		if err != nil {
			return nil, fmt.Errorf("failed to start remote browser: %w", err)
		}
		browser = rod.New().Client(client)
	}

	if err := browser.Connect(); err != nil {
		if local != nil {
			release(local)
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		if local != nil {
			release(local)
		}
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &rodSession{
		browser:        browser,
		page:           page.Context(ctx),
		local:          local,
		implicitWait:   f.ImplicitWait,
		commandTimeout: f.CommandTimeout,
	}, nil
}

// process is the part of a local launcher that owns the browser process.
type process interface {
	Kill()
	Cleanup()
}

// release stops a locally launched browser and removes its profile dir.
// Cleanup waits for the process to exit, so it must be killed first even
// when the browser was already closed over CDP.
func release(p process) {
	p.Kill()
	p.Cleanup()
}

type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
	local   *launcher.Launcher

	implicitWait   time.Duration
	commandTimeout time.Duration
}

func (s *rodSession) Navigate(url string) error {
	p := s.page.Timeout(s.commandTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// find waits at most the implicit wait for selector, then rebinds the element
// to the session context so follow-up calls get their own bound.
func (s *rodSession) find(selector string) (*rod.Element, error) {
	p := s.page.Timeout(s.implicitWait)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return el.Context(s.page.GetContext()), nil
}

func (s *rodSession) Text(selector string) (string, error) {
	el, err := s.find(selector)
	if err != nil {
		return "", err
	}
	el = el.Timeout(s.commandTimeout)
	defer el.CancelTimeout()

	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *rodSession) Click(selector string) error {
	el, err := s.find(selector)
	if err != nil {
		return err
	}
	el = el.Timeout(s.commandTimeout)
	defer el.CancelTimeout()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

func (s *rodSession) Input(selector, value string) error {
	el, err := s.find(selector)
	if err != nil {
		return err
	}
	el = el.Timeout(s.commandTimeout)
	defer el.CancelTimeout()

	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

func (s *rodSession) Lookup(selector string, timeout time.Duration) (Presence, error) {
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if errors.Is(err, context.DeadlineExceeded) {
		return Presence{}, nil
	}
	if err != nil {
		return Presence{}, fmt.Errorf("lookup of %s failed: %w", selector, err)
	}

	el = el.Context(s.page.GetContext()).Timeout(s.commandTimeout)
	defer el.CancelTimeout()

	text, err := el.Text()
	if err != nil {
		return Presence{}, fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return Presence{Text: strings.TrimSpace(text), Found: true}, nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	if s.local != nil {
		release(s.local)
	}
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
