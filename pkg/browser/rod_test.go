package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev/bravebird/trial-resetter/pkg/config"
)

func TestConfigureFlags(t *testing.T) {
	l := configure(launcher.New())

	for _, flag := range []flags.Flag{flags.Headless, "no-sandbox", "disable-dev-shm-usage"} {
		assert.True(t, l.Has(flag), "missing flag %s", flag)
	}
}

func TestNewRodFactory(t *testing.T) {
	cfg := config.Config{
		BrowserMode:    config.BrowserModeManaged,
		BrowserURL:     "ws://browser:7317",
		ImplicitWait:   time.Second,
		CommandTimeout: 30 * time.Second,
	}

	f := NewRodFactory(cfg)

	assert.Equal(t, config.BrowserModeManaged, f.Mode)
	assert.Equal(t, "ws://browser:7317", f.ManagerURL)
	assert.Equal(t, time.Second, f.ImplicitWait)
	assert.Equal(t, 30*time.Second, f.CommandTimeout)
}

// fakeProcess behaves like a launcher: Cleanup returns only once the
// process has exited, which happens on Kill.
type fakeProcess struct {
	mu     sync.Mutex
	calls  []string
	exited chan struct{}
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exited: make(chan struct{})}
}

func (p *fakeProcess) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "kill")
	close(p.exited)
}

func (p *fakeProcess) Cleanup() {
	<-p.exited
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "cleanup")
}

func TestReleaseKillsBeforeCleanup(t *testing.T) {
	p := newFakeProcess()

	done := make(chan struct{})
	go func() {
		release(p)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("release blocked on a browser process that was never stopped")
	}
	assert.Equal(t, []string{"kill", "cleanup"}, p.calls)
}

const lookupPage = `<html><body><span id="user">  admin  </span></body></html>`

func TestRodSessionLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a browser")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local browser available")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, lookupPage)
	}))
	defer srv.Close()

	f := &RodFactory{
		Mode:           config.BrowserModeLocal,
		ChromeBin:      bin,
		ImplicitWait:   time.Second,
		CommandTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := f.NewSession(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(srv.URL))

	got, err := s.Lookup("#user", time.Second)
	require.NoError(t, err)
	assert.Equal(t, Presence{Text: "admin", Found: true}, got)

	got, err = s.Lookup("#missing", 200*time.Millisecond)
	require.NoError(t, err, "a lookup that runs out of time is an absent element")
	assert.False(t, got.Found)

	cancel()
	_, err = s.Lookup("#user", time.Second)
	require.Error(t, err, "a cancelled session is a failure, not an absent element")
	assert.True(t, errors.Is(err, context.Canceled))
}
