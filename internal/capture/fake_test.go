package capture

import (
	"context"
	"strings"
	"time"

	"github.com/user/capture-service/internal/browser"
	"github.com/user/capture-service/internal/domain"
)

// fakeSession is a scriptable PageSession for tests.
type fakeSession struct {
	html     string
	htmlErr  error
	navErr   error
	navDelay time.Duration
	evalErr  error
	shotErr  error

	candidates []ClickCandidate

	navigated []string
	evals     []string
	keys      []string
	shots     []string
	closed    bool
}

var _ browser.PageSession = (*fakeSession)(nil)

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	if f.navDelay > 0 {
		select {
		case <-time.After(f.navDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.navErr != nil {
		return f.navErr
	}
	return ctx.Err()
}

func (f *fakeSession) Evaluate(ctx context.Context, expr string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.evals = append(f.evals, expr)
	if f.evalErr != nil {
		return f.evalErr
	}
	if cands, ok := out.(*[]ClickCandidate); ok {
		*cands = f.candidates
	}
	return nil
}

func (f *fakeSession) Click(ctx context.Context, selector string) error { return ctx.Err() }

func (f *fakeSession) PressKey(ctx context.Context, key string) error {
	f.keys = append(f.keys, key)
	return ctx.Err()
}

func (f *fakeSession) SetViewport(ctx context.Context, w, h int) error { return ctx.Err() }

func (f *fakeSession) SetUserAgent(ctx context.Context, ua string) error { return ctx.Err() }

func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.htmlErr != nil {
		return "", f.htmlErr
	}
	return f.html, nil
}

func (f *fakeSession) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.shotErr != nil {
		return f.shotErr
	}
	f.shots = append(f.shots, path)
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

// fakeOpener hands out the same fake session each time.
type fakeOpener struct {
	session *fakeSession
	openErr error
	opened  int
}

func (f *fakeOpener) NewPage() (browser.PageSession, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return f.session, nil
}

// fakeRunner scripts attempt outcomes per URL for coordinator tests.
type fakeRunner struct {
	outcomes map[string]domain.Attempt
	delay    time.Duration
	urls     []string
	paths    []string
}

func (r *fakeRunner) Run(ctx context.Context, url, shotPath string) domain.Attempt {
	r.urls = append(r.urls, url)
	r.paths = append(r.paths, shotPath)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return domain.Attempt{URL: url, Outcome: domain.OutcomeTimedOut}
		}
	}
	if att, ok := r.outcomes[url]; ok {
		att.URL = url
		return att
	}
	return domain.Attempt{URL: url, Outcome: domain.OutcomeNavigationError, Reason: "unscripted"}
}

// fakeHistory is an in-memory History with an optional forced error.
type fakeHistory struct {
	used    map[string]bool
	lookErr error
	marked  []string
}

func (h *fakeHistory) WasCaptured(ctx context.Context, url string) (bool, error) {
	if h.lookErr != nil {
		return false, h.lookErr
	}
	return h.used[url], nil
}

func (h *fakeHistory) MarkCaptured(ctx context.Context, url string) error {
	h.marked = append(h.marked, url)
	return nil
}

// isSnapshotEval reports whether a recorded eval was the semantic
// candidate scan.
func isSnapshotEval(expr string) bool {
	return strings.Contains(expr, "getBoundingClientRect") && strings.Contains(expr, "map")
}
