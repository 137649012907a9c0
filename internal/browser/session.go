package browser

import "context"

// PageSession is one renderable browser tab. The capture pipeline drives
// everything through this interface; the chromedp implementation below is
// the only real one, tests substitute fakes.
type PageSession interface {
	// Navigate loads url and returns once the DOM is ready (not full
	// load). The caller bounds it via ctx.
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a JavaScript expression in the page and unmarshals
	// the result into out (may be nil to discard).
	Evaluate(ctx context.Context, expr string, out any) error
	// Click clicks the first element matching the CSS selector.
	Click(ctx context.Context, selector string) error
	// PressKey dispatches a keyboard event ("Escape" etc.) to the page.
	PressKey(ctx context.Context, key string) error
	// SetViewport sets the emulated viewport size.
	SetViewport(ctx context.Context, width, height int) error
	// SetUserAgent overrides the user agent for subsequent navigation.
	SetUserAgent(ctx context.Context, ua string) error
	// HTML returns the rendered document's outer HTML.
	HTML(ctx context.Context) (string, error)
	// Screenshot writes a viewport (not full-page) PNG to path.
	Screenshot(ctx context.Context, path string) error
	// Close tears the tab down. Safe to call more than once.
	Close() error
}
