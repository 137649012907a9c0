package browser

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Options controls the headless Chrome process.
type Options struct {
	UserAgent string
	ProxyURL  string
}

// Browser owns one headless Chrome process for the lifetime of a batch.
// Only the batch orchestrator creates and closes it; everything else
// works with PageSession tabs handed out by NewPage.
type Browser struct {
	allocCancel context.CancelFunc
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	logger      *zap.Logger
}

// Launch starts the Chrome process. A launch failure is fatal to the
// whole run, so the caller should abort before processing any item.
func Launch(opts Options, logger *zap.Logger) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ProxyURL != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	rootCtx, rootCancel := chromedp.NewContext(allocCtx)

	// Run a no-op task so the process starts now; otherwise a missing
	// Chrome binary would only surface on the first item.
	if err := chromedp.Run(rootCtx); err != nil {
		rootCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	logger.Info("browser process started")
	return &Browser{
		allocCancel: allocCancel,
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
		logger:      logger,
	}, nil
}

// NewPage opens a fresh tab in the running browser.
func (b *Browser) NewPage() (PageSession, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.rootCtx)
	return &chromeSession{ctx: tabCtx, cancel: tabCancel}, nil
}

// Close shuts the browser process down.
func (b *Browser) Close() {
	b.rootCancel()
	b.allocCancel()
	b.logger.Info("browser process stopped")
}

// chromeSession implements PageSession over one chromedp tab context.
//
// Deadlines are raced, not propagated into Chrome: when the caller's ctx
// fires mid-action the method returns while the tab may keep loading in
// the background until Close force-kills it.
type chromeSession struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(s.ctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	return s.run(ctx, chromedp.Evaluate(expr, out))
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *chromeSession) PressKey(ctx context.Context, key string) error {
	if key == "Escape" {
		key = kb.Escape
	}
	return s.run(ctx, chromedp.KeyEvent(key))
}

func (s *chromeSession) SetViewport(ctx context.Context, width, height int) error {
	return s.run(ctx, emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false))
}

func (s *chromeSession) SetUserAgent(ctx context.Context, ua string) error {
	return s.run(ctx, emulation.SetUserAgentOverride(ua))
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *chromeSession) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
