package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/user/capture-service/internal/browser"
	"github.com/user/capture-service/internal/config"
	"github.com/user/capture-service/internal/domain"
	"github.com/user/capture-service/internal/monitoring"
)

// PageOpener hands out fresh browser tabs. *browser.Browser is the real
// implementation.
type PageOpener interface {
	NewPage() (browser.PageSession, error)
}

// AttemptRunner drives one candidate URL through navigate, settle, clear
// obstacles, validate, screenshot, under the attempt deadline.
type AttemptRunner struct {
	cfg       *config.Config
	pages     PageOpener
	validator *Validator
	clearer   *Clearer
	userAgent string
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewAttemptRunner(cfg *config.Config, pages PageOpener, validator *Validator, clearer *Clearer, userAgent string, metrics *monitoring.Metrics, logger *zap.Logger) *AttemptRunner {
	return &AttemptRunner{
		cfg:       cfg,
		pages:     pages,
		validator: validator,
		clearer:   clearer,
		userAgent: userAgent,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run executes one attempt against url, writing the screenshot to
// shotPath on success. The tab is always closed on exit. The attempt
// deadline races the whole sequence; when it fires first the outcome is
// timed out regardless of internal progress.
func (r *AttemptRunner) Run(ctx context.Context, url, shotPath string) domain.Attempt {
	att := r.run(ctx, url, shotPath)
	if r.metrics != nil {
		r.metrics.IncAttempt(att.Outcome.String())
	}
	return att
}

func (r *AttemptRunner) run(ctx context.Context, url, shotPath string) domain.Attempt {
	att := domain.Attempt{URL: url, StartedAt: time.Now()}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.AttemptDeadline())
	defer cancel()

	page, err := r.pages.NewPage()
	if err != nil {
		return r.finish(ctx, att, fmt.Errorf("open tab: %w", err))
	}
	defer page.Close()

	if err := page.SetViewport(ctx, r.cfg.ViewportWidth, r.cfg.ViewportHeight); err != nil {
		return r.finish(ctx, att, err)
	}
	if r.userAgent != "" {
		if err := page.SetUserAgent(ctx, r.userAgent); err != nil {
			return r.finish(ctx, att, err)
		}
	}

	// Navigation gets its own shorter deadline with DOM-ready semantics,
	// so one slow third-party tracker doesn't eat the whole attempt.
	navCtx, navCancel := context.WithTimeout(ctx, r.cfg.NavTimeout())
	err = page.Navigate(navCtx, url)
	navCancel()
	if err != nil {
		return r.finish(ctx, att, err)
	}

	// Let client-side rendering finish before poking at the DOM.
	if err := sleepCtx(ctx, r.cfg.SettleDelay()); err != nil {
		return r.finish(ctx, att, err)
	}

	r.clearer.Semantic(ctx, page)
	r.clearer.Structural(ctx, page)
	r.clearer.Keyboard(ctx, page)
	if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
		return r.finish(ctx, att, err)
	}
	r.clearer.Hide(ctx, page)
	// Some consent modals re-render after the first dismissal.
	r.clearer.Semantic(ctx, page)

	// Nudge past sticky headers so they don't dominate the shot.
	_ = page.Evaluate(ctx, fmt.Sprintf("window.scrollBy(0, %d)", r.cfg.ScrollOffsetPX), nil)

	verdict := r.validator.Validate(ctx, page)
	if ctx.Err() != nil {
		return r.finish(ctx, att, ctx.Err())
	}
	if !verdict.Valid {
		att.Outcome = domain.OutcomeBlocked
		att.Reason = verdict.BlockReason
		r.logger.Info("page blocked",
			zap.String("url", url),
			zap.String("reason", verdict.BlockReason))
		return att
	}

	if err := page.Screenshot(ctx, shotPath); err != nil {
		return r.finish(ctx, att, err)
	}

	att.Outcome = domain.OutcomeSuccess
	att.Filename = filepath.Base(shotPath)
	r.logger.Info("screenshot captured",
		zap.String("url", url),
		zap.String("file", att.Filename))
	return att
}

// finish classifies a step error into the attempt outcome.
func (r *AttemptRunner) finish(ctx context.Context, att domain.Attempt, err error) domain.Attempt {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		att.Outcome = domain.OutcomeTimedOut
		r.logger.Warn("attempt timed out", zap.String("url", att.URL))
		return att
	}
	att.Outcome = domain.OutcomeNavigationError
	att.Reason = err.Error()
	r.logger.Warn("attempt failed", zap.String("url", att.URL), zap.Error(err))
	return att
}

// sleepCtx waits for d or the context, whichever ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
