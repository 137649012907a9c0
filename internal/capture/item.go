package capture

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/user/capture-service/internal/config"
	"github.com/user/capture-service/internal/domain"
)

const (
	errNoUsableCandidates = "All candidate URLs are blacklisted or already used"
	errAllFailed          = "All URLs failed validation"
	errItemTimeout        = "Item deadline exceeded"
)

// Runner abstracts the attempt runner so the coordinator is testable
// without a browser.
type Runner interface {
	Run(ctx context.Context, url, shotPath string) domain.Attempt
}

// History tracks URLs already spent on earlier captures so each source
// is used at most once across runs. Implementations must be safe to call
// concurrently; lookups fail open.
type History interface {
	WasCaptured(ctx context.Context, url string) (bool, error)
	MarkCaptured(ctx context.Context, url string) error
}

// ItemCoordinator tries the ordered candidate URLs for one work item,
// stopping at the first success, bounded by attempt count and the item
// deadline.
type ItemCoordinator struct {
	cfg     *config.Config
	runner  Runner
	history History
	namer   ShotNamer
	outDir  string
	logger  *zap.Logger
}

func NewItemCoordinator(cfg *config.Config, runner Runner, history History, namer ShotNamer, outDir string, logger *zap.Logger) *ItemCoordinator {
	return &ItemCoordinator{
		cfg:     cfg,
		runner:  runner,
		history: history,
		namer:   namer,
		outDir:  outDir,
		logger:  logger,
	}
}

// Run produces the terminal CaptureResult for one item. Blocked, timed
// out, and navigation failures are recovered locally by advancing to the
// next candidate URL; only full exhaustion or pre-filtering to nothing
// surfaces in the result, and neither aborts the batch.
func (c *ItemCoordinator) Run(ctx context.Context, item domain.WorkItem) domain.CaptureResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ItemTimeout())
	defer cancel()

	res := domain.CaptureResult{ChunkIndex: item.ChunkIndex}

	candidates := c.usable(ctx, item.URLs)
	if len(candidates) == 0 {
		res.Error = errNoUsableCandidates
		c.logger.Warn("no usable candidates",
			zap.Int("chunk", item.ChunkIndex),
			zap.Int("given", len(item.URLs)))
		return res
	}

	maxAttempts := c.cfg.MaxAttempts
	if len(candidates) < maxAttempts {
		maxAttempts = len(candidates)
	}

	for i := 0; i < maxAttempts; i++ {
		url := candidates[i]
		c.logger.Info("attempting capture",
			zap.Int("chunk", item.ChunkIndex),
			zap.Int("attempt", i+1),
			zap.Int("of", maxAttempts),
			zap.String("url", url))

		shotPath := filepath.Join(c.outDir, c.namer(item, url))
		att := c.runner.Run(ctx, url, shotPath)
		res.Attempts = i + 1

		if att.Outcome == domain.OutcomeSuccess {
			res.Success = true
			res.URL = url
			res.Filename = att.Filename
			res.Filepath = shotPath
			c.markUsed(ctx, url)
			return res
		}

		// The item deadline overrides whatever the attempt reported.
		if ctx.Err() != nil {
			res.Error = errItemTimeout
			c.logger.Warn("item timed out", zap.Int("chunk", item.ChunkIndex))
			return res
		}

		c.logger.Info("attempt did not produce a capture",
			zap.Int("chunk", item.ChunkIndex),
			zap.String("url", url),
			zap.String("outcome", att.Outcome.String()),
			zap.String("reason", att.Reason))
	}

	res.Error = errAllFailed
	return res
}

// usable filters blocklisted and previously used URLs, preserving order.
// History lookups fail open: a broken store must not starve the item.
func (c *ItemCoordinator) usable(ctx context.Context, urls []string) []string {
	kept := FilterCandidates(urls)
	if c.history == nil {
		return kept
	}
	fresh := kept[:0]
	for _, u := range kept {
		used, err := c.history.WasCaptured(ctx, u)
		if err != nil {
			c.logger.Warn("capture history lookup failed", zap.String("url", u), zap.Error(err))
			used = false
		}
		if !used {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

func (c *ItemCoordinator) markUsed(ctx context.Context, url string) {
	if c.history == nil {
		return
	}
	if err := c.history.MarkCaptured(ctx, url); err != nil {
		c.logger.Warn("failed to record used URL", zap.String("url", url), zap.Error(err))
	}
}
