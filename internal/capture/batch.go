package capture

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/capture-service/internal/config"
	"github.com/user/capture-service/internal/domain"
	"github.com/user/capture-service/internal/monitoring"
)

// BrowserHandle is the browser process owned by the orchestrator for the
// batch lifetime.
type BrowserHandle interface {
	PageOpener
	Close()
}

// ItemProcessor produces the terminal result for one work item.
type ItemProcessor interface {
	Run(ctx context.Context, item domain.WorkItem) domain.CaptureResult
}

// ResultSink receives each result as it is produced. Used for optional
// persistence; sink failures are logged and never fail the batch.
type ResultSink interface {
	SaveResult(ctx context.Context, videoName string, res domain.CaptureResult) error
}

// Orchestrator drives a whole batch: it launches the one browser process,
// iterates work items sequentially, collects results in submission
// order, and reports progress. Items are processed one at a time because
// concurrent tabs sharing one automation profile cross-contaminate
// cookie and consent state.
type Orchestrator struct {
	cfg       *config.Config
	launch    func() (BrowserHandle, error)
	build     func(pages PageOpener) ItemProcessor
	metrics   *monitoring.Metrics
	sink      ResultSink
	videoName string
	logger    *zap.Logger

	mu      sync.Mutex
	summary domain.BatchSummary
}

func NewOrchestrator(
	cfg *config.Config,
	launch func() (BrowserHandle, error),
	build func(pages PageOpener) ItemProcessor,
	metrics *monitoring.Metrics,
	sink ResultSink,
	videoName string,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		launch:    launch,
		build:     build,
		metrics:   metrics,
		sink:      sink,
		videoName: videoName,
		logger:    logger,
	}
}

// Run processes every item in the batch. Per-item failures are data in
// the results, not errors; Run fails only when the browser cannot be
// launched or ctx is canceled mid-batch.
func (o *Orchestrator) Run(ctx context.Context, items []domain.WorkItem) ([]domain.CaptureResult, error) {
	browser, err := o.launch()
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	defer browser.Close()

	processor := o.build(browser)

	o.mu.Lock()
	o.summary = domain.BatchSummary{Total: len(items)}
	o.mu.Unlock()

	results := make([]domain.CaptureResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch aborted: %w", err)
		}

		res := processor.Run(ctx, item)
		results = append(results, res)
		o.record(ctx, res)
	}

	summary := o.Progress()
	o.logger.Info("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return results, nil
}

// Progress returns a snapshot of the running tally.
func (o *Orchestrator) Progress() domain.BatchSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summary
}

func (o *Orchestrator) record(ctx context.Context, res domain.CaptureResult) {
	o.mu.Lock()
	o.summary.Processed++
	if res.Success {
		o.summary.Succeeded++
	} else {
		o.summary.Failed++
	}
	summary := o.summary
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.IncItem(res.Success)
		o.metrics.BatchProgress.Set(float64(summary.Processed))
	}

	o.logger.Info("item finished",
		zap.Int("chunk", res.ChunkIndex),
		zap.Bool("success", res.Success),
		zap.Int("processed", summary.Processed),
		zap.Int("total", summary.Total))

	if o.sink != nil {
		if err := o.sink.SaveResult(ctx, o.videoName, res); err != nil {
			o.logger.Error("failed to persist result",
				zap.Int("chunk", res.ChunkIndex), zap.Error(err))
			if o.metrics != nil {
				o.metrics.IncErrorsTotal("db_save_failed")
			}
		}
	}
}
