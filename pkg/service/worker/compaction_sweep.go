package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

// CompactionSweepWorker periodically re-evaluates recently active
// conversations and triggers compaction for any backlog the per-turn trigger
// missed (process restart, crashed dispatch).
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type CompactionSweepWorker struct {
	repo        interfaces.Repository
	memory      *memsvc.Service
	interval    time.Duration
	lookback    time.Duration
	concurrency int
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewCompactionSweepWorker creates a worker sweeping conversations active
// within lookback of each tick
func NewCompactionSweepWorker(repo interfaces.Repository, mem *memsvc.Service, interval, lookback time.Duration) *CompactionSweepWorker {
	return &CompactionSweepWorker{
		repo:        repo,
		memory:      mem,
		interval:    interval,
		lookback:    lookback,
		concurrency: 4,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background sweep loop. Does not block server startup.
func (w *CompactionSweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("compaction sweep worker starting",
		"interval", w.interval.String(),
		"lookback", w.lookback.String(),
	)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *CompactionSweepWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("compaction sweep worker stopped")
}

func (w *CompactionSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				logging.Default().Error("compaction sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("compaction sweep worker context cancelled")
			return
		}
	}
}

// sweep performs a single pass over recently active conversations
func (w *CompactionSweepWorker) sweep(ctx context.Context) error {
	since := time.Now().Add(-w.lookback)
	convs, err := w.repo.Conversation().ListActiveSince(ctx, since, 0)
	if err != nil {
		return goerr.Wrap(err, "failed to list active conversations")
	}
	if len(convs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	var compacted atomic.Int64
	for _, conv := range convs {
		g.Go(func() error {
			res, err := w.memory.MaybeCompact(gctx, conv.ID, conv.OwnerID, nil, nil)
			if err != nil {
				// One conversation's failure must not stop the sweep.
				logging.From(gctx).Warn("sweep compaction failed",
					"conversation_id", conv.ID,
					"error", err,
				)
				return nil
			}
			if res.Compacted {
				compacted.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logging.From(ctx).Debug("compaction sweep finished",
		"candidates", len(convs),
		"compacted", compacted.Load(),
	)

	return nil
}
