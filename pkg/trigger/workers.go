package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
)

// checkFunc runs one rollover check. Errors are already reported by the caller.
type checkFunc func(ctx context.Context, reason string)

// readyWorker runs a single check once the content index is ready, or once
// the fallback timeout elapses when the ready signal never fires.
type readyWorker struct {
	*worker.BaseWorker
	ready   <-chan struct{}
	timeout time.Duration
	check   checkFunc
	cancel  context.CancelFunc
}

func newReadyWorker(ready <-chan struct{}, timeout time.Duration, check checkFunc) *readyWorker {
	return &readyWorker{
		BaseWorker: worker.NewBaseWorker("rollover-ready-check"),
		ready:      ready,
		timeout:    timeout,
		check:      check,
	}
}

func (w *readyWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("ready check already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *readyWorker) run(ctx context.Context) error {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	reason := "ready"
	select {
	case <-ctx.Done():
		return nil
	case <-w.ready:
	case <-timer.C:
		reason = "ready-timeout"
	}
	w.check(ctx, reason)
	return nil
}

func (w *readyWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *readyWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// tickerWorker re-runs the check on a fixed interval.
type tickerWorker struct {
	*worker.BaseWorker
	interval time.Duration
	check    checkFunc
	cancel   context.CancelFunc
}

func newTickerWorker(interval time.Duration, check checkFunc) *tickerWorker {
	return &tickerWorker{
		BaseWorker: worker.NewBaseWorker("rollover-ticker"),
		interval:   interval,
		check:      check,
	}
}

func (w *tickerWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("ticker already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *tickerWorker) run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.check(ctx, "interval")
		}
	}
}

func (w *tickerWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *tickerWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}
