// Package progress
package progress

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"golang.org/x/sync/errgroup"
)

// Task is one independent unit of work driven by Run.
type Task[T any] func(ctx context.Context) (T, error)

// Run drives every task to completion, rendering one progress tick per
// finished task. The tracker is observability only: results are returned
// in completion order, exactly once each, and callers re-establish any
// ordering they need. The first task error cancels the remaining tasks
// and is returned.
func Run[T any](ctx context.Context, label string, tasks []Task[T]) ([]T, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerPosition(progress.PositionRight)
	go pw.Render()
	// Render installs its cancel context lazily; Stop is a no-op until it
	// has. Wait for the renderer to come up so Stop always reaches it,
	// even when every task finishes instantly.
	for !pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}

	tracker := &progress.Tracker{Message: label, Total: int64(len(tasks)), Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)

	var (
		mu      sync.Mutex
		results = make([]T, 0, len(tasks))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			v, err := task(gctx)
			if err != nil {
				tracker.MarkAsErrored()
				return err
			}
			mu.Lock()
			results = append(results, v)
			mu.Unlock()
			tracker.Increment(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		tracker.MarkAsDone()
	}
	pw.Stop()
	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
