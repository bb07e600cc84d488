package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talents/internal/observability"
)

// SideTask is work that may fail without affecting the action that triggered it.
type SideTask func(ctx context.Context) error

// Dispatcher runs best-effort side tasks after an authoritative write has
// committed. Each task runs exactly once in its own goroutine, detached from
// the caller's cancellation and bounded by a timeout. Failures and panics are
// logged and counted, never returned.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose tasks time out after timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Dispatch schedules task and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, task SideTask) {
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(bg, name, task)
	}()
}

func (d *Dispatcher) run(ctx context.Context, name string, task SideTask) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			observability.SideTaskOutcomes.WithLabelValues(name, "panic").Inc()
			observability.LogAsyncOperationError(ctx, name, fmt.Errorf("panic: %v", r), nil)
		}
	}()

	observability.LogAsyncOperationStart(ctx, name, nil)
	if err := task(ctx); err != nil {
		observability.SideTaskOutcomes.WithLabelValues(name, "error").Inc()
		observability.LogAsyncOperationError(ctx, name, err, nil)
		return
	}
	observability.SideTaskOutcomes.WithLabelValues(name, "ok").Inc()
}

// Wait blocks until every dispatched task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
