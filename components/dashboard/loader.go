package dashboard

import (
	"context"
	"sync"
	"time"
)

// Loader simulates an asynchronous data load with a fixed delay. Each Start
// supersedes the previous task; only the current task may clear the loading
// flag, and cancelled tasks never touch state.
type Loader struct {
	delay      time.Duration
	onComplete func(generation uint64)

	mu      sync.Mutex
	gen     uint64
	loading bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLoader builds a loader. onComplete runs after the loading flag clears,
// and only for tasks that were not superseded or cancelled.
func NewLoader(delay time.Duration, onComplete func(generation uint64)) *Loader {
	return &Loader{
		delay:      delay,
		onComplete: onComplete,
		done:       closedChan(),
	}
}

// Start marks the loader as loading and schedules completion after the delay,
// cancelling any in-flight task. It returns the new task generation.
func (l *Loader) Start(ctx context.Context) uint64 {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.loading = true
	l.mu.Unlock()

	go l.run(taskCtx, gen, done)
	return gen
}

func (l *Loader) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.loading = false
	l.cancel = nil
	l.mu.Unlock()

	if l.onComplete != nil {
		l.onComplete(gen)
	}
}

// Cancel stops the in-flight task without changing the loading flag. Used on
// unmount, after which no further state changes happen.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Loading reports whether the current task is still pending.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Generation returns the generation of the most recent Start or Cancel.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Wait blocks until the most recent task finishes, is cancelled, or ctx ends.
func (l *Loader) Wait(ctx context.Context) error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
