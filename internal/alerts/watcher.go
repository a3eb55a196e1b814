package alerts

import (
	"context"
	"time"

	"github.com/phuslu/log"
)

// Watcher runs a Manager on a fixed interval until stopped.
type Watcher struct {
	manager  *Manager
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWatcher wraps manager with a polling loop. Intervals under a second
// are clamped to a second.
func NewWatcher(manager *Manager, interval time.Duration) *Watcher {
	if interval < time.Second {
		interval = time.Second
	}
	return &Watcher{manager: manager, interval: interval}
}

// Start begins polling. The first evaluation happens immediately.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		log.Info().Dur("interval", w.interval).Msg("alert watcher started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.manager.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.manager.Tick(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}
