// internal/app/system/workers/notifyrelay.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Subscriber runs a subscription until ctx ends. ready is closed once the
// subscription is live.
type Subscriber interface {
	Run(ctx context.Context, ready chan<- struct{}) error
}

// NotifyRelay is a background worker that keeps the cross-instance
// notification subscription alive, resubscribing after failures.
type NotifyRelay struct {
	sub     Subscriber
	log     *zap.Logger
	backoff time.Duration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewNotifyRelay creates a relay worker.
//
// Parameters:
//   - sub: the subscription to keep running (a notify.RedisBus)
//   - logger: zap logger for logging
//   - backoff: wait between a failed run and the next attempt (e.g., 2 seconds)
func NewNotifyRelay(sub Subscriber, logger *zap.Logger, backoff time.Duration) *NotifyRelay {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &NotifyRelay{sub: sub, log: logger, backoff: backoff}
}

// Start begins the relay loop. It returns once the first subscription is
// live or wait elapses, whichever comes first.
func (w *NotifyRelay) Start(wait time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	ready := make(chan struct{})

	w.wg.Add(1)
	go w.run(ctx, ready)

	select {
	case <-ready:
		w.log.Info("notification relay started")
	case <-time.After(wait):
		w.log.Warn("notification relay not subscribed yet; continuing", zap.Duration("waited", wait))
	}
}

// Stop signals the worker to stop and waits for it to finish.
func (w *NotifyRelay) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("notification relay stopped")
}

func (w *NotifyRelay) run(ctx context.Context, ready chan struct{}) {
	defer w.wg.Done()

	var once sync.Once
	for {
		attempt := make(chan struct{})
		finished := make(chan struct{})
		go func() {
			select {
			case <-attempt:
				once.Do(func() { close(ready) })
			case <-finished:
			}
		}()

		err := w.sub.Run(ctx, attempt)
		close(finished)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.log.Error("notification relay failed; retrying", zap.Error(err), zap.Duration("backoff", w.backoff))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff):
		}
	}
}
