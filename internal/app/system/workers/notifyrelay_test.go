package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type flakySub struct {
	runs  atomic.Int32
	fails int32
}

func (f *flakySub) Run(ctx context.Context, ready chan<- struct{}) error {
	n := f.runs.Add(1)
	if n <= f.fails {
		return errors.New("connection refused")
	}
	close(ready)
	<-ctx.Done()
	return nil
}

func TestNotifyRelay_RetriesUntilSubscribed(t *testing.T) {
	sub := &flakySub{fails: 2}
	w := NewNotifyRelay(sub, zap.NewNop(), 10*time.Millisecond)

	w.Start(2 * time.Second)
	if got := sub.runs.Load(); got != 3 {
		t.Errorf("runs = %d, want 3", got)
	}

	done := make(chan struct{})
	go func() { w.Stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestNotifyRelay_StopWithoutStart(t *testing.T) {
	NewNotifyRelay(&flakySub{}, zap.NewNop(), 0).Stop()
}
