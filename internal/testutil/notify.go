package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	notificationstore "github.com/dalemusser/foodgestor/internal/app/store/notifications"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CaptureBus records every broadcast instead of delivering it.
type CaptureBus struct {
	mu     sync.Mutex
	events []notify.Event
}

func (b *CaptureBus) Broadcast(_ context.Context, _ string, payload []byte) error {
	var e notify.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
	return nil
}

// Events returns the broadcasts seen so far.
func (b *CaptureBus) Events() []notify.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]notify.Event(nil), b.events...)
}

// NewNotifier returns a notifier backed by db whose broadcasts land in the
// returned bus.
func NewNotifier(db *mongo.Database) (*notify.Service, *CaptureBus) {
	bus := &CaptureBus{}
	return notify.NewService(notificationstore.New(db), bus, zap.NewNop()), bus
}
