// internal/app/services/notify/service.go
package notify

import (
	"context"
	"encoding/json"

	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventNewNotification is the only event sent on the channel.
const EventNewNotification = "new_notification"

type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Event is the frame written to sockets.
type Event struct {
	Event string              `json:"event"`
	Data  models.Notification `json:"data"`
}

// Service persists notifications and pushes them to the restaurant's room.
// It never fails the caller: errors are logged and dropped.
type Service struct {
	store Store
	bus   Bus
	log   *zap.Logger
}

func NewService(store Store, bus Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, bus: bus, log: logger}
}

// Room is the room name for a restaurant.
func Room(restaurantID primitive.ObjectID) string { return restaurantID.Hex() }

// Publish stores the notification and broadcasts it. A nil Service is a
// no-op so handlers can run without a notifier.
func (s *Service) Publish(ctx context.Context, restaurantID primitive.ObjectID, kind, message string) {
	if s == nil {
		return
	}
	n, err := s.store.Create(ctx, models.Notification{
		RestaurantID: restaurantID,
		Type:         kind,
		Message:      htmlsanitize.PlainText(message),
	})
	if err != nil {
		s.log.Error("store notification", zap.String("restaurant_id", restaurantID.Hex()), zap.Error(err))
		return
	}
	payload, err := json.Marshal(Event{Event: EventNewNotification, Data: n})
	if err != nil {
		s.log.Error("encode notification", zap.Error(err))
		return
	}
	if err := s.bus.Broadcast(ctx, Room(restaurantID), payload); err != nil {
		s.log.Warn("broadcast notification", zap.String("restaurant_id", restaurantID.Hex()), zap.Error(err))
		return
	}
	metrics.NotificationsPublished.WithLabelValues(kind).Inc()
}
