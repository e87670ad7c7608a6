// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a restaurant's audit trail to its administrators.
type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Log:    logger,
	}
}
