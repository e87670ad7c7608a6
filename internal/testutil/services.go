package testutil

import (
	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewReporting builds a reporting service over db in UTC.
func NewReporting(db *mongo.Database, opts ...reporting.Option) *reporting.Service {
	return reporting.New(restaurantstore.New(db), invoicestore.New(db), orderstore.New(db),
		tablestore.New(db), registerstore.New(db), zap.NewNop(), opts...)
}
