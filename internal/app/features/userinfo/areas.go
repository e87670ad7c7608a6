// internal/app/features/userinfo/areas.go
package userinfo

import "github.com/dalemusser/foodgestor/internal/domain/models"

var allAreas = []string{models.AccessOrders, models.AccessKitchen, models.AccessCash, models.AccessReports}
