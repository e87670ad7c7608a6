// internal/app/features/settings/change.go
package settings

import (
	"context"
	"net/http"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input is a partial settings edit. Nil fields are left alone.
type Input struct {
	DefaultTip   *float64 `json:"default_tip" validate:"omitempty,gte=0,lte=100" label:"Default tip"`
	DefaultTax   *float64 `json:"default_tax" validate:"omitempty,gte=0,lte=100" label:"Default tax"`
	Currency     *string  `json:"currency" validate:"omitempty,currency" label:"Currency"`
	ExchangeRate *float64 `json:"exchange_rate" validate:"omitempty,gt=0" label:"Exchange rate"`
}

// Apply validates in against the current settings and copies the changes
// into upd. Switching to another currency requires a rate in the same edit.
func (in Input) Apply(cur models.Settings, upd *restaurantstore.Update) error {
	if err := inputval.Validate(in).Err(); err != nil {
		return err
	}
	if in.Currency != nil {
		code, _ := currency.Parse(*in.Currency)
		if code != cur.Currency && in.ExchangeRate == nil {
			return inputval.Invalid("exchange_rate", "Exchange rate is required when changing currency.")
		}
		upd.Currency = &code
	}
	if in.ExchangeRate != nil {
		upd.ExchangeRate = in.ExchangeRate
	}
	if in.DefaultTip != nil {
		upd.DefaultTip = in.DefaultTip
	}
	if in.DefaultTax != nil {
		upd.DefaultTax = in.DefaultTax
	}
	return nil
}

// AuditRegime records a currency or rate change between before and after.
// Nothing is recorded when the regime is unchanged.
func AuditRegime(ctx context.Context, r *http.Request, audit *auditlog.Logger, actor *primitive.ObjectID, before, after models.Restaurant) {
	if before.Settings.Currency == after.Settings.Currency && before.Settings.ExchangeRate == after.Settings.ExchangeRate {
		return
	}
	audit.CurrencyChanged(ctx, r, actor, after.ID,
		before.Settings.Currency.String(), before.Settings.ExchangeRate,
		after.Settings.Currency.String(), after.Settings.ExchangeRate)
}
