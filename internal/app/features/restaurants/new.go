// internal/app/features/restaurants/new.go
package restaurants

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/foodgestor/internal/app/features/settings"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
)

// newRestaurantInput defines validation rules for creating a restaurant.
type newRestaurantInput struct {
	Number            int             `json:"number" validate:"required,gt=0" label:"Number"`
	Name              string          `json:"name" validate:"required,max=200" label:"Name"`
	Address           string          `json:"address" validate:"required,max=300" label:"Address"`
	Phone             string          `json:"phone" validate:"required,max=40" label:"Phone"`
	Tables            *int            `json:"tables" validate:"required,gte=0,lte=1000" label:"Tables"`
	SelectedPositions []string        `json:"selected_positions" validate:"omitempty,dive,max=60" label:"Positions"`
	Services          models.Services `json:"services"`
	Settings          *settings.Input `json:"settings"`
}

// HandleCreate handles POST /api/restaurants. It is public: a new
// restaurant is created before any of its users exist.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in newRestaurantInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode restaurant", err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate restaurant", err)
		return
	}

	rest := models.Restaurant{
		Number:            in.Number,
		Name:              htmlsanitize.PlainText(in.Name),
		Address:           htmlsanitize.PlainText(in.Address),
		Phone:             in.Phone,
		Tables:            *in.Tables,
		SelectedPositions: in.SelectedPositions,
		Services:          in.Services,
		Settings:          models.DefaultSettings(),
	}
	if in.Settings != nil {
		var upd restaurantstore.Update
		if err := in.Settings.Apply(rest.Settings, &upd); err != nil {
			respond.StoreError(w, h.Log, "validate settings", err)
			return
		}
		applySettings(&rest.Settings, upd)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Restaurants.Create(ctx, rest)
	if err != nil {
		respond.StoreError(w, h.Log, "create restaurant", err, duplicate)
		return
	}
	respond.Created(w, created)
}

func applySettings(s *models.Settings, upd restaurantstore.Update) {
	if upd.Currency != nil {
		s.Currency = *upd.Currency
	}
	if upd.ExchangeRate != nil {
		s.ExchangeRate = *upd.ExchangeRate
	}
	if upd.DefaultTip != nil {
		s.DefaultTip = *upd.DefaultTip
	}
	if upd.DefaultTax != nil {
		s.DefaultTax = *upd.DefaultTax
	}
}
