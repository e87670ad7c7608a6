// internal/app/features/restaurants/edit.go
package restaurants

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/foodgestor/internal/app/features/settings"
	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
)

// editRestaurantInput: the basic block (name, address, phone, tables) is
// all-or-nothing. Positions, services and settings are independent.
type editRestaurantInput struct {
	Name              *string          `json:"name" validate:"omitempty,max=200" label:"Name"`
	Address           *string          `json:"address" validate:"omitempty,max=300" label:"Address"`
	Phone             *string          `json:"phone" validate:"omitempty,max=40" label:"Phone"`
	Tables            *int             `json:"tables" validate:"omitempty,gte=0,lte=1000" label:"Tables"`
	SelectedPositions *[]string        `json:"selected_positions" label:"Positions"`
	Services          *models.Services `json:"services"`
	Settings          *settings.Input  `json:"settings"`
}

func (in editRestaurantInput) basicCount() int {
	n := 0
	for _, set := range []bool{in.Name != nil, in.Address != nil, in.Phone != nil, in.Tables != nil} {
		if set {
			n++
		}
	}
	return n
}

// HandleEdit handles PUT /api/restaurants/{id}. Admins only.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	if !authz.CanAccessRestaurant(r, id) {
		respond.Forbidden(w, "access denied")
		return
	}

	var in editRestaurantInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode restaurant", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate restaurant", err)
		return
	}
	if n := in.basicCount(); n != 0 && n != 4 {
		respond.StoreError(w, h.Log, "validate restaurant",
			inputval.Invalid("name", "Name, address, phone and tables must be updated together."))
		return
	}

	var upd restaurantstore.Update
	if in.basicCount() == 4 {
		name := htmlsanitize.PlainText(strings.TrimSpace(*in.Name))
		addr := htmlsanitize.PlainText(strings.TrimSpace(*in.Address))
		phone := strings.TrimSpace(*in.Phone)
		if name == "" || addr == "" || phone == "" {
			respond.StoreError(w, h.Log, "validate restaurant",
				inputval.Invalid("name", "Name, address and phone cannot be empty."))
			return
		}
		upd.Name, upd.Address, upd.Phone, upd.Tables = &name, &addr, &phone, in.Tables
	}
	upd.SelectedPositions = in.SelectedPositions
	upd.Services = in.Services

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	before, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get restaurant", err, notFound)
		return
	}
	if in.Settings != nil {
		if err := in.Settings.Apply(before.Settings, &upd); err != nil {
			respond.StoreError(w, h.Log, "validate settings", err)
			return
		}
	}

	after, err := h.Restaurants.Update(ctx, id, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update restaurant", err, notFound)
		return
	}

	actor := authz.Actor(r)
	h.AuditLog.Admin(ctx, r, audit.EventRestaurantUpdated, actor, id, nil, nil)
	settings.AuditRegime(ctx, r, h.AuditLog, actor, before, after)
	respond.OK(w, after)
}
