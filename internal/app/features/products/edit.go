// internal/app/features/products/edit.go
package products

import (
	"context"
	"fmt"
	"net/http"

	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
)

type productInput struct {
	Number      *int     `json:"number" validate:"omitempty,min=1" label:"Number"`
	Name        *string  `json:"name" validate:"omitempty,max=120" label:"Name"`
	Description *string  `json:"description" validate:"omitempty,max=500" label:"Description"`
	Category    *string  `json:"category" validate:"omitempty,max=60" label:"Category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0" label:"Price"`
	Available   *bool    `json:"available"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,httpurl" label:"Image URL"`
}

// update converts the input into a store update, sanitizing text.
func (in productInput) update() productstore.Update {
	upd := productstore.Update{
		Number:    in.Number,
		Price:     in.Price,
		Available: in.Available,
		ImageURL:  in.ImageURL,
	}
	if in.Name != nil {
		v := htmlsanitize.PlainText(*in.Name)
		upd.Name = &v
	}
	if in.Description != nil {
		v := htmlsanitize.PlainText(*in.Description)
		upd.Description = &v
	}
	if in.Category != nil {
		v := htmlsanitize.PlainText(*in.Category)
		upd.Category = &v
	}
	return upd
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode product", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate product", err)
		return
	}
	upd := in.update()
	var missing error
	switch {
	case upd.Name == nil || *upd.Name == "":
		missing = inputval.Invalid("name", "Name is required.")
	case upd.Category == nil || *upd.Category == "":
		missing = inputval.Invalid("category", "Category is required.")
	case upd.Price == nil:
		missing = inputval.Invalid("price", "Price is required.")
	}
	if missing != nil {
		respond.StoreError(w, h.Log, "validate product", missing)
		return
	}

	_, restID, _ := authz.UserCtx(r)
	p := models.Product{
		RestaurantID: restID,
		Name:         *upd.Name,
		Category:     *upd.Category,
		Price:        *upd.Price,
		Available:    true,
	}
	if upd.Number != nil {
		p.Number = *upd.Number
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Available != nil {
		p.Available = *upd.Available
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Products.Create(ctx, p)
	if err != nil {
		respond.StoreError(w, h.Log, "create product", err, duplicate)
		return
	}
	respond.Created(w, p)
}

// HandleEdit handles PUT /api/products/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode product", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate product", err)
		return
	}
	upd := in.update()
	if upd.Name != nil && *upd.Name == "" {
		respond.StoreError(w, h.Log, "validate product", inputval.Invalid("name", "Name is required."))
		return
	}
	h.apply(w, r, upd)
}

type availabilityInput struct {
	Available *bool `json:"available" validate:"required" label:"Available"`
}

// HandleAvailability handles PATCH /api/products/{id}/available.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	var in availabilityInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode availability", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate availability", err)
		return
	}
	h.apply(w, r, productstore.Update{Available: in.Available})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, upd productstore.Update) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	before, after, err := h.Products.Update(ctx, p.ID, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update product", err, notFound, duplicate)
		return
	}
	if msg := changeMessage(before, after); msg != "" {
		h.Notifier.Publish(ctx, after.RestaurantID, models.NotifyInventory, msg)
	}
	respond.OK(w, after)
}

// changeMessage describes a price or availability change for the floor.
// A price change wins when both changed.
func changeMessage(before, after models.Product) string {
	switch {
	case before.Price != after.Price:
		return fmt.Sprintf("The price of %s changed to %.2f.", after.Name, after.Price)
	case before.Available != after.Available:
		state := "sold out"
		if after.Available {
			state = "available"
		}
		return fmt.Sprintf("%s is now %s.", after.Name, state)
	}
	return ""
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Products.Delete(ctx, p.ID); err != nil {
		respond.StoreError(w, h.Log, "delete product", err)
		return
	}
	respond.Message(w, http.StatusOK, "Product deleted.")
}
