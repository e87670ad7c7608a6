// internal/app/features/products/import.go
package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/csvutil"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/app/system/txn"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

type importResult struct {
	Imported int              `json:"imported"`
	Products []models.Product `json:"products"`
}

type importRejected struct {
	Error string              `json:"error"`
	Rows  []csvutil.RowError `json:"rows"`
}

// HandleImport handles POST /api/products/import. The CSV arrives either as
// the "csv" field of a multipart form or as a text/csv body. Any bad line
// rejects the whole file; otherwise every row is created or none is.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, closeBody, problem := importBody(w, r)
	if problem != "" {
		respond.BadRequest(w, problem)
		return
	}
	defer closeBody()

	parsed, err := csvutil.ParseProductCSV(body, csvutil.DefaultParseOptions())
	switch {
	case errors.Is(err, csvutil.ErrTooManyRows):
		respond.BadRequest(w, fmt.Sprintf("The file has more than %d products.", csvutil.MaxRows))
		return
	case err != nil:
		respond.BadRequest(w, "The file is not valid CSV.")
		return
	}
	if len(parsed.Rows) == 0 && !parsed.HasErrors() {
		respond.BadRequest(w, "The file has no products.")
		return
	}

	_, restID, _ := authz.UserCtx(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	existing, err := h.Products.ListByRestaurant(ctx, restID, productstore.ListFilter{})
	if err != nil {
		respond.StoreError(w, h.Log, "list products", err)
		return
	}
	onMenu := make(map[string]bool, len(existing))
	for _, p := range existing {
		onMenu[p.NameCI] = true
	}
	rejected := parsed.Errors
	for _, row := range parsed.Rows {
		if onMenu[text.Fold(row.Name)] {
			rejected = append(rejected, csvutil.RowError{Line: row.Line, Name: row.Name, Reason: "already on the menu"})
		}
	}
	if len(rejected) > 0 {
		respond.JSON(w, http.StatusBadRequest, importRejected{
			Error: "Import rejected: one or more rows are invalid.",
			Rows:  rejected,
		})
		return
	}

	created := make([]models.Product, 0, len(parsed.Rows))
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		created = created[:0]
		for _, row := range parsed.Rows {
			p, err := h.Products.Create(ctx, models.Product{
				RestaurantID: restID,
				Name:         htmlsanitize.PlainText(row.Name),
				Category:     htmlsanitize.PlainText(row.Category),
				Description:  htmlsanitize.PlainText(row.Description),
				Price:        row.Price,
				Available:    row.Available,
			})
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		respond.StoreError(w, h.Log, "import products", err, duplicate)
		return
	}

	h.Log.Info("menu imported", zap.String("restaurant_id", restID.Hex()), zap.Int("products", len(created)))
	h.Notifier.Publish(ctx, restID, models.NotifyInventory, fmt.Sprintf("%d products were added to the menu.", len(created)))
	respond.Created(w, importResult{Imported: len(created), Products: created})
}

// importBody returns the CSV stream of a multipart or raw upload, or a
// message for the client when there is none.
func importBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), string) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
			return nil, nil, "The upload is too large or malformed."
		}
		file, _, err := r.FormFile("csv")
		if err != nil {
			return nil, nil, "A CSV file is required."
		}
		return file, func() { file.Close() }, ""
	}
	return r.Body, func() {}, ""
}
