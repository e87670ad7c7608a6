// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/paging"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /api/audit?category=&event_type=&start_date=&end_date=&page=.
// Only the caller's restaurant is visible.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, restID, _ := authz.UserCtx(r)
	page := paging.Parse(r)

	filter := audit.QueryFilter{
		RestaurantID: &restID,
		Category:     formutil.Query(r, "category"),
		EventType:    formutil.Query(r, "event_type"),
		Limit:        page.Limit(),
		Offset:       page.Offset(),
	}
	if filter.Category != "" && eventTypesForCategory(filter.Category) == nil {
		respond.StoreError(w, h.Log, "parse category", inputval.Invalid("category", "Unknown category."))
		return
	}
	if s := formutil.Query(r, "start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			respond.StoreError(w, h.Log, "parse start_date", inputval.Invalid("start_date", "Dates must be YYYY-MM-DD."))
			return
		}
		filter.StartTime = &t
	}
	if s := formutil.Query(r, "end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			respond.StoreError(w, h.Log, "parse end_date", inputval.Invalid("end_date", "Dates must be YYYY-MM-DD."))
			return
		}
		end := t.Add(24*time.Hour - time.Millisecond)
		filter.EndTime = &end
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.StoreError(w, h.Log, "query audit events", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		respond.StoreError(w, h.Log, "count audit events", err)
		return
	}

	names := h.usernames(ctx, events)
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(names, *e.UserID)
		}
		items = append(items, item)
	}
	respond.OK(w, listResponse{Items: items, Paging: paging.NewResult(page, total)})
}

// ServeCategories handles GET /api/audit/categories for filter pickers.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, allCategories())
}

// usernames batch-loads the users an event page mentions. A lookup failure
// only costs the names.
func (h *Handler) usernames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := map[primitive.ObjectID]struct{}{}
	for _, e := range events {
		if e.ActorID != nil {
			seen[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			seen[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string, len(seen))
	if len(seen) == 0 {
		return names
	}
	ids := make([]primitive.ObjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.Hex()
}
