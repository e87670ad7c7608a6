// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	notificationstore "github.com/dalemusser/foodgestor/internal/app/store/notifications"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/app/system/wsauth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Notifications *notificationstore.Store
	Hub           *notify.Hub
	WSAuth        *wsauth.Authenticator
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, hub *notify.Hub, wsa *wsauth.Authenticator, logger *zap.Logger) *Handler {
	return &Handler{
		Notifications: notificationstore.New(db),
		Hub:           hub,
		WSAuth:        wsa,
		Log:           logger,
	}
}

// ServeList handles GET /api/notifications: the newest 50.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Notifications.Latest(ctx, restID, notificationstore.DefaultListLimit)
	if err != nil {
		respond.StoreError(w, h.Log, "list notifications", err)
		return
	}
	respond.OK(w, list)
}

// HandleDeleteAll handles DELETE /api/notifications.
func (h *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	_, restID, _ := authz.UserCtx(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.DeleteAll(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "delete notifications", err)
		return
	}
	respond.OK(w, map[string]int64{"deleted": n})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	_, restID, _ := authz.UserCtx(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.Delete(ctx, restID, id); err != nil {
		respond.StoreError(w, h.Log, "delete notification", err,
			respond.Mapping{Err: notificationstore.ErrNotFound, Status: http.StatusNotFound})
		return
	}
	respond.Message(w, http.StatusOK, "Notification deleted.")
}

// HandleTicket handles POST /api/notifications/ws-ticket. The browser trades
// its session for a one-minute ticket to open the socket with.
func (h *Handler) HandleTicket(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	v, exp, err := h.WSAuth.Tickets.Issue(u)
	if err != nil {
		respond.StoreError(w, h.Log, "issue ws ticket", err)
		return
	}
	respond.OK(w, map[string]any{"ticket": v, "expires_at": exp})
}

// ServeWS handles GET /api/notifications/ws?restaurant_id=. The socket joins
// the caller's restaurant room; naming another restaurant is refused.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	u, err := h.WSAuth.Authenticate(r)
	if err != nil {
		respond.Unauthorized(w, "authentication required")
		return
	}
	room := u.RestaurantOID()
	if v := formutil.Query(r, "restaurant_id"); v != "" {
		asked, err := primitive.ObjectIDFromHex(v)
		if err != nil || asked != room {
			respond.Forbidden(w, "access denied")
			return
		}
	}
	h.Hub.Serve(w, r, notify.Room(room))
}
