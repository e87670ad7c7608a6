// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Identifier: what a person types to log in, either username or email

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
	"github.com/dalemusser/foodgestor/internal/app/system/ratelimit"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgBadCredentials = "invalid credentials"

type Handler struct {
	Restaurants *restaurantstore.Store
	Users       *userstore.Store
	Access      *userstore.Fetcher
	SessionMgr  *auth.SessionManager
	Limiter     *ratelimit.LoginLimiter
	AuditLog    *auditlog.Logger
	Codes       CodeSender
	ResetExpiry time.Duration
	Log         *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	codes CodeSender,
	resetExpiry time.Duration,
	logger *zap.Logger,
) *Handler {
	if codes == nil {
		codes = LogSender{Log: logger}
	}
	if resetExpiry <= 0 {
		resetExpiry = 10 * time.Minute
	}
	return &Handler{
		Restaurants: restaurantstore.New(db),
		Users:       userstore.New(db),
		Access:      userstore.NewFetcher(db),
		SessionMgr:  sessionMgr,
		Limiter:     limiter,
		AuditLog:    audit,
		Codes:       codes,
		ResetExpiry: resetExpiry,
		Log:         logger,
	}
}

type loginInput struct {
	Identifier     string `json:"identifier" validate:"required,max=254" label:"Username or email"`
	Password       string `json:"password" validate:"required" label:"Password"`
	RestaurantCode string `json:"restaurant_code"`
}

type restaurantInfo struct {
	ID       primitive.ObjectID `json:"id"`
	Number   int                `json:"number"`
	Name     string             `json:"name"`
	Settings models.Settings    `json:"settings"`
}

type loginResponse struct {
	User       models.User    `json:"user"`
	Admin      bool           `json:"admin"`
	Access     models.Access  `json:"access"`
	Restaurant restaurantInfo `json:"restaurant"`
	Token      string         `json:"token"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode login", err)
		return
	}
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate login", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Identifier); !ok {
			metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
			h.AuditLog.LoginRateLimited(ctx, r, in.Identifier)
			respond.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	/*── narrow by restaurant when a REST<n> code was given ─────────────────*/

	var restID *primitive.ObjectID
	if code := strings.TrimSpace(in.RestaurantCode); code != "" {
		n, ok := normalize.RestaurantCode(code)
		if !ok {
			metrics.LoginAttempts.WithLabelValues("failed").Inc()
			respond.BadRequest(w, "invalid restaurant code")
			return
		}
		rest, err := h.Restaurants.GetByNumber(ctx, n)
		if errors.Is(err, restaurantstore.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("failed").Inc()
			respond.NotFound(w, "restaurant not found")
			return
		}
		if err != nil {
			respond.StoreError(w, h.Log, "login: load restaurant", err)
			return
		}
		restID = &rest.ID
	}

	u, err := h.Users.FindByIdentifier(ctx, in.Identifier, restID)
	if errors.Is(err, userstore.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		h.AuditLog.LoginFailedUserNotFound(ctx, r, restID, in.Identifier)
		respond.Unauthorized(w, msgBadCredentials)
		return
	}
	if err != nil {
		respond.StoreError(w, h.Log, "login: find user", err)
		return
	}

	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, &u.RestaurantID, in.Identifier)
		respond.Unauthorized(w, msgBadCredentials)
		return
	}
	if !u.Active {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, &u.RestaurantID, in.Identifier)
		respond.Forbidden(w, "account is disabled")
		return
	}

	rest, err := h.Restaurants.GetByID(ctx, u.RestaurantID)
	if errors.Is(err, restaurantstore.ErrNotFound) {
		respond.NotFound(w, "restaurant not found")
		return
	}
	if err != nil {
		respond.StoreError(w, h.Log, "login: load user restaurant", err)
		return
	}

	access := h.Access.AccessFor(ctx, u.RoleID)
	su := auth.SessionUser{
		ID:           u.ID.Hex(),
		RestaurantID: u.RestaurantID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		Admin:        u.IsAdmin(),
		Access:       access,
	}
	token, exp, err := h.SessionMgr.IssueToken(su)
	if err != nil {
		respond.StoreError(w, h.Log, "login: issue token", err)
		return
	}
	if err := h.SessionMgr.SignIn(w, r, su.ID); err != nil {
		// the bearer token still works without the cookie
		h.Log.Warn("login: save session cookie", zap.Error(err))
	}

	if h.Limiter != nil {
		h.Limiter.Succeeded(in.Identifier)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.AuditLog.LoginSuccess(ctx, r, u.ID, &u.RestaurantID, in.Identifier)

	respond.OK(w, loginResponse{
		User:   u,
		Admin:  su.Admin,
		Access: access,
		Restaurant: restaurantInfo{
			ID:       rest.ID,
			Number:   rest.Number,
			Name:     rest.Name,
			Settings: rest.Settings,
		},
		Token:     token,
		ExpiresAt: exp,
	})
}
