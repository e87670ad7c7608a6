// internal/app/features/login/reset.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgCodeSent = "If the email is registered, a reset code has been sent."

// RestaurantCode is optional on both; it only matters when an address is
// registered in more than one restaurant.
type forgotInput struct {
	Email          string `json:"email" validate:"required,email" label:"Email"`
	RestaurantCode string `json:"restaurant_code" label:"Restaurant code"`
}

type resetInput struct {
	Email          string `json:"email" validate:"required,email" label:"Email"`
	RestaurantCode string `json:"restaurant_code" label:"Restaurant code"`
	Code           string `json:"code" validate:"required,len=6,numeric" label:"Code"`
	NewPassword    string `json:"new_password" validate:"required,min=6,max=128" label:"New password"`
}

var errBadRestaurantCode = errors.New("invalid restaurant code")

// restaurantScope resolves an optional REST<n> code.
func (h *Handler) restaurantScope(ctx context.Context, code string) (*primitive.ObjectID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	n, ok := normalize.RestaurantCode(code)
	if !ok {
		return nil, errBadRestaurantCode
	}
	rest, err := h.Restaurants.GetByNumber(ctx, n)
	if err != nil {
		return nil, err
	}
	return &rest.ID, nil
}

var scopeMappings = []respond.Mapping{
	{Err: errBadRestaurantCode, Status: http.StatusBadRequest},
	{Err: restaurantstore.ErrNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/forgot-password                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleForgot issues a reset code. The answer is the same whether or not
// the email exists.
func (h *Handler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var in forgotInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode forgot", err)
		return
	}
	in.Email = normalize.Email(in.Email)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate forgot", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			respond.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	restID, err := h.restaurantScope(ctx, in.RestaurantCode)
	if err != nil {
		respond.StoreError(w, h.Log, "forgot: resolve restaurant", err, scopeMappings...)
		return
	}

	users, err := h.Users.ListByEmail(ctx, in.Email, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "forgot: find user", err)
		return
	}
	if len(users) == 0 {
		h.AuditLog.ResetCodeFailed(ctx, r, in.Email, "unknown email")
		respond.Message(w, http.StatusOK, msgCodeSent)
		return
	}

	// Every account on the address gets its own code.
	expiry := time.Now().UTC().Add(h.ResetExpiry)
	for _, u := range users {
		code, err := newResetCode()
		if err != nil {
			respond.StoreError(w, h.Log, "forgot: generate code", err)
			return
		}
		if err := h.Users.SetResetCode(ctx, u.ID, code, expiry); err != nil {
			respond.StoreError(w, h.Log, "forgot: store code", err)
			return
		}
		if err := h.Codes.SendResetCode(ctx, u, code); err != nil {
			h.Log.Error("forgot: send code", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
		h.AuditLog.ResetCodeIssued(ctx, r, u.ID, &u.RestaurantID)
	}

	respond.Message(w, http.StatusOK, msgCodeSent)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/reset-password                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var in resetInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode reset", err)
		return
	}
	in.Email = normalize.Email(in.Email)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate reset", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Each try counts against the email, so a code cannot be guessed.
	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.ResetCodeFailed(ctx, r, in.Email, "rate limited")
			respond.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		respond.StoreError(w, h.Log, "reset: hash", err)
		return
	}

	restID, err := h.restaurantScope(ctx, in.RestaurantCode)
	if err != nil {
		respond.StoreError(w, h.Log, "reset: resolve restaurant", err, scopeMappings...)
		return
	}

	u, err := h.Users.ResetPassword(ctx, in.Email, restID, in.Code, hash, time.Now().UTC())
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.ResetCodeFailed(ctx, r, in.Email, "invalid or expired code")
		respond.BadRequest(w, "invalid or expired code")
		return
	}
	if err != nil {
		respond.StoreError(w, h.Log, "reset: update password", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(in.Email)
	}
	h.AuditLog.PasswordChanged(ctx, r, u.ID, &u.RestaurantID, "reset_code")

	respond.Message(w, http.StatusOK, "Password updated.")
}
