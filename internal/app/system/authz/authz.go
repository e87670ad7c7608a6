// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's ObjectID, restaurant ObjectID and a found flag.
// If no user is present in context or either ID is malformed, it returns
// NilObjectIDs and false, so ok=true always means a usable tenant scope.
func UserCtx(r *http.Request) (userID, restaurantID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed ID in a token or session - fail closed.
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	restaurantID, err = primitive.ObjectIDFromHex(user.RestaurantID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, restaurantID, true
}

// Actor returns the current user's ID for audit records, or nil.
func Actor(r *http.Request) *primitive.ObjectID {
	userID, _, ok := UserCtx(r)
	if !ok {
		return nil
	}
	return &userID
}

// IsAdmin reports whether the current user is a restaurant administrator.
func IsAdmin(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.Admin
}

// Can reports whether the current user may use area.
func Can(r *http.Request, area string) bool {
	user, _ := auth.CurrentUser(r)
	return user.Can(area)
}

// CanAccessRestaurant reports whether restaurantID is the current user's own
// restaurant. Users never see another tenant's data.
func CanAccessRestaurant(r *http.Request, restaurantID primitive.ObjectID) bool {
	_, own, ok := UserCtx(r)
	return ok && !restaurantID.IsZero() && own == restaurantID
}

// Scope resolves the restaurant a request acts on. An empty requested value
// means the user's own restaurant; anything else must match it.
func Scope(r *http.Request, requested string) (primitive.ObjectID, bool) {
	_, own, ok := UserCtx(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	if requested == "" {
		return own, true
	}
	oid, err := primitive.ObjectIDFromHex(requested)
	if err != nil || oid != own {
		return primitive.NilObjectID, false
	}
	return own, true
}

// RequireAccess lets the request through when the user holds any of areas.
// No user → 401; a user without any of the areas → 403.
func RequireAccess(areas ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.CurrentUser(r)
			if !ok {
				respond.Unauthorized(w, "authentication required")
				return
			}
			for _, a := range areas {
				if user.Can(a) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respond.Forbidden(w, "you do not have access to this area")
		})
	}
}

// RequireAdmin only admits restaurant administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CurrentUser(r)
		switch {
		case !ok:
			respond.Unauthorized(w, "authentication required")
		case !user.Admin:
			respond.Forbidden(w, "administrator access required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
