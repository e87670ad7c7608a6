// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool              `json:"isAuthenticated"`
	User            *auth.SessionUser `json:"user,omitempty"`
	Areas           []string          `json:"areas"`
}

// ServeUserInfo returns the caller's identity and the areas they may use.
//
//	{ "isAuthenticated": true, "user": {...}, "areas": ["orders","cash"] }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		respond.OK(w, userInfo{Areas: []string{}})
		return
	}

	areas := user.Access.Areas()
	if user.Admin {
		areas = allAreas
	}
	if areas == nil {
		areas = []string{}
	}
	respond.OK(w, userInfo{IsAuthenticated: true, User: user, Areas: areas})
}
