// internal/app/system/wsauth/wsauth.go
// Package wsauth authenticates WebSocket upgrades. Browsers cannot set
// headers on a WebSocket handshake, so besides the session cookie a caller
// may present a short-lived signed ticket or an API token in the query.
package wsauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/gorilla/securecookie"
)

const ticketName = "ws-ticket"

var (
	ErrNoCredentials = errors.New("no websocket credentials")
	ErrInvalidTicket = errors.New("invalid or expired ticket")
)

// Ticket is the signed payload handed to the browser.
type Ticket struct {
	UserID       string `json:"uid"`
	RestaurantID string `json:"rid"`
}

// Tickets issues and verifies tickets.
type Tickets struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
}

// NewTickets signs tickets with hashKey. An empty key is replaced with a
// random one, so tickets do not survive a restart.
func NewTickets(hashKey []byte, ttl time.Duration) *Tickets {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	codec := securecookie.New(hashKey, nil).MaxAge(int(ttl.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Tickets{codec: codec, ttl: ttl}
}

// Issue returns a ticket for u and when it expires.
func (t *Tickets) Issue(u *auth.SessionUser) (string, time.Time, error) {
	v, err := t.codec.Encode(ticketName, Ticket{UserID: u.ID, RestaurantID: u.RestaurantID})
	if err != nil {
		return "", time.Time{}, err
	}
	return v, time.Now().Add(t.ttl), nil
}

// Verify checks the signature and age of v.
func (t *Tickets) Verify(v string) (Ticket, error) {
	var tk Ticket
	if err := t.codec.Decode(ticketName, v, &tk); err != nil || tk.UserID == "" {
		return Ticket{}, ErrInvalidTicket
	}
	return tk, nil
}

// Authenticator resolves the caller of a WebSocket handshake.
type Authenticator struct {
	Tickets  *Tickets
	Sessions *auth.SessionManager
	Users    auth.UserFetcher
}

// Authenticate tries, in order, the user LoadSessionUser already put in
// context, a ?ticket= and a ?token=. Ticket and token users are reloaded
// through Users so a disabled account cannot connect.
func (a *Authenticator) Authenticate(r *http.Request) (*auth.SessionUser, error) {
	if u, ok := auth.CurrentUser(r); ok {
		return u, nil
	}
	q := r.URL.Query()
	if v := q.Get("ticket"); v != "" && a.Tickets != nil {
		tk, err := a.Tickets.Verify(v)
		if err != nil {
			return nil, err
		}
		return a.reload(r.Context(), &auth.SessionUser{ID: tk.UserID, RestaurantID: tk.RestaurantID})
	}
	if v := q.Get("token"); v != "" && a.Sessions != nil {
		claims, err := a.Sessions.ParseToken(v)
		if err != nil {
			return nil, err
		}
		return a.reload(r.Context(), claims.User())
	}
	return nil, ErrNoCredentials
}

func (a *Authenticator) reload(ctx context.Context, u *auth.SessionUser) (*auth.SessionUser, error) {
	if a.Users == nil {
		return u, nil
	}
	fresh := a.Users.FetchUser(ctx, u.ID)
	if fresh == nil {
		return nil, ErrNoCredentials
	}
	return fresh, nil
}
