// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "foodgestor-session"

	userIDKey = "user_id"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("jwt secret is empty")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we inject into r.Context() for a signed-in caller.
// A user without a role is a restaurant administrator and may use every area.
type SessionUser struct {
	ID           string        `json:"id"`
	RestaurantID string        `json:"restaurant_id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	Admin        bool          `json:"admin"`
	Access       models.Access `json:"access"`
}

// UserOID parses ID. A malformed ID yields the zero ObjectID.
func (u *SessionUser) UserOID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	return oid
}

func (u *SessionUser) RestaurantOID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(u.RestaurantID)
	return oid
}

// Can reports whether the user may use area.
func (u *SessionUser) Can(area string) bool {
	if u == nil {
		return false
	}
	return u.Admin || u.Access.Allows(area)
}

// UserFetcher loads a fresh SessionUser on each request so disabled accounts
// and role changes take effect immediately. It returns nil when the user no
// longer exists or is inactive.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// WithTestUser injects u into r the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// Config configures cookie sessions and bearer tokens.
type Config struct {
	SessionKey  string
	SessionName string
	Domain      string
	MaxAge      time.Duration
	Secure      bool

	JWTSecret string
	JWTTTL    time.Duration
}

// SessionManager issues and reads both the session cookie and API tokens.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	secret  []byte
	ttl     time.Duration
	fetcher UserFetcher
	log     *zap.Logger
	now     func() time.Time
}

// NewSessionManager builds a manager. An empty session key is replaced by a
// random one, which invalidates cookies on restart; fine for dev only.
func NewSessionManager(cfg Config, fetcher UserFetcher, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret
	}
	key := []byte(cfg.SessionKey)
	switch {
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate session key: entropy unavailable")
		}
		logger.Warn("session key is empty; using a random key for this process")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	name := cfg.SessionName
	if name == "" {
		name = DefaultSessionName
	}
	ttl := cfg.JWTTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = ttl
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
	}
	// Secure cookies may be sent cross-site to the SPA; plain http dev stays Lax.
	if cfg.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	} else {
		store.Options.SameSite = http.SameSiteLaxMode
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", cfg.Secure),
		zap.String("domain", cfg.Domain),
		zap.Duration("token_ttl", ttl))

	return &SessionManager{
		store:   store,
		name:    name,
		secret:  []byte(cfg.JWTSecret),
		ttl:     ttl,
		fetcher: fetcher,
		log:     logger,
		now:     time.Now,
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tokens                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Claims is the JWT payload. Subject holds the user ID.
type Claims struct {
	RestaurantID string        `json:"rid"`
	Username     string        `json:"usr"`
	Email        string        `json:"email"`
	Admin        bool          `json:"adm,omitempty"`
	Access       models.Access `json:"acc"`
	jwt.RegisteredClaims
}

// User converts the claims back into a SessionUser.
func (c *Claims) User() *SessionUser {
	return &SessionUser{
		ID:           c.Subject,
		RestaurantID: c.RestaurantID,
		Username:     c.Username,
		Email:        c.Email,
		Admin:        c.Admin,
		Access:       c.Access,
	}
}

// IssueToken signs an HS256 token for u.
func (m *SessionManager) IssueToken(u SessionUser) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{
		RestaurantID: u.RestaurantID,
		Username:     u.Username,
		Email:        u.Email,
		Admin:        u.Admin,
		Access:       u.Access,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates signature, algorithm and expiry.
func (m *SessionManager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Cookie session                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SignIn stores the user ID in the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (m *SessionManager) sessionUserID(r *http.Request) string {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[userIDKey].(string)
	return id
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the caller into context. A bearer token wins over
// the session cookie. With a fetcher configured the user is reloaded from
// the database; a vanished or inactive user is treated as signed out.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var u *SessionUser
		if tok := bearerToken(r); tok != "" {
			claims, err := m.ParseToken(tok)
			if err != nil {
				m.log.Debug("rejecting bearer token", zap.Error(err))
			} else {
				u = m.refresh(r.Context(), claims.User())
			}
		} else if id := m.sessionUserID(r); id != "" && m.fetcher != nil {
			// the cookie carries only the ID
			u = m.fetcher.FetchUser(r.Context(), id)
		}
		if u != nil {
			r = WithTestUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionManager) refresh(ctx context.Context, u *SessionUser) *SessionUser {
	if m.fetcher == nil {
		return u
	}
	return m.fetcher.FetchUser(ctx, u.ID)
}

// RequireSignedIn answers 401 unless LoadSessionUser found a user.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Passwords                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
