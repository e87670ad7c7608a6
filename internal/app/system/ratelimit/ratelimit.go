// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// New allows limit hits per key in each period. A background sweep drops
// expired keys until Stop is called.
func New(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(2 * period)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.resetAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.mu.Lock()
			now := l.now()
			for k, w := range l.windows {
				if !now.Before(w.resetAt) {
					delete(l.windows, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Messages returned by LoginLimiter.Check.
const (
	MsgTooManyFromIP      = "Too many login attempts. Please wait a minute before trying again."
	MsgTooManyForIdentity = "Too many login attempts for this account. Please wait a few minutes."
)

// LoginLimiter throttles login and password-reset attempts by client IP
// and by the username or email being tried.
type LoginLimiter struct {
	byIP         *Limiter
	byIdentifier *Limiter
}

// NewLoginLimiter allows ipLimit attempts per IP per minute and idLimit
// attempts per identifier per five minutes. Non-positive values use 10 and 5.
func NewLoginLimiter(ipLimit, idLimit int) *LoginLimiter {
	if ipLimit <= 0 {
		ipLimit = 10
	}
	if idLimit <= 0 {
		idLimit = 5
	}
	return &LoginLimiter{
		byIP:         New(ipLimit, time.Minute),
		byIdentifier: New(idLimit, 5*time.Minute),
	}
}

func identifierKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Check records an attempt. When it is refused, the reason is a message
// suitable for the client.
func (ll *LoginLimiter) Check(r *http.Request, identifier string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := identifierKey(identifier); key != "" && !ll.byIdentifier.Allow(key) {
		return false, MsgTooManyForIdentity
	}
	return true, ""
}

// Succeeded clears the identifier's counter after a good login.
func (ll *LoginLimiter) Succeeded(identifier string) {
	if key := identifierKey(identifier); key != "" {
		ll.byIdentifier.Reset(key)
	}
}

func (ll *LoginLimiter) Stop() {
	ll.byIP.Stop()
	ll.byIdentifier.Stop()
}
