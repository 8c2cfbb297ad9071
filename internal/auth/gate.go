package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const CookieName = "notecraft_session"

type contextKey struct{}

// Gate ties the provider to HTTP requests through the session cookie
type Gate struct {
	provider Provider
	ttl      time.Duration
}

func NewGate(provider Provider, ttl time.Duration) *Gate {
	return &Gate{provider: provider, ttl: ttl}
}

// Provider returns the backing identity provider
func (g *Gate) Provider() Provider {
	return g.provider
}

// CurrentSession resolves the session from the request context or cookie
func (g *Gate) CurrentSession(r *http.Request) (*Session, bool) {
	if s, ok := FromContext(r.Context()); ok {
		return s, true
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return g.provider.Session(r.Context(), cookie.Value)
}

// SetCookie hands the session token to the browser
func (g *Gate) SetCookie(w http.ResponseWriter, s *Session) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if g.ttl > 0 {
		cookie.MaxAge = int(g.ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

// SignOut ends the session and expires the cookie
func (g *Gate) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if err := g.provider.SignOut(r.Context(), cookie.Value); err != nil {
			slog.Error("Unable to sign out", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require lets signed-in requests through. API routes get 401, pages are
// redirected to /login.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.CurrentSession(r)
		if !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "sign in required"})
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
