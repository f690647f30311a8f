package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
)

// ErrUnknownPrincipal is returned by a PrincipalSource when the token
// subject has no user row.
var ErrUnknownPrincipal = errors.New("unknown principal")

// PrincipalSource loads the authoritative role and email for a user id.
// Implementations must return an error wrapping access.ErrUnknownRole for
// role values outside the closed set.
type PrincipalSource interface {
	LookupPrincipal(ctx context.Context, userID string) (Principal, error)
}

// CachedSource memoizes successful lookups for a short TTL. Failures are not
// cached.
type CachedSource struct {
	next  PrincipalSource
	cache *expirable.LRU[string, Principal]
}

func NewCachedSource(next PrincipalSource, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = 128
	}
	return &CachedSource{next: next, cache: expirable.NewLRU[string, Principal](size, nil, ttl)}
}

func (c *CachedSource) LookupPrincipal(ctx context.Context, userID string) (Principal, error) {
	if p, ok := c.cache.Get(userID); ok {
		return p, nil
	}
	p, err := c.next.LookupPrincipal(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	c.cache.Add(userID, p)
	return p, nil
}

// Invalidate drops a cached principal, e.g. after a role change.
func (c *CachedSource) Invalidate(userID string) {
	c.cache.Remove(userID)
}

// Middleware authenticates every request with a bearer session token and
// stores the resulting Principal on the request context. Requests without a
// valid session get 401 and never reach next.
func Middleware(tokens *Tokens, source PrincipalSource, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) {
					logger.Errorw("session verification failed", "err", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
					return
				}
				logger.Debugw("session token rejected", "err", err, "path", r.URL.Path)
				unauthorized(w)
				return
			}
			p, err := source.LookupPrincipal(r.Context(), claims.Subject)
			switch {
			case err == nil:
			case errors.Is(err, ErrUnknownPrincipal):
				logger.Debugw("session subject not found", "sub", claims.Subject)
				unauthorized(w)
				return
			case errors.Is(err, access.ErrUnknownRole):
				logger.Warnw("principal has unrecognized role", "sub", claims.Subject, "err", err)
				unauthorized(w)
				return
			default:
				logger.Errorw("principal lookup failed", "sub", claims.Subject, "err", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
				return
			}
			if !p.Role.Valid() {
				// sources are expected to reject these already
				logger.Warnw("principal has unrecognized role", "sub", claims.Subject, "role", p.Role)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
