package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrRevokedToken = errors.New("session token revoked")

// RevocationStore remembers signed-out tokens; *repo.RevocationRepo
// satisfies it.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// WithRevocations makes Verify consult store.
func (t *Tokens) WithRevocations(store RevocationStore) *Tokens {
	t.revoked = store
	return t
}

// Verify is Parse plus the revocation check. Tokens without an id predate
// revocation support and cannot be revoked.
func (t *Tokens) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := t.Parse(token)
	if err != nil {
		return nil, err
	}
	if t.revoked == nil || claims.ID == "" {
		return claims, nil
	}
	revoked, err := t.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrRevokedToken)
	}
	return claims, nil
}

// Revoke signs out the token. Without a store it is a no-op.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if t.revoked == nil || claims.ID == "" {
		return nil
	}
	return t.revoked.Revoke(ctx, claims.ID, claims.Subject, claims.ExpiresAt.Time)
}

// SignOutHandler revokes the bearer token of the request. It must sit
// behind Middleware.
func SignOutHandler(tokens *Tokens, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			unauthorized(w)
			return
		}
		if err := tokens.Revoke(r.Context(), claims); err != nil {
			logger.Errorw("failed to revoke session", "sub", claims.Subject, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "signed out"})
	}
}
