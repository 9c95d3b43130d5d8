package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller, extracted from a verified token.
// Token issuance lives in the auth service; this side only consumes.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type claims struct {
	jwt.RegisteredClaims
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the authenticated identity stored by the middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// bearerToken pulls the raw token from the Authorization header (with or
// without the Bearer prefix) or the "token" cookie, matching how the
// original clients send it.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
		return h
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

// authenticate verifies the HS256 token and injects the caller identity.
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			h.respondError(w, http.StatusUnauthorized, "Please login before you continue")
			return
		}

		var c claims
		parsed, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.secret), nil
		})
		if err != nil || !parsed.Valid || c.ID == "" {
			h.respondError(w, http.StatusUnauthorized, "Your session has expired, please login again")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{
			UserID: c.ID,
			Email:  c.Email,
			Role:   c.Role,
		})
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin gates back-office operations.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		if id.Role != "admin" {
			h.respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}
