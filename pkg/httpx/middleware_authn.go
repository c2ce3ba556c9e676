package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// AuthnMiddleware rejects requests without a valid bearer session token.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return authn(v, true)
}

// OptionalAuthnMiddleware authenticates the caller when a bearer token is
// present and lets anonymous requests through untouched. A present but bad
// token is still rejected.
func OptionalAuthnMiddleware(v jwtx.Verifier) Middleware {
	return authn(v, false)
}

func authn(v jwtx.Verifier, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				if required {
					writeBearerError(w, "invalid_token", "missing bearer token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if errors.Is(err, jwtx.ErrExpired) {
				writeBearerError(w, "token_expired", "token expired")
				return
			}
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "invalid_token", "token verification failed")
				return
			}

			ctx = slogx.With(contextWithAuth(ctx, claims), "account_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[7:])
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
