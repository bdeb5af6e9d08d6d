package server

import (
	"net/http"
	"strings"

	"github.com/viant/cookiejwt/server/token"
)

// Authenticate resolves the user from an "Authorization: Bearer" header first, then from the access cookie.
// An invalid bearer token is rejected with 401; an invalid cookie leaves the request anonymous.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearer(r.Header.Get("Authorization")); ok {
			user, err := h.userFor(r, raw)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, detailTokenInvalid)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}
		if raw := h.config.Cookies.Access(r); raw != "" {
			if user, err := h.userFor(r, raw); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Protect rejects requests without an authenticated user.
func (h *Handler) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AutoRefresh sets a fresh access cookie when the current one expires within the refresh threshold
// and the refresh cookie is still valid. Expired or invalid tokens are left to Authenticate.
func (h *Handler) AutoRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, refresh := h.config.Cookies.Access(r), h.config.Cookies.Refresh(r)
		if access != "" && refresh != "" {
			h.renewIfExpiring(w, r, access, refresh)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) renewIfExpiring(w http.ResponseWriter, r *http.Request, access, refresh string) {
	claims, err := h.tokens.Parse(access, token.TypeAccess)
	if err != nil || h.tokens.Remaining(claims) > h.config.RefreshThreshold {
		return
	}
	refreshClaims, err := h.tokens.Parse(refresh, token.TypeRefresh)
	if err != nil || refreshClaims.Subject != claims.Subject {
		return
	}
	if _, err = h.grants.Get(r.Context(), refreshClaims.ID); err != nil {
		return
	}
	renewed, err := h.tokens.IssueAccess(claims.Subject)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to renew access token")
		return
	}
	h.config.Cookies.SetAccess(w, r, renewed)
	h.logger.Debug().Str("username", claims.Subject).Msg("access token renewed ahead of expiry")
}

func (h *Handler) userFor(r *http.Request, raw string) (*User, error) {
	claims, err := h.tokens.Parse(raw, token.TypeAccess)
	if err != nil {
		return nil, err
	}
	return h.users.Lookup(r.Context(), claims.Subject)
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
