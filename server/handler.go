package server

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/viant/cookiejwt/server/auth"
	"github.com/viant/cookiejwt/server/token"
)

// Handler serves the cookie-JWT authentication endpoints: login, refresh, logout and current user.
// Access and refresh tokens travel only in HttpOnly cookies; response bodies carry a detail message.
type Handler struct {
	config  Config
	tokens  *token.Manager
	users   UserStore
	grants  auth.Store
	logger  zerolog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// HandleProtected mounts an application route that requires an authenticated user.
func (h *Handler) HandleProtected(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, h.Authenticate(h.Protect(handler)))
}

// Handle mounts an application route; the user, if any, is available through UserFromContext.
func (h *Handler) Handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, h.Authenticate(handler))
}

// Config returns the effective config.
func (h *Handler) Config() Config {
	return h.config
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, detailBadRequest)
		return
	}
	user, err := h.users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.logger.Debug().Str("username", creds.Username).Msg("login rejected")
		writeDetail(w, http.StatusUnauthorized, detailInvalidCredentials)
		return
	}
	grant := auth.NewGrant(user.Username)
	grant.UserAgent = r.UserAgent()
	if err = h.grants.Put(r.Context(), grant); err != nil {
		h.logger.Error().Err(err).Msg("failed to store refresh grant")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	access, err := h.tokens.IssueAccess(user.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue access token")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	refresh, err := h.tokens.IssueRefresh(user.Username, grant.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue refresh token")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	h.config.Cookies.SetAccess(w, r, access)
	h.config.Cookies.SetRefresh(w, r, refresh)
	h.logger.Info().Str("username", user.Username).Msg("login")
	writeDetail(w, http.StatusOK, detailLoginSucceeded)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw := h.config.Cookies.Refresh(r)
	if raw == "" {
		writeDetail(w, http.StatusUnauthorized, detailRefreshMissing)
		return
	}
	claims, err := h.tokens.Parse(raw, token.TypeRefresh)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid)
		return
	}
	if _, err = h.grants.Get(r.Context(), claims.ID); err != nil {
		h.logger.Debug().Str("grant", claims.ID).Err(err).Msg("refresh grant rejected")
		writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid)
		return
	}
	if _, err = h.users.Lookup(r.Context(), claims.Subject); err != nil {
		writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid)
		return
	}
	access, err := h.tokens.IssueAccess(claims.Subject)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue access token")
		http.Error(w, "failed to refresh session", http.StatusInternalServerError)
		return
	}
	if h.config.RotateRefresh {
		newID, err := h.grants.Rotate(r.Context(), claims.ID, &auth.Grant{Subject: claims.Subject, UserAgent: r.UserAgent()})
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid)
			return
		}
		rotated, err := h.tokens.IssueRefresh(claims.Subject, newID)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to issue refresh token")
			http.Error(w, "failed to refresh session", http.StatusInternalServerError)
			return
		}
		h.config.Cookies.SetRefresh(w, r, rotated)
	} else if err = h.grants.Touch(r.Context(), claims.ID, time.Now()); err != nil {
		h.logger.Debug().Str("grant", claims.ID).Err(err).Msg("failed to touch refresh grant")
	}
	h.config.Cookies.SetAccess(w, r, access)
	writeDetail(w, http.StatusOK, detailRefreshed)
}

// logout revokes the refresh grant (its whole family with ?all=true) and clears both cookies.
// A missing or already invalid refresh token still clears the cookies.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if raw := h.config.Cookies.Refresh(r); raw != "" {
		if claims, err := h.tokens.Parse(raw, token.TypeRefresh); err == nil {
			h.revoke(r, claims.ID, r.URL.Query().Get("all") == "true")
		}
	}
	h.config.Cookies.Clear(w, r)
	writeDetail(w, http.StatusOK, detailLogoutSucceeded)
}

func (h *Handler) revoke(r *http.Request, grantID string, family bool) {
	ctx := r.Context()
	if family {
		if g, err := h.grants.Get(ctx, grantID); err == nil {
			if err = h.grants.RevokeFamily(ctx, g.FamilyID); err != nil {
				h.logger.Error().Err(err).Msg("failed to revoke grant family")
			}
			return
		}
	}
	if err := h.grants.Revoke(ctx, grantID); err != nil {
		h.logger.Debug().Str("grant", grantID).Err(err).Msg("refresh grant not revoked")
	}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// New creates an auth handler. Every route, including application routes mounted later, runs behind AutoRefresh.
func New(tokens *token.Manager, users UserStore, grants auth.Store, opts ...Option) *Handler {
	h := &Handler{
		tokens: tokens,
		users:  users,
		grants: grants,
		logger: zerolog.Nop(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.config.Init()
	h.mux.HandleFunc(h.config.LoginEndpoint, h.login)
	h.mux.HandleFunc(h.config.RefreshEndpoint, h.refresh)
	h.HandleProtected(h.config.LogoutEndpoint, http.HandlerFunc(h.logout))
	h.HandleProtected(h.config.UserEndpoint, http.HandlerFunc(h.me))
	h.handler = h.AutoRefresh(h.mux)
	return h
}
