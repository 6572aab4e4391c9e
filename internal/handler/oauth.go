package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/chatvault/chatvault/internal/identity"
	"github.com/chatvault/chatvault/internal/service"
)

// oauthStateCookie round-trips the anti-CSRF state value through the
// provider redirect.
const oauthStateCookie = "oauth_state"

// OAuthHandler handles login through an external identity provider.
type OAuthHandler struct {
	provider identity.Provider
	svc      *service.AuthService
	logger   *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(provider identity.Provider, svc *service.AuthService, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider: provider,
		svc:      svc,
		logger:   logger,
	}
}

// Redirect handles GET /auth/google. It sends the client to the provider's
// consent page with a fresh state nonce.
func (h *OAuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   true,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/google/callback. It verifies the state nonce,
// exchanges the code for a verified identity, and logs the user in -
// registering them on first login.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		h.logger.Warn("oauth callback with bad state", "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Invalid or missing OAuth state")
		return
	}

	// the nonce is single-use
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CODE", "Missing authorization code")
		return
	}

	ident, err := h.provider.FetchIdentity(r.Context(), code)
	if err != nil {
		if errors.Is(err, identity.ErrNoEmail) {
			writeError(w, http.StatusBadRequest, "NO_EMAIL", "Identity provider returned no email")
			return
		}
		h.logger.Error("oauth exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "OAUTH_FAILED", "Could not verify identity with provider")
		return
	}

	token, user, err := h.svc.LoginWithIdentity(r.Context(), ident.Email, ident.Name)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	h.logger.Info("oauth_login", "user_id", user.ID, "username", user.Username)

	writeTokenResponse(w, token, int(h.svc.Tokens().TTL().Seconds()))
}
