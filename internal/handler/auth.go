package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chatvault/chatvault/internal/handler/dto"
	"github.com/chatvault/chatvault/internal/service"
)

// accessTokenCookie is the cookie carrying the bearer token for browser
// clients. API clients use the Authorization header instead.
const accessTokenCookie = "access_token"

// AuthHandler handles registration and credential login.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"username", user.Username,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /token. The request is an OAuth2 password form
// (username and password fields, form-encoded).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	token, user, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login failed", "username", username)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect username or password")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID, "username", user.Username)

	writeTokenResponse(w, token, int(h.svc.Tokens().TTL().Seconds()))
}

// handleAuthError maps auth service errors to HTTP responses.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		// the one credential failure allowed a specific message:
		// it leaks nothing about other users' resources
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already registered")
	case errors.Is(err, service.ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, "INVALID_REGISTRATION", "Username and password are required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

// writeTokenResponse delivers a freshly issued token both as a JSON body
// and as an HttpOnly cookie whose lifetime matches the token's.
func writeTokenResponse(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
	})

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
