package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chatvault/chatvault/internal/auth"
	"github.com/chatvault/chatvault/internal/handler/dto"
	"github.com/chatvault/chatvault/internal/service"
)

// ChatBoxHandler handles HTTP requests for chat boxes and their messages.
// Every route it serves sits behind the auth middleware, so the request
// context always carries a resolved identity.
type ChatBoxHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

// NewChatBoxHandler creates a new ChatBoxHandler.
func NewChatBoxHandler(svc *service.ChatService, logger *slog.Logger) *ChatBoxHandler {
	return &ChatBoxHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /chatboxes/.
func (h *ChatBoxHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateChatBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	userID := auth.MustAuthFromContext(r.Context()).UserID

	box, err := h.svc.CreateBox(r.Context(), userID, req.Name)
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	h.logger.Info("chatbox_created",
		"chat_box_id", box.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusCreated, dto.ToChatBoxResponse(box))
}

// List handles GET /chatboxes/.
func (h *ChatBoxHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustAuthFromContext(r.Context()).UserID

	boxes, err := h.svc.ListBoxes(r.Context(), userID)
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChatBoxListResponse(boxes))
}

// Delete handles DELETE /chatboxes/{id}.
func (h *ChatBoxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	boxID, ok := h.boxIDParam(w, r)
	if !ok {
		return
	}

	userID := auth.MustAuthFromContext(r.Context()).UserID

	if err := h.svc.DeleteBox(r.Context(), userID, boxID); err != nil {
		h.handleChatError(w, err)
		return
	}

	h.logger.Info("chatbox_deleted", "chat_box_id", boxID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.DeleteChatBoxResponse{Result: true})
}

// PostMessage handles POST /chatboxes/{id}/messages/.
func (h *ChatBoxHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	boxID, ok := h.boxIDParam(w, r)
	if !ok {
		return
	}

	var req dto.CreateChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	userID := auth.MustAuthFromContext(r.Context()).UserID

	msg, err := h.svc.PostMessage(r.Context(), userID, boxID, req.Sender, req.Message)
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToChatMessageResponse(msg))
}

// History handles GET /chatboxes/{id}/messages/.
func (h *ChatBoxHandler) History(w http.ResponseWriter, r *http.Request) {
	boxID, ok := h.boxIDParam(w, r)
	if !ok {
		return
	}

	userID := auth.MustAuthFromContext(r.Context()).UserID

	messages, err := h.svc.History(r.Context(), userID, boxID)
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChatMessageListResponse(messages))
}

// boxIDParam parses the {id} route parameter. Writes a 400 and returns
// false when it isn't a valid integer.
func (h *ChatBoxHandler) boxIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Chat box id must be a positive integer")
		return 0, false
	}
	return id, true
}

// handleChatError maps chat service errors to HTTP responses.
// Access denial is one uniform 403: a caller can't distinguish a foreign
// box from a nonexistent one.
func (h *ChatBoxHandler) handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBoxAccessDenied):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to access this chat box")
	case errors.Is(err, service.ErrEmptyBoxName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Chat box name must not be empty")
	case errors.Is(err, service.ErrEmptySender):
		writeError(w, http.StatusBadRequest, "INVALID_SENDER", "Sender must not be empty")
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "INVALID_MESSAGE", "Message must not be empty")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
