package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/quickbites/internal/dialogue"
)

type Responder interface {
	Respond(ctx context.Context, key, message string) (dialogue.Reply, error)
}

type ChatHandler struct {
	responder Responder
	timeout   time.Duration
}

func NewChatHandler(responder Responder, timeout time.Duration) *ChatHandler {
	return &ChatHandler{
		responder: responder,
		timeout:   timeout,
	}
}

type ChatRequestDTO struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Chat handles POST /chat. An empty or missing body is the empty message.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	key := ResolveSessionKey(w, r, req.SessionID)

	reply, err := h.responder.Respond(ctx, key, req.Message)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, reply)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}
