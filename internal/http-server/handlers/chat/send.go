package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// Send appends a customer message. On failure the widget keeps its compose
// box populated and lets the customer retry.
// Endpoint: POST /api/v1/chat/{conversation_id}/send
func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}

		msg, err := handler.CustomerSend(convID, req.Content, nil)
		if err != nil {
			switch {
			case errors.Is(err, entity.ErrValidation):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, entity.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
			default:
				log.Error("failed to send message", slog.String("error", err.Error()))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to send message"))
			}
			return
		}

		render.JSON(w, r, response.Ok(msg))
	}
}
