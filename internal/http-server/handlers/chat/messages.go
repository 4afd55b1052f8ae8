package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// Messages returns the full ordered message log for the widget. Viewing marks
// the agent side's messages read.
// Endpoint: GET /api/v1/chat/{conversation_id}/messages
func Messages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		messages, err := handler.CustomerMessages(convID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
				return
			}
			log.Error("failed to get chat messages", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get messages"))
			return
		}

		if messages == nil {
			messages = []entity.Message{}
		}

		render.JSON(w, r, response.Ok(messages))
	}
}
