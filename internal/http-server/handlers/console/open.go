package console

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

type openResponse struct {
	Conversation *entity.Conversation `json:"conversation"`
	Messages     []entity.Message     `json:"messages"`
}

// Open returns the detail view for a conversation and marks the customer's
// messages read.
// Endpoint: GET /api/v1/console/conversations/{conversation_id}
func Open(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		conv, messages, err := handler.OpenConversation(convID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
				return
			}
			log.Error("failed to open conversation", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to open conversation"))
			return
		}

		if messages == nil {
			messages = []entity.Message{}
		}

		render.JSON(w, r, response.Ok(openResponse{
			Conversation: conv,
			Messages:     messages,
		}))
	}
}
