package console

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// MarkRead resets the unread state for a conversation without opening it.
// Endpoint: POST /api/v1/console/conversations/{conversation_id}/read
func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		if err := handler.MarkRead(convID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
				return
			}
			log.Error("failed to mark read", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to mark read"))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
