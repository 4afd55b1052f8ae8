package console

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/cont"
	"ShopDesk/internal/lib/api/response"
)

// Send appends an agent reply. The sender identity comes from the
// authenticated request context, not the body.
// Endpoint: POST /api/v1/console/conversations/{conversation_id}/send
func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("not authenticated"))
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

		msg, err := handler.AgentSend(convID, user.Username, req.Content, nil)
		if err != nil {
			switch {
			case errors.Is(err, entity.ErrValidation):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, entity.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
			default:
				log.Error("failed to send reply", slog.String("error", err.Error()))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to send reply"))
			}
			return
		}

		render.JSON(w, r, response.Ok(msg))
	}
}
