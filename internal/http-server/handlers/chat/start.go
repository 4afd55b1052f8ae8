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

// Start opens a new conversation from the intake form.
// Endpoint: POST /api/v1/chat/start
func Start(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var intake entity.Intake
		if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}

		conv, err := handler.StartChat(intake)
		if err != nil {
			if errors.Is(err, entity.ErrValidation) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			log.Error("failed to start chat", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to start chat"))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(conv))
	}
}
