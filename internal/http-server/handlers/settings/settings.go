package settings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// Core defines the methods required by the settings handlers.
type Core interface {
	AutoReplySettings() entity.AutoReplySettings
	SaveAutoReplySettings(settings entity.AutoReplySettings) error
}

// Get returns the active auto-reply configuration.
// Endpoint: GET /api/v1/settings/auto-reply
func Get(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(handler.AutoReplySettings()))
	}
}

// Update stores new auto-reply configuration. Timers already armed keep the
// snapshot they were created with.
// Endpoint: PUT /api/v1/settings/auto-reply
func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entity.AutoReplySettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}

		if err := handler.SaveAutoReplySettings(req); err != nil {
			if errors.Is(err, entity.ErrValidation) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			log.Error("failed to save auto-reply settings", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to save settings"))
			return
		}

		render.JSON(w, r, response.Ok(req))
	}
}
