package key

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/internal/lib/api/response"
)

// Core defines the methods required by the key handlers.
type Core interface {
	GenerateApiKey(username string) (string, error)
}

// Generate provisions (or returns) a console API key for an agent.
// Endpoint: POST /api/v1/key/new
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("username is required"))
			return
		}

		apiKey, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			log.Error("failed to generate api key",
				slog.String("username", req.Username),
				slog.String("error", err.Error()),
			)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}

		render.JSON(w, r, response.Ok(map[string]string{"key": apiKey}))
	}
}
