package console

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// Roster returns the agents currently connected to the console.
// Endpoint: GET /api/v1/console/roster
func Roster(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster := handler.AgentRoster()
		if roster == nil {
			roster = []entity.PresenceRecord{}
		}
		render.JSON(w, r, response.Ok(roster))
	}
}
