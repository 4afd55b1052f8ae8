package console

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

// conversationID pulls and parses the {conversation_id} URL parameter.
func conversationID(r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "conversation_id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns every conversation for the dashboard, most recently
// updated first.
// Endpoint: GET /api/v1/console/conversations
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversations, err := handler.ListConversations()
		if err != nil {
			log.Error("failed to list conversations", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list conversations"))
			return
		}

		if conversations == nil {
			conversations = []entity.Conversation{}
		}

		render.JSON(w, r, response.Ok(conversations))
	}
}
