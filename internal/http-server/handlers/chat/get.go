package chat

import (
	"errors"
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

// Get resumes a widget's conversation after a page reload. A 404 tells the
// widget the conversation was deleted: clear the stored id, show the form.
// Endpoint: GET /api/v1/chat/{conversation_id}
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		conv, err := handler.GetChat(convID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
				return
			}
			log.Error("failed to get chat", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get chat"))
			return
		}

		render.JSON(w, r, response.Ok(conv))
	}
}
