package console

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/response"
)

type updateRequest struct {
	Status   *string   `json:"status,omitempty"`
	Assignee *string   `json:"assignee,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Priority *string   `json:"priority,omitempty"`
	Category *string   `json:"category,omitempty"`
}

// Update applies a partial update to a conversation. Only the fields present
// in the body change; an empty assignee clears the assignment.
// Endpoint: PATCH /api/v1/console/conversations/{conversation_id}
func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, ok := conversationID(r)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid conversation id"))
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}

		apply := func(name string, err error) bool {
			if err == nil {
				return true
			}
			switch {
			case errors.Is(err, entity.ErrValidation):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, entity.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("conversation not found"))
			default:
				log.Error("failed to update conversation",
					slog.String("field", name),
					slog.String("error", err.Error()),
				)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to update conversation"))
			}
			return false
		}

		if req.Status != nil && !apply("status", handler.UpdateStatus(convID, *req.Status)) {
			return
		}
		if req.Assignee != nil && !apply("assignee", handler.AssignConversation(convID, *req.Assignee)) {
			return
		}
		if req.Tags != nil && !apply("tags", handler.SetTags(convID, *req.Tags)) {
			return
		}
		if req.Notes != nil && !apply("notes", handler.SetNotes(convID, *req.Notes)) {
			return
		}
		if req.Priority != nil && !apply("priority", handler.SetPriority(convID, *req.Priority)) {
			return
		}
		if req.Category != nil && !apply("category", handler.SetCategory(convID, *req.Category)) {
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
