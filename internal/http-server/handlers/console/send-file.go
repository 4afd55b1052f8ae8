package console

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/api/cont"
	"ShopDesk/internal/lib/api/response"
)

// SendFile handles attachment uploads from the console.
// Endpoint: POST /api/v1/console/conversations/{conversation_id}/send-file
// Content-Type: multipart/form-data
// Fields: files (multiple), caption (optional text)
func SendFile(log *slog.Logger, handler Core) http.HandlerFunc {
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

		if err := r.ParseMultipartForm(entity.MaxFileSize); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid multipart form"))
			return
		}

		caption := r.FormValue("caption")
		files := r.MultipartForm.File["files"]

		if len(files) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("at least one file is required"))
			return
		}

		attachments, err := handler.UploadAttachments(convID, entity.RoleAgent, files)
		if err != nil {
			if errors.Is(err, entity.ErrFileTooLarge) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			log.Error("failed to upload attachments", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to store files"))
			return
		}

		msg, err := handler.AgentSend(convID, user.Username, caption, attachments)
		if err != nil {
			log.Error("failed to send files", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to send files"))
			return
		}

		render.JSON(w, r, response.Ok(msg))
	}
}
