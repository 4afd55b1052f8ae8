package core

import (
	"fmt"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/chat"
	"ShopDesk/internal/lib/sl"
)

// FileRepository is the object-storage and credential slice of the database layer.
type FileRepository interface {
	UploadFile(filename string, reader io.Reader, meta entity.FileMetadata) (primitive.ObjectID, int64, error)
	DownloadFile(fileID primitive.ObjectID) (string, entity.FileMetadata, io.ReadCloser, error)
	DeleteFile(fileID primitive.ObjectID) error
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)
}

// Assistant drafts a suggested agent reply from the conversation history.
type Assistant interface {
	SuggestReply(subject string, history []entity.Message) (string, error)
}

// Core is the wiring hub behind every HTTP handler. Collaborators are attached
// with setters at startup; anything left nil degrades to a clear error instead
// of a crash.
type Core struct {
	log      *slog.Logger
	deps     chat.Deps
	files    FileRepository
	settings chat.SettingsRepository

	assistant Assistant
	authKey   string
}

// New creates an empty Core.
func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

// SetAuthKey sets the master console API key from config.
func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

// SetChat attaches the chat stores and channels.
func (c *Core) SetChat(deps chat.Deps) {
	c.deps = deps
}

// SetFileRepository attaches attachment storage and API-key persistence.
func (c *Core) SetFileRepository(files FileRepository) {
	c.files = files
}

// SetSettingsRepository attaches the auto-reply configuration store.
func (c *Core) SetSettingsRepository(settings chat.SettingsRepository) {
	c.settings = settings
}

// SetAssistant attaches the optional reply-suggestion service.
func (c *Core) SetAssistant(assistant Assistant) {
	c.assistant = assistant
}

// Deps exposes the chat wiring for the WebSocket layer.
func (c *Core) Deps() chat.Deps {
	return c.deps
}

// AuthenticateByToken resolves a console bearer token to an agent identity.
// The master key from config maps to the admin user; everything else is
// looked up in the api-keys collection.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if c.authKey != "" && token == c.authKey {
		return &entity.UserAuth{Username: "admin"}, nil
	}
	if c.files == nil {
		return nil, fmt.Errorf("authentication not enabled")
	}
	username, err := c.files.CheckApiKey(token)
	if err != nil {
		return nil, err
	}
	return &entity.UserAuth{Username: username}, nil
}

// ValidateToken adapts AuthenticateByToken for the WebSocket upgrade path.
func (c *Core) ValidateToken(token string) (string, error) {
	user, err := c.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GenerateApiKey provisions (or returns) the API key for a console agent.
func (c *Core) GenerateApiKey(username string) (string, error) {
	if c.files == nil {
		return "", fmt.Errorf("repository not configured")
	}
	return c.files.GenerateApiKey(username)
}
