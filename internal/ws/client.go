package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/chat"
	"ShopDesk/internal/lib/sl"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single WebSocket connection from either UI.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]bool

	onEvent func(eventType string, data json.RawMessage)
	onClose func()
	log     *slog.Logger
}

// Push queues a session-scoped event directly for this client, bypassing the
// topic planes. Dropped if the client's buffer is full.
func (c *Client) Push(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump pumps messages from the WebSocket connection into the session.
// It handles ping/pong keepalive and detects disconnects: connection loss
// resolves to the same state as an explicit leave.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.dispatch(raw)
	}
}

type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) dispatch(raw []byte) {
	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		c.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}
	if c.onEvent != nil {
		c.onEvent(event.Type, event.Data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Authenticator validates a console token and returns the agent username.
type Authenticator interface {
	ValidateToken(token string) (string, error)
}

// ServeAgent handles WebSocket upgrade requests from the console. The
// connection's lifetime is the agent's presence: the session joins the roster
// on connect and leaves on any kind of disconnect.
func ServeAgent(hub *Hub, auth Authenticator, deps chat.Deps, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username, err := auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	session := chat.NewAgentSession(deps, username)

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		topics: map[string]bool{
			TopicConversations: true,
			TopicAgentPresence: true,
		},
		log: log.With(sl.Module("ws.agent"), slog.String("agent", username)),
	}

	var cancelMessages, cancelTyping func()
	client.onEvent = func(eventType string, data json.RawMessage) {
		switch eventType {
		case "open":
			var req struct {
				ConversationID string `json:"conversation_id"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return
			}
			convID, err := primitive.ObjectIDFromHex(req.ConversationID)
			if err != nil {
				return
			}
			if _, _, err := session.Open(convID); err != nil {
				client.log.Warn("open conversation", sl.Err(err))
				return
			}
			if cancelMessages != nil {
				cancelMessages()
			}
			if cancelTyping != nil {
				cancelTyping()
			}
			cancelMessages, _ = session.WatchMessages(func() {
				client.Push(&Event{Type: "new_message", Data: map[string]string{
					"conversation_id": req.ConversationID,
				}})
			})
			cancelTyping, _ = session.WatchRemoteTyping(func(signal entity.TypingSignal) {
				client.Push(&Event{Type: "typing", Data: signal})
			})

		case "typing":
			var req struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return
			}
			session.SetLocalTyping(req.Content)

		case "mark_read":
			if convID, ok := session.Selected(); ok {
				if err := deps.Conversations.MarkMessagesRead(convID, entity.RoleAgent); err != nil {
					client.log.Warn("mark read", sl.Err(err))
				}
			}
		}
	}
	client.onClose = session.Close

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// ServeCustomer handles WebSocket upgrade requests from the storefront widget.
// The conversation id is the widget's capability; an unknown id means the
// conversation was deleted and the widget should fall back to the intake form.
func ServeCustomer(hub *Hub, deps chat.Deps, log *slog.Logger, w http.ResponseWriter, r *http.Request, conversationID string) {
	convID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}

	session := chat.NewCustomerSession(deps)
	if _, err := session.Resume(convID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
		} else {
			http.Error(w, "conversation unavailable", http.StatusInternalServerError)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		topics: map[string]bool{
			TopicAgentPresence: true,
		},
		log: log.With(sl.Module("ws.customer"), slog.String("conversation", conversationID)),
	}

	presence := deps.Presence.Join(entity.RoleCustomer, conversationID)

	session.WatchMessages(func() {
		client.Push(&Event{Type: "new_message", Data: map[string]string{
			"conversation_id": conversationID,
		}})
	})
	session.WatchRemoteTyping(func(signal entity.TypingSignal) {
		client.Push(&Event{Type: "typing", Data: signal})
	})

	client.onEvent = func(eventType string, data json.RawMessage) {
		switch eventType {
		case "typing":
			var req struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return
			}
			session.SetLocalTyping(req.Content)

		case "mark_read":
			if err := deps.Conversations.MarkMessagesRead(convID, entity.RoleCustomer); err != nil {
				client.log.Warn("mark read", sl.Err(err))
			}
		}
	}
	client.onClose = func() {
		presence.Leave()
		session.Close()
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}
