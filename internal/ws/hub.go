package ws

import (
	"encoding/json"
	"log/slog"

	"ShopDesk/entity"
	"ShopDesk/internal/chat"
	"ShopDesk/internal/lib/sl"
)

// Event is a WebSocket event pushed to connected clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "typing", "presence", "conversations_changed"
	Data interface{} `json:"data,omitempty"`
}

// Topics are how clients opt into the shared broadcast planes. Conversation-
// scoped traffic (messages, typing) goes through per-connection session
// watches instead, which keeps the cross-party partitioning in one place.
const (
	TopicConversations = "conversations"
	TopicAgentPresence = "presence:agent"
)

// Hub maintains the set of active WebSocket clients and fans topic events out
// to the ones subscribed. The clients map is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *frame
	register   chan *Client
	unregister chan *Client
	log        *slog.Logger
}

type frame struct {
	topic string
	data  []byte
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *frame, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case f := <-h.broadcast:
			for client := range h.clients {
				if !client.topics[f.topic] {
					continue
				}
				select {
				case client.send <- f.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues an event for every client subscribed to the topic.
func (h *Hub) Broadcast(topic string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("marshal ws event", sl.Err(err))
		return
	}
	h.broadcast <- &frame{topic: topic, data: data}
}

// Bind wires the shared stores and channels into the hub's topics:
// conversation list changes reach console clients, and the agent roster
// reaches everyone who cares whether someone is online.
func Bind(h *Hub, conversations *chat.ConversationStore, presence *chat.PresenceTracker) {
	conversations.Subscribe(func() {
		h.Broadcast(TopicConversations, &Event{Type: "conversations_changed"})
	})

	presence.Watch(entity.RoleAgent, func(roster []entity.PresenceRecord) {
		h.Broadcast(TopicAgentPresence, &Event{
			Type: "presence",
			Data: map[string]interface{}{
				"online": len(roster) > 0,
				"roster": roster,
			},
		})
	})
}
