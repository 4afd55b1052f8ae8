package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ShopDesk/entity"
	"ShopDesk/internal/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, topics ...string) *Client {
	subscribed := make(map[string]bool, len(topics))
	for _, topic := range topics {
		subscribed[topic] = true
	}
	return &Client{
		hub:    hub,
		send:   make(chan []byte, 16),
		topics: subscribed,
		log:    testLogger(),
	}
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastFansOutByTopic(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	console := newTestClient(hub, TopicConversations, TopicAgentPresence)
	widget := newTestClient(hub, TopicAgentPresence)
	hub.register <- console
	hub.register <- widget

	hub.Broadcast(TopicConversations, &Event{Type: "conversations_changed"})

	event := receiveEvent(t, console)
	assert.Equal(t, "conversations_changed", event.Type)
	assertNoEvent(t, widget)

	hub.Broadcast(TopicAgentPresence, &Event{Type: "presence"})
	assert.Equal(t, "presence", receiveEvent(t, console).Type)
	assert.Equal(t, "presence", receiveEvent(t, widget).Type)
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	client := newTestClient(hub, TopicConversations)
	hub.register <- client
	hub.unregister <- client

	hub.Broadcast(TopicConversations, &Event{Type: "conversations_changed"})

	select {
	case _, ok := <-client.send:
		assert.False(t, ok, "send channel should be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestBindPublishesAgentPresence(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	presence := chat.NewPresenceTracker()
	conversations := chat.NewConversationStore(nil, nil, testLogger())
	Bind(hub, conversations, presence)

	client := newTestClient(hub, TopicAgentPresence)
	hub.register <- client

	handle := presence.Join(entity.RoleAgent, "alice")
	waitForOnline(t, client, true)

	handle.Leave()
	waitForOnline(t, client, false)
}

// waitForOnline reads presence events until the online flag matches. The
// initial roster broadcast from Bind may or may not reach the client depending
// on registration timing, so intermediate states are skipped.
func waitForOnline(t *testing.T, c *Client, want bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case raw := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(raw, &event))
			if event.Type != "presence" {
				continue
			}
			data, ok := event.Data.(map[string]interface{})
			require.True(t, ok)
			if data["online"] == want {
				return
			}
		case <-deadline:
			t.Fatalf("never saw online=%v", want)
		}
	}
}
