package chat

import (
	"strings"
	"sync"
	"time"

	"ShopDesk/entity"
)

// TypingChannel is a best-effort, per-conversation broadcast of typing intent.
// Nothing is persisted and no history is replayed: a late joiner only ever
// sees the current state. The channel is logically two one-way signals on one
// topic, partitioned by role, so a party never sees its own typing echoed back.
type TypingChannel struct {
	mu       sync.Mutex
	state    map[string]map[string]entity.TypingSignal // convID -> role -> latest
	nextSub  int
	watchers map[string]map[int]typingWatcher
}

type typingWatcher struct {
	role string
	fn   func(entity.TypingSignal)
}

// NewTypingChannel creates an empty channel.
func NewTypingChannel() *TypingChannel {
	return &TypingChannel{
		state:    make(map[string]map[string]entity.TypingSignal),
		watchers: make(map[string]map[int]typingWatcher),
	}
}

// SetTyping broadcasts the party's typing state immediately. Latest wins.
func (c *TypingChannel) SetTyping(convID, party, role string, isTyping bool) {
	signal := entity.TypingSignal{
		ConversationID: convID,
		Party:          party,
		Role:           role,
		IsTyping:       isTyping,
	}

	c.mu.Lock()
	if c.state[convID] == nil {
		c.state[convID] = make(map[string]entity.TypingSignal)
	}
	c.state[convID][role] = signal
	if !isTyping {
		// Idle is the implicit default; no need to remember it.
		delete(c.state[convID], role)
		if len(c.state[convID]) == 0 {
			delete(c.state, convID)
		}
	}
	listeners := make([]func(entity.TypingSignal), 0)
	for _, w := range c.watchers[convID] {
		if w.role != role {
			listeners = append(listeners, w.fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(signal)
	}
}

// Watch subscribes to the *other* role's typing state in a conversation.
// The remote party's current state, if any, is delivered synchronously.
// Returns a cancel function.
func (c *TypingChannel) Watch(convID, myRole string, fn func(entity.TypingSignal)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.watchers[convID] == nil {
		c.watchers[convID] = make(map[int]typingWatcher)
	}
	c.watchers[convID][id] = typingWatcher{role: myRole, fn: fn}

	var initial *entity.TypingSignal
	if current, ok := c.state[convID][entity.OtherRole(myRole)]; ok {
		initial = &current
	}
	c.mu.Unlock()

	if initial != nil {
		fn(*initial)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers[convID], id)
		if len(c.watchers[convID]) == 0 {
			delete(c.watchers, convID)
		}
	}
}

// Typist runs the sender-side typing state machine for one party in one
// conversation: Idle until non-empty input, then Typing with a quiet-period
// timer restarted on every keystroke. The timer expiring, a send, an explicit
// stop or Close all revert to Idle with a final false broadcast, so a stray
// "typing" can never outlive the party by more than the quiet period.
type Typist struct {
	channel *TypingChannel
	convID  string
	party   string
	role    string
	quiet   time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	typing bool
	closed bool
}

// NewTypist creates the machine in the Idle state.
func NewTypist(channel *TypingChannel, convID, party, role string, quiet time.Duration) *Typist {
	return &Typist{
		channel: channel,
		convID:  convID,
		party:   party,
		role:    role,
		quiet:   quiet,
	}
}

// Input feeds the current compose-box content. Non-empty content enters or
// refreshes Typing; empty content (box cleared) stops immediately.
func (t *Typist) Input(content string) {
	if strings.TrimSpace(content) == "" {
		t.Stop()
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	wasTyping := t.typing
	t.typing = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.quiet, t.Stop)
	t.mu.Unlock()

	if !wasTyping {
		t.channel.SetTyping(t.convID, t.party, t.role, true)
	}
}

// Stop reverts to Idle, broadcasting false if the party was mid-typing.
// Called on send, on explicit stop and by the quiet-period timer.
func (t *Typist) Stop() {
	t.mu.Lock()
	wasTyping := t.typing
	t.typing = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	if wasTyping {
		t.channel.SetTyping(t.convID, t.party, t.role, false)
	}
}

// Close cancels the timer and emits the final false if needed. The machine
// accepts no further input afterwards; must be called on unmount/disconnect.
func (t *Typist) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.Stop()
}
