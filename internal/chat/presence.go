package chat

import (
	"sort"
	"sync"
	"time"

	"ShopDesk/entity"
)

// PresenceTracker answers "who of this role is connected right now" without
// ever touching durable storage. A record lives exactly as long as the handle
// that created it; the transport ties handle lifetime to the connection, so a
// crashed client disappears within the heartbeat timeout.
type PresenceTracker struct {
	mu       sync.Mutex
	members  map[string]map[*PresenceHandle]entity.PresenceRecord
	nextSub  int
	watchers map[string]map[int]func([]entity.PresenceRecord)
}

// PresenceHandle is one participant's claim to being online.
type PresenceHandle struct {
	tracker *PresenceTracker
	role    string
	once    sync.Once
}

// NewPresenceTracker creates an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		members:  make(map[string]map[*PresenceHandle]entity.PresenceRecord),
		watchers: make(map[string]map[int]func([]entity.PresenceRecord)),
	}
}

// Join establishes ephemeral membership for one connection. Concurrent joins
// under the same role are tracked independently so the console can show the
// full roster, not just a boolean.
func (t *PresenceTracker) Join(role, participantID string) *PresenceHandle {
	handle := &PresenceHandle{tracker: t, role: role}

	t.mu.Lock()
	if t.members[role] == nil {
		t.members[role] = make(map[*PresenceHandle]entity.PresenceRecord)
	}
	t.members[role][handle] = entity.PresenceRecord{
		ParticipantID: participantID,
		Role:          role,
		OnlineSince:   time.Now(),
	}
	t.mu.Unlock()

	t.broadcast(role)
	return handle
}

// Leave withdraws the membership. Safe to call more than once; the transport
// calls it on disconnect so an ungraceful drop resolves to the same state.
func (h *PresenceHandle) Leave() {
	h.once.Do(func() {
		t := h.tracker
		t.mu.Lock()
		delete(t.members[h.role], h)
		if len(t.members[h.role]) == 0 {
			delete(t.members, h.role)
		}
		t.mu.Unlock()

		t.broadcast(h.role)
	})
}

// Roster returns the current records for a role, oldest joins first.
func (t *PresenceTracker) Roster(role string) []entity.PresenceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rosterLocked(role)
}

func (t *PresenceTracker) rosterLocked(role string) []entity.PresenceRecord {
	roster := make([]entity.PresenceRecord, 0, len(t.members[role]))
	for _, rec := range t.members[role] {
		roster = append(roster, rec)
	}
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].OnlineSince.Before(roster[j].OnlineSince)
	})
	return roster
}

// AnyOnline reports whether at least one participant of the role is connected.
func (t *PresenceTracker) AnyOnline(role string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members[role]) > 0
}

// Watch registers fn for roster changes of a role. The current roster is
// delivered synchronously before Watch returns. Returns a cancel function.
func (t *PresenceTracker) Watch(role string, fn func([]entity.PresenceRecord)) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	if t.watchers[role] == nil {
		t.watchers[role] = make(map[int]func([]entity.PresenceRecord))
	}
	t.watchers[role][id] = fn
	initial := t.rosterLocked(role)
	t.mu.Unlock()

	fn(initial)

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.watchers[role], id)
	}
}

func (t *PresenceTracker) broadcast(role string) {
	t.mu.Lock()
	roster := t.rosterLocked(role)
	listeners := make([]func([]entity.PresenceRecord), 0, len(t.watchers[role]))
	for _, fn := range t.watchers[role] {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(roster)
	}
}
