package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ShopDesk/entity"
)

func TestPresenceJoinLeave(t *testing.T) {
	tracker := NewPresenceTracker()

	assert.False(t, tracker.AnyOnline(entity.RoleAgent))

	alice := tracker.Join(entity.RoleAgent, "alice")
	bob := tracker.Join(entity.RoleAgent, "bob")

	assert.True(t, tracker.AnyOnline(entity.RoleAgent))
	roster := tracker.Roster(entity.RoleAgent)
	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].ParticipantID, "oldest join first")

	alice.Leave()
	roster = tracker.Roster(entity.RoleAgent)
	require.Len(t, roster, 1)
	assert.Equal(t, "bob", roster[0].ParticipantID)

	bob.Leave()
	assert.False(t, tracker.AnyOnline(entity.RoleAgent))
}

func TestPresenceLeaveIsIdempotent(t *testing.T) {
	tracker := NewPresenceTracker()

	h := tracker.Join(entity.RoleAgent, "alice")
	tracker.Join(entity.RoleAgent, "bob").Leave()

	h.Leave()
	h.Leave() // explicit leave followed by the disconnect hook

	assert.False(t, tracker.AnyOnline(entity.RoleAgent))
}

func TestPresenceRolesAreIndependent(t *testing.T) {
	tracker := NewPresenceTracker()

	tracker.Join(entity.RoleCustomer, "conv-1")
	assert.True(t, tracker.AnyOnline(entity.RoleCustomer))
	assert.False(t, tracker.AnyOnline(entity.RoleAgent))
}

func TestPresenceSameAgentTwoConnections(t *testing.T) {
	tracker := NewPresenceTracker()

	first := tracker.Join(entity.RoleAgent, "alice")
	second := tracker.Join(entity.RoleAgent, "alice")

	first.Leave()
	assert.True(t, tracker.AnyOnline(entity.RoleAgent), "second tab still holds presence")

	second.Leave()
	assert.False(t, tracker.AnyOnline(entity.RoleAgent))
}

func TestPresenceWatchDeliversInitialAndChanges(t *testing.T) {
	tracker := NewPresenceTracker()
	tracker.Join(entity.RoleAgent, "alice")

	var rosters [][]entity.PresenceRecord
	cancel := tracker.Watch(entity.RoleAgent, func(roster []entity.PresenceRecord) {
		rosters = append(rosters, roster)
	})

	require.Len(t, rosters, 1, "current roster delivered synchronously")
	assert.Len(t, rosters[0], 1)

	bob := tracker.Join(entity.RoleAgent, "bob")
	require.Len(t, rosters, 2)
	assert.Len(t, rosters[1], 2)

	cancel()
	bob.Leave()
	assert.Len(t, rosters, 2, "cancelled watch must not fire")
}
