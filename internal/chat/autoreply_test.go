package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ShopDesk/entity"
)

func autoReplyOn() entity.AutoReplySettings {
	return entity.AutoReplySettings{
		Enabled:      true,
		Message:      "All our agents are offline right now.",
		DelaySeconds: 0, // fires on the next timer tick
	}
}

func waitForMessages(t *testing.T, env *testEnv, conv *entity.Conversation, n int) []entity.Message {
	t.Helper()
	var messages []entity.Message
	require.Eventually(t, func() bool {
		var err error
		messages, err = env.deps.Messages.ListOrdered(conv.ID)
		return err == nil && len(messages) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return messages
}

func TestAutoReplyFiresWhenNoAgentOnline(t *testing.T) {
	env := newTestEnv(autoReplyOn())

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	messages := waitForMessages(t, env, conv, 2)
	reply := messages[len(messages)-1]
	assert.Equal(t, entity.RoleAgent, reply.Sender)
	assert.Empty(t, reply.SenderID, "canned reply is system-authored")
	assert.True(t, reply.System())
	assert.Equal(t, autoReplyOn().Message, reply.Content)
}

func TestAutoReplyDoesNotMoveUnreadCounters(t *testing.T) {
	env := newTestEnv(autoReplyOn())

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	waitForMessages(t, env, conv, 2)

	got, err := env.deps.Conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadCustomer, "only human sends move unread counters")
}

func TestAutoReplySkippedWhenAgentOnline(t *testing.T) {
	env := newTestEnv(autoReplyOn())
	env.deps.Presence.Join(entity.RoleAgent, "alice")

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	time.Sleep(100 * time.Millisecond)
	messages, err := env.deps.Messages.ListOrdered(conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1, "no canned reply while an agent is online")
}

func TestAutoReplySkippedWhenDisabled(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{Enabled: false, Message: "x"})

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	time.Sleep(100 * time.Millisecond)
	messages, err := env.deps.Messages.ListOrdered(conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestAutoReplyArmsAtMostOncePerConversation(t *testing.T) {
	env := newTestEnv(autoReplyOn())

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)
	env.deps.AutoReply.ConversationCreated(conv.ID)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	waitForMessages(t, env, conv, 2)
	time.Sleep(100 * time.Millisecond)

	messages, err := env.deps.Messages.ListOrdered(conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2, "duplicate arming must not inject twice")
}

func TestAutoReplySnapshotIgnoresLaterAgentArrival(t *testing.T) {
	cfg := autoReplyOn()
	cfg.DelaySeconds = 0
	env := newTestEnv(cfg)

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	// An agent coming online after arming does not disarm the timer.
	env.deps.Presence.Join(entity.RoleAgent, "alice")

	messages := waitForMessages(t, env, conv, 2)
	assert.True(t, messages[len(messages)-1].System())
}

func TestAutoReplySuppressedAfterAgentReplyWhenConfigured(t *testing.T) {
	cfg := autoReplyOn()
	cfg.SuppressAfterAgentReply = true
	env := newTestEnv(cfg)

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)

	// Agent replies before the timer fires.
	_, err = env.deps.Send(conv.ID, entity.RoleAgent, "alice", "I'm here", nil)
	require.NoError(t, err)

	env.deps.AutoReply.ConversationCreated(conv.ID)

	time.Sleep(100 * time.Millisecond)
	messages, err := env.deps.Messages.ListOrdered(conv.ID)
	require.NoError(t, err)
	for _, msg := range messages {
		assert.False(t, msg.System(), "suppression must swallow the canned reply")
	}
}

func TestAutoReplySettingsFallBackToDefaults(t *testing.T) {
	defaults := autoReplyOn()
	env := newTestEnv(defaults)

	got := env.deps.AutoReply.Settings()
	assert.Equal(t, defaults, got)

	stored := entity.AutoReplySettings{Enabled: true, Message: "custom", DelaySeconds: 120}
	require.NoError(t, env.settings.SaveAutoReplySettings(stored))
	assert.Equal(t, stored, env.deps.AutoReply.Settings())
}

func TestAutoReplyUsesSnapshotOfSettingsAtArming(t *testing.T) {
	env := newTestEnv(autoReplyOn())

	conv, err := env.deps.Conversations.Create(validIntake())
	require.NoError(t, err)
	env.deps.AutoReply.ConversationCreated(conv.ID)

	// Changing the message after arming must not affect the armed timer.
	require.NoError(t, env.settings.SaveAutoReplySettings(entity.AutoReplySettings{
		Enabled: true, Message: "changed mid-flight", DelaySeconds: 0,
	}))

	messages := waitForMessages(t, env, conv, 2)
	assert.Equal(t, autoReplyOn().Message, messages[len(messages)-1].Content)
}
