package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

type fakeNotifier struct {
	mu    sync.Mutex
	convs []entity.Conversation
}

func (n *fakeNotifier) AgentsOffline(conv entity.Conversation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.convs = append(n.convs, conv)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.convs)
}

// A customer writes in at night: nobody online, auto-reply delayed one second.
// The widget should show the original message plus the canned reply, and the
// console should owe exactly one unread conversation in the morning.
func TestNightShiftScenario(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{
		Enabled:      true,
		Message:      "All our agents are offline right now.",
		DelaySeconds: 1,
	})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()

	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	messages := waitForMessages(t, env, conv, 2)
	require.Len(t, messages, 2)
	assert.Equal(t, entity.RoleCustomer, messages[0].Sender)
	assert.True(t, messages[1].System())
	assert.True(t, messages[1].CreatedAt.After(messages[0].CreatedAt))

	got, err := env.deps.Conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UnreadAgent, "the canned reply owes nothing to anyone")
	assert.Equal(t, 0, got.UnreadCustomer)
}

func TestCustomerStartAlertsWhenNoAgentOnline(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	notifier := &fakeNotifier{}
	env.deps.Notifier = notifier

	customer := NewCustomerSession(env.deps)
	defer customer.Close()

	_, err := customer.Start(validIntake())
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())
}

func TestCustomerStartSkipsAlertWhenAgentOnline(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	notifier := &fakeNotifier{}
	env.deps.Notifier = notifier
	env.deps.Presence.Join(entity.RoleAgent, "alice")

	customer := NewCustomerSession(env.deps)
	defer customer.Close()

	_, err := customer.Start(validIntake())
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.count())
}

func TestCustomerResumeAfterReload(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	first := NewCustomerSession(env.deps)
	conv, err := first.Start(validIntake())
	require.NoError(t, err)
	first.Close()

	// Page reload: new session resumes from the locally stored id.
	second := NewCustomerSession(env.deps)
	defer second.Close()
	resumed, err := second.Resume(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, resumed.ID)

	messages, err := second.Messages()
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestCustomerResumeOfPurgedConversationClearsReference(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	first := NewCustomerSession(env.deps)
	conv, err := first.Start(validIntake())
	require.NoError(t, err)
	first.Close()

	require.NoError(t, env.deps.Conversations.Purge(conv.ID))

	second := NewCustomerSession(env.deps)
	defer second.Close()
	_, err = second.Resume(conv.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, ok := second.ConversationID()
	assert.False(t, ok, "local reference must be cleared, widget falls back to the form")
}

func TestCustomerSendWithoutConversationFails(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()

	_, err := customer.Send("hello?", nil)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestCustomerViewingMarksAgentMessagesRead(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	_, err = env.deps.Send(conv.ID, entity.RoleAgent, "alice", "checking now", nil)
	require.NoError(t, err)

	got, err := env.deps.Conversations.Get(conv.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.UnreadCustomer)

	_, err = customer.Messages()
	require.NoError(t, err)

	got, err = env.deps.Conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadCustomer)
}

func TestAgentSessionLifecycleTracksPresence(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	agent := NewAgentSession(env.deps, "alice")
	assert.True(t, env.deps.Presence.AnyOnline(entity.RoleAgent))

	agent.Close()
	assert.False(t, env.deps.Presence.AnyOnline(entity.RoleAgent))
}

func TestAgentOpenResetsUnreadAndMarksRead(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)
	_, err = customer.Send("any news?", nil)
	require.NoError(t, err)

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()

	opened, messages, err := agent.Open(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, opened.UnreadAgent)
	require.Len(t, messages, 2)
	for _, msg := range messages {
		assert.True(t, msg.IsRead)
	}

	got, err := env.deps.Conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadAgent)
}

func TestAgentSendRequiresSelection(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()

	_, err := agent.Send("hello", nil)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestAgentAndCustomerExchange(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()
	_, _, err = agent.Open(conv.ID)
	require.NoError(t, err)

	var notified int
	cancel, err := customer.WatchMessages(func() { notified++ })
	require.NoError(t, err)
	defer cancel()

	reply, err := agent.Send("it ships tomorrow", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", reply.SenderID)
	assert.False(t, reply.System())
	assert.GreaterOrEqual(t, notified, 1, "customer side must learn about the reply")

	messages, err := customer.Messages()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "it ships tomorrow", messages[1].Content)
}

func TestTypingFlowsBetweenSessions(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()
	_, _, err = agent.Open(conv.ID)
	require.NoError(t, err)

	var fromCustomer []entity.TypingSignal
	_, err = agent.WatchRemoteTyping(func(s entity.TypingSignal) {
		fromCustomer = append(fromCustomer, s)
	})
	require.NoError(t, err)

	customer.SetLocalTyping("I was wondering abou")
	require.Len(t, fromCustomer, 1)
	assert.True(t, fromCustomer[0].IsTyping)
	assert.Equal(t, entity.RoleCustomer, fromCustomer[0].Role)

	// Sending reverts the typing state for the remote party.
	_, err = customer.Send("I was wondering about the delivery date", nil)
	require.NoError(t, err)
	require.Len(t, fromCustomer, 2)
	assert.False(t, fromCustomer[1].IsTyping)
}

func TestCustomerWatchAgentPresence(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	_, err := customer.Start(validIntake())
	require.NoError(t, err)

	var states []bool
	customer.WatchAgentPresence(func(online bool) { states = append(states, online) })
	require.Equal(t, []bool{false}, states)

	agent := NewAgentSession(env.deps, "alice")
	assert.Equal(t, []bool{false, true}, states)

	agent.Close()
	assert.Equal(t, []bool{false, true, false}, states)
}

func TestAgentOpenSwitchesTypingConversation(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	c1 := NewCustomerSession(env.deps)
	defer c1.Close()
	conv1, err := c1.Start(validIntake())
	require.NoError(t, err)

	intake := validIntake()
	intake.Name = "Karim"
	intake.Email = "karim@example.com"
	c2 := NewCustomerSession(env.deps)
	defer c2.Close()
	conv2, err := c2.Start(intake)
	require.NoError(t, err)

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()

	_, _, err = agent.Open(conv1.ID)
	require.NoError(t, err)
	agent.SetLocalTyping("drafting a reply")

	// Switching the detail view closes the old typist with a final false.
	var inConv1 []entity.TypingSignal
	env.deps.Typing.Watch(conv1.ID.Hex(), entity.RoleCustomer, func(s entity.TypingSignal) {
		inConv1 = append(inConv1, s)
	})
	require.Len(t, inConv1, 1, "agent mid-compose in the first conversation")

	_, _, err = agent.Open(conv2.ID)
	require.NoError(t, err)

	require.Len(t, inConv1, 2)
	assert.False(t, inConv1[1].IsTyping)
}

func TestSendToResolvedConversationViaSessions(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	require.NoError(t, env.deps.Conversations.UpdateStatus(conv.ID, entity.StatusResolved))

	_, err = customer.Send("one more thing", nil)
	assert.NoError(t, err, "resolved status is advisory, messages still flow")
}

func TestSendUnknownConversationSurvivesCounterFailure(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	// No conversation record exists, so the unread bookkeeping fails, but the
	// appended message is authoritative and must be returned.
	msg, err := env.deps.Send(convID, entity.RoleCustomer, "", "orphan", nil)
	require.NoError(t, err)
	assert.Equal(t, "orphan", msg.Content)

	messages, err := env.deps.Messages.ListOrdered(convID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestMessagesKeepOrderUnderInterleavedSends(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})

	customer := NewCustomerSession(env.deps)
	defer customer.Close()
	conv, err := customer.Start(validIntake())
	require.NoError(t, err)

	agent := NewAgentSession(env.deps, "alice")
	defer agent.Close()
	_, _, err = agent.Open(conv.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = customer.Send("customer says", nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = agent.Send("agent says", nil)
		}()
	}
	wg.Wait()

	messages, err := env.deps.Messages.ListOrdered(conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 21)
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt))
	}

	// Both UIs observe the exact same order.
	fromWidget, err := customer.Messages()
	require.NoError(t, err)
	for i := range messages {
		assert.Equal(t, messages[i].ID, fromWidget[i].ID)
	}
}
