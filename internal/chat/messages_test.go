package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

func TestMessageStoreAppendAssignsIncreasingTimestamps(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "hello", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	messages, err := env.deps.Messages.ListOrdered(convID)
	require.NoError(t, err)
	require.Len(t, messages, 20)

	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt),
			"message %d not strictly after its predecessor", i)
	}
}

func TestMessageStoreAppendRejectsEmpty(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	_, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "   ", nil)
	assert.ErrorIs(t, err, entity.ErrValidation)

	messages, err := env.deps.Messages.ListOrdered(convID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageStoreAppendAllowsAttachmentOnly(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	att := entity.Attachment{FileID: primitive.NewObjectID(), Filename: "receipt.pdf"}
	msg, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "", []entity.Attachment{att})
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", msg.Attachments[0].Filename)
}

func TestMessageStoreMarkReadFlipsOnlyOtherParty(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	_, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "from customer", nil)
	require.NoError(t, err)
	_, err = env.deps.Messages.Append(convID, entity.RoleAgent, "alice", "from agent", nil)
	require.NoError(t, err)

	changed, err := env.deps.Messages.MarkRead(convID, entity.RoleAgent)
	require.NoError(t, err)
	assert.True(t, changed)

	messages, err := env.deps.Messages.ListOrdered(convID)
	require.NoError(t, err)
	assert.True(t, messages[0].IsRead, "customer message should be read by the agent")
	assert.False(t, messages[1].IsRead, "agent's own message must stay untouched")
}

func TestMessageStoreMarkReadIdempotent(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()

	_, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "hello", nil)
	require.NoError(t, err)

	changed, err := env.deps.Messages.MarkRead(convID, entity.RoleAgent)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = env.deps.Messages.MarkRead(convID, entity.RoleAgent)
	require.NoError(t, err)
	assert.False(t, changed, "second mark must be a no-op")
}

func TestMessageStoreSubscribeNotifiesOnAppend(t *testing.T) {
	env := newTestEnv(entity.AutoReplySettings{})
	convID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	var mu sync.Mutex
	fired := 0
	cancel := env.deps.Messages.Subscribe(convID, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	_, err := env.deps.Messages.Append(convID, entity.RoleCustomer, "", "one", nil)
	require.NoError(t, err)
	_, err = env.deps.Messages.Append(other, entity.RoleCustomer, "", "elsewhere", nil)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 1, fired, "only the watched conversation should notify")
	mu.Unlock()

	cancel()
	_, err = env.deps.Messages.Append(convID, entity.RoleCustomer, "", "two", nil)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 1, fired, "cancelled subscription must not fire")
	mu.Unlock()
}
