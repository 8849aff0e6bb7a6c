package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// fakeBackend scripts GetMessages per poll attempt and counts calls.
type fakeBackend struct {
	mu sync.Mutex

	sendErr    error
	sendCalls  int
	fetchCalls int
	chatCalls  int
	// script returns the messages (or error) for the nth GetMessages call,
	// counted from 1. A nil script always returns no messages.
	script func(call int) ([]store.Message, error)
}

func (f *fakeBackend) CreateChat(ctx context.Context, userID, title, model string, initialMessage *string) (*store.Chat, []store.Message, error) {
	f.mu.Lock()
	f.chatCalls++
	id := fmt.Sprintf("c%d", f.chatCalls)
	f.mu.Unlock()

	if title == "" {
		title = store.DefaultChatTitle
	}
	now := time.Now()
	chat := &store.Chat{ID: id, Title: title, UserID: userID, CreatedAt: now, UpdatedAt: now}
	var messages []store.Message
	if initialMessage != nil && *initialMessage != "" {
		chat.Title = *initialMessage
		messages = []store.Message{{
			ID: "m1", ChatID: chat.ID, Type: store.MessageTypeUser, Content: *initialMessage, Timestamp: now,
		}}
	}
	return chat, messages, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, chatID, userID, content string, attachments []store.FileAttachment) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &store.Message{
		ID: "m-sent", ChatID: chatID, Type: store.MessageTypeUser, Content: content, Timestamp: time.Now(),
	}, nil
}

func (f *fakeBackend) ListChats(ctx context.Context, userID string) ([]store.Chat, error) {
	return nil, nil
}

func (f *fakeBackend) GetMessages(ctx context.Context, chatID string) ([]store.Message, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	script := f.script
	f.mu.Unlock()
	if script == nil {
		return nil, nil
	}
	return script(call)
}

func (f *fakeBackend) DeleteChat(ctx context.Context, chatID, userID string) (bool, error) {
	return true, nil
}

func (f *fakeBackend) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func newTestClient(backend Backend) *ChatClient {
	c := NewChatClient(backend, "u1", zap.NewNop())
	c.pollInterval = time.Millisecond
	return c
}

func TestSubscribeCalledImmediately(t *testing.T) {
	c := newTestClient(&fakeBackend{})

	var states []ChatState
	unsubscribe := c.Subscribe(func(s ChatState) { states = append(states, s) })
	require.Len(t, states, 1)
	assert.False(t, states[0].Thinking)

	unsubscribe()
	require.NoError(t, c.LoadChats(context.Background()))
	assert.Len(t, states, 1, "unsubscribed listener must not fire")
}

func TestSendMessageEmptyIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend)

	require.NoError(t, c.SendMessage(context.Background(), "c1", "   ", nil))
	assert.Equal(t, 0, backend.sendCalls)
	assert.False(t, c.State().Thinking)
}

func TestSendMessageFailureSetsError(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("boom")}
	c := newTestClient(backend)

	err := c.SendMessage(context.Background(), "c1", "hello", nil)
	require.Error(t, err)

	state := c.State()
	assert.False(t, state.Thinking)
	assert.Equal(t, "Failed to send message", state.LastError)
	assert.Equal(t, 0, backend.fetches(), "no polling after a failed send")
}

func TestPollStopsOnAssistantReply(t *testing.T) {
	replyAt := time.Now().Add(time.Hour)
	backend := &fakeBackend{}
	backend.script = func(call int) ([]store.Message, error) {
		if call < 3 {
			return nil, nil
		}
		return []store.Message{
			{ID: "m1", Type: store.MessageTypeUser, Timestamp: time.Now()},
			{ID: "m2", Type: store.MessageTypeAssistant, Content: "reply", Timestamp: replyAt},
		}, nil
	}
	c := newTestClient(backend)

	_, err := c.CreateChat(context.Background(), "", "demo", nil)
	require.NoError(t, err)
	require.NoError(t, c.SendMessage(context.Background(), "c1", "hello", nil))

	require.Eventually(t, func() bool { return !c.State().Thinking }, time.Second, time.Millisecond)

	state := c.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "reply", state.Messages[1].Content)

	// Polling stopped on the hit.
	settled := backend.fetches()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, backend.fetches())
	assert.Equal(t, 3, settled)
}

func TestPollIgnoresStaleAssistantMessages(t *testing.T) {
	// An assistant message older than the sent message must not stop the
	// poll; only a strictly newer one does.
	stale := time.Now().Add(-time.Hour)
	fresh := time.Now().Add(time.Hour)
	backend := &fakeBackend{}
	backend.script = func(call int) ([]store.Message, error) {
		messages := []store.Message{{ID: "old", Type: store.MessageTypeAssistant, Timestamp: stale}}
		if call >= 4 {
			messages = append(messages, store.Message{ID: "new", Type: store.MessageTypeAssistant, Timestamp: fresh})
		}
		return messages, nil
	}
	c := newTestClient(backend)

	require.NoError(t, c.SendMessage(context.Background(), "c1", "hello", nil))
	require.Eventually(t, func() bool { return !c.State().Thinking }, time.Second, time.Millisecond)
	assert.Equal(t, 4, backend.fetches())
}

func TestPollSwallowsFetchErrors(t *testing.T) {
	backend := &fakeBackend{}
	backend.script = func(call int) ([]store.Message, error) {
		if call < 3 {
			return nil, errors.New("transient")
		}
		return []store.Message{{ID: "m", Type: store.MessageTypeAssistant, Timestamp: time.Now().Add(time.Hour)}}, nil
	}
	c := newTestClient(backend)

	require.NoError(t, c.SendMessage(context.Background(), "c1", "hello", nil))
	require.Eventually(t, func() bool { return !c.State().Thinking }, time.Second, time.Millisecond)

	state := c.State()
	assert.Empty(t, state.LastError, "fetch errors must not surface")
}

func TestPollGivesUpAfterBudget(t *testing.T) {
	backend := &fakeBackend{} // never returns an assistant message
	c := newTestClient(backend)
	c.pollAttempts = 5

	require.NoError(t, c.SendMessage(context.Background(), "c1", "hello", nil))
	require.Eventually(t, func() bool { return !c.State().Thinking }, time.Second, time.Millisecond)

	// The budget bounds the attempts, and giving up is silent.
	assert.Equal(t, 5, backend.fetches())
	assert.Empty(t, c.State().LastError)
}

func TestCreateChatWithoutMessageDoesNotPoll(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend)

	chat, err := c.CreateChat(context.Background(), "", "demo", nil)
	require.NoError(t, err)

	state := c.State()
	assert.False(t, state.Thinking)
	require.NotNil(t, state.Current)
	assert.Equal(t, chat.ID, state.Current.ID)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, backend.fetches())
}

func TestCreateChatWithInitialMessagePolls(t *testing.T) {
	backend := &fakeBackend{}
	backend.script = func(call int) ([]store.Message, error) {
		return []store.Message{
			{ID: "m1", Type: store.MessageTypeUser, Timestamp: time.Now().Add(-time.Minute)},
			{ID: "m2", Type: store.MessageTypeAssistant, Timestamp: time.Now().Add(time.Hour)},
		}, nil
	}
	c := newTestClient(backend)

	initial := "hello"
	_, err := c.CreateChat(context.Background(), "", "demo", &initial)
	require.NoError(t, err)
	assert.True(t, c.State().Thinking)

	require.Eventually(t, func() bool { return !c.State().Thinking }, time.Second, time.Millisecond)
	assert.Len(t, c.State().Messages, 2)
}

func TestSendMessageAppendsTempMessage(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend)

	_, err := c.CreateChat(context.Background(), "", "demo", nil)
	require.NoError(t, err)
	require.NoError(t, c.SendMessage(context.Background(), "c1", "hello", nil))

	state := c.State()
	require.NotEmpty(t, state.Messages)
	last := state.Messages[len(state.Messages)-1]
	assert.Contains(t, last.ID, "temp-")
	assert.Equal(t, "hello", last.Content)
}

func TestDeleteChatLeavesEarlierSnapshotsIntact(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend)

	_, err := c.CreateChat(context.Background(), "first", "demo", nil)
	require.NoError(t, err)
	second, err := c.CreateChat(context.Background(), "second", "demo", nil)
	require.NoError(t, err)
	_, err = c.CreateChat(context.Background(), "third", "demo", nil)
	require.NoError(t, err)

	var received []ChatState
	c.Subscribe(func(s ChatState) { received = append(received, s) })
	before := c.State()
	require.Len(t, before.Chats, 3)

	require.NoError(t, c.DeleteChat(context.Background(), second.ID))

	// Snapshots handed out before the delete keep their contents.
	assert.Equal(t, []string{"third", "second", "first"},
		[]string{before.Chats[0].Title, before.Chats[1].Title, before.Chats[2].Title})
	assert.Equal(t, "second", received[0].Chats[1].Title)

	after := c.State()
	require.Len(t, after.Chats, 2)
	assert.Equal(t, "third", after.Chats[0].Title)
	assert.Equal(t, "first", after.Chats[1].Title)
}

func TestDeleteChatClearsSelection(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend)

	chat, err := c.CreateChat(context.Background(), "", "demo", nil)
	require.NoError(t, err)
	require.NoError(t, c.DeleteChat(context.Background(), chat.ID))

	state := c.State()
	assert.Nil(t, state.Current)
	assert.Empty(t, state.Messages)
	assert.Empty(t, state.Chats)
	assert.False(t, state.Thinking)
}
