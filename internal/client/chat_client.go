package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollAttempts = 20
)

// ChatState is the full client state broadcast to listeners on every change.
type ChatState struct {
	Chats    []store.Chat
	Current  *store.Chat
	Messages []store.Message
	// Thinking is set while an assistant reply is awaited.
	Thinking  bool
	LastError string
}

type Listener func(ChatState)

// ChatClient holds chat state for one user and reconciles the asynchronous
// arrival of assistant replies by polling the backend. There is no push
// channel; bounded polling stands in for one.
type ChatClient struct {
	backend Backend
	userID  string
	logger  *zap.Logger

	mu        sync.Mutex
	state     ChatState
	listeners map[int]Listener
	nextID    int

	pollInterval time.Duration
	pollAttempts int
}

func NewChatClient(backend Backend, userID string, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		backend:      backend,
		userID:       userID,
		logger:       logger,
		listeners:    make(map[int]Listener),
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
}

// Subscribe registers a listener, calls it immediately with the current
// state, and returns its unsubscribe function.
func (c *ChatClient) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	snapshot := c.state
	c.mu.Unlock()

	l(snapshot)
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// State returns a snapshot of the current state.
func (c *ChatClient) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// update applies a mutation and synchronously broadcasts the new state.
func (c *ChatClient) update(mutate func(*ChatState)) {
	c.mu.Lock()
	mutate(&c.state)
	snapshot := c.state
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// LoadChats refreshes the chat list for the client's user.
func (c *ChatClient) LoadChats(ctx context.Context) error {
	chats, err := c.backend.ListChats(ctx, c.userID)
	if err != nil {
		return err
	}
	c.update(func(s *ChatState) { s.Chats = chats })
	return nil
}

// CreateChat creates a chat and selects it. When an initial message is
// given the client marks itself thinking and starts polling for the reply;
// a message-less chat starts no polling.
func (c *ChatClient) CreateChat(ctx context.Context, title, model string, initialMessage *string) (*store.Chat, error) {
	chat, messages, err := c.backend.CreateChat(ctx, c.userID, title, model, initialMessage)
	if err != nil {
		return nil, err
	}

	hasInitial := initialMessage != nil && strings.TrimSpace(*initialMessage) != ""
	c.update(func(s *ChatState) {
		s.Chats = append([]store.Chat{*chat}, s.Chats...)
		s.Current = chat
		s.Messages = messages
		s.Thinking = hasInitial
		s.LastError = ""
	})

	if hasInitial {
		lastTS := chat.CreatedAt
		if len(messages) > 0 {
			lastTS = messages[len(messages)-1].Timestamp
		}
		go c.pollForReply(chat.ID, lastTS)
	}
	return chat, nil
}

// SendMessage optimistically appends a locally-built user message (with a
// temporary id that is never reconciled against the server-assigned one),
// submits it, and polls for the assistant reply. An empty message with no
// attachments is a no-op.
func (c *ChatClient) SendMessage(ctx context.Context, chatID, content string, attachments []store.FileAttachment) error {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil
	}

	temp := store.Message{
		ID:          "temp-" + uuid.NewString(),
		ChatID:      chatID,
		Type:        store.MessageTypeUser,
		Content:     content,
		Attachments: attachments,
		Timestamp:   time.Now(),
	}
	c.update(func(s *ChatState) {
		if s.Current != nil && s.Current.ID == chatID {
			s.Messages = append(s.Messages, temp)
		}
		s.Thinking = true
		s.LastError = ""
	})

	persisted, err := c.backend.SendMessage(ctx, chatID, c.userID, content, attachments)
	if err != nil {
		c.logger.Warn("failed to send message", zap.String("chatId", chatID), zap.Error(err))
		c.update(func(s *ChatState) {
			s.Thinking = false
			s.LastError = "Failed to send message"
		})
		return err
	}

	go c.pollForReply(chatID, persisted.Timestamp)
	return nil
}

// pollForReply polls the message list on a fixed interval, up to a bounded
// number of attempts, and stops on the first assistant message strictly
// newer than lastTS. Fetch errors are swallowed and polling continues.
// Exhausting the budget clears the thinking indicator without raising an
// error. Two messages landing on the same timestamp are not tie-broken.
func (c *ChatClient) pollForReply(chatID string, lastTS time.Time) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		time.Sleep(c.pollInterval)

		messages, err := c.backend.GetMessages(context.Background(), chatID)
		if err != nil {
			continue
		}

		found := false
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Type == store.MessageTypeAssistant && messages[i].Timestamp.After(lastTS) {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		c.update(func(s *ChatState) {
			if s.Current != nil && s.Current.ID == chatID {
				s.Messages = messages
			}
			s.Thinking = false
		})
		return
	}

	c.update(func(s *ChatState) { s.Thinking = false })
}

// SelectChat swaps the current chat context and loads its full history.
func (c *ChatClient) SelectChat(ctx context.Context, chat store.Chat) error {
	messages, err := c.backend.GetMessages(ctx, chat.ID)
	if err != nil {
		return err
	}
	c.update(func(s *ChatState) {
		s.Current = &chat
		s.Messages = messages
	})
	return nil
}

// DeleteChat removes a chat; deleting the active chat clears the current
// selection and message list.
func (c *ChatClient) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := c.backend.DeleteChat(ctx, chatID, c.userID); err != nil {
		return err
	}
	c.update(func(s *ChatState) {
		// Filter into a fresh slice: snapshots handed to listeners share the
		// old backing array and must not see the compaction.
		kept := make([]store.Chat, 0, len(s.Chats))
		for _, chat := range s.Chats {
			if chat.ID != chatID {
				kept = append(kept, chat)
			}
		}
		s.Chats = kept
		if s.Current != nil && s.Current.ID == chatID {
			s.Current = nil
			s.Messages = nil
			s.Thinking = false
		}
	})
	return nil
}
