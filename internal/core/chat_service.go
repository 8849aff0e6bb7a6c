package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/ai"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// fallbackReply is persisted when response generation fails outright.
const fallbackReply = "I'm sorry, I encountered an error while processing your request."

// ChatService mediates between the HTTP surface and persisted chat state.
// Assistant replies are produced asynchronously: the user message is
// persisted and returned immediately, and the reply appears in storage once
// the generator finishes. Clients discover it by polling the message list.
type ChatService struct {
	data      *store.DataManager
	generator ai.Generator
	logger    *zap.Logger
}

func NewChatService(data *store.DataManager, generator ai.Generator, logger *zap.Logger) *ChatService {
	return &ChatService{data: data, generator: generator, logger: logger}
}

// CreateChat creates a chat and, when an initial message is supplied,
// persists it and schedules the assistant reply.
func (s *ChatService) CreateChat(userID, title, model, categoryID string, initialMessage *string) (*store.Chat, []store.Message, error) {
	chat, err := s.data.CreateChat(userID, title, model, categoryID)
	if err != nil {
		return nil, nil, err
	}

	var messages []store.Message
	if initialMessage != nil && strings.TrimSpace(*initialMessage) != "" {
		userMsg := &store.Message{
			ChatID:  chat.ID,
			Type:    store.MessageTypeUser,
			Content: *initialMessage,
		}
		persisted, err := s.data.AddMessage(userMsg)
		if err != nil {
			s.logger.Warn("failed to store first message for new chat",
				zap.String("chatId", chat.ID), zap.Error(err))
		} else {
			messages = append(messages, *persisted)
			go s.respond(chat.ID, persisted.Content, nil)
		}

		// AddMessage rewrote the title and counters.
		if updated, err := s.data.GetChatByID(chat.ID); err == nil && updated != nil {
			chat = updated
		}
	}

	return chat, messages, nil
}

// PostMessage appends a user message to an existing chat and schedules the
// assistant reply. An empty message with no attachments is rejected before
// any state change.
func (s *ChatService) PostMessage(chatID, userID, content string, attachments []store.FileAttachment) (*store.Message, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	chat, err := s.data.GetChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil || chat.UserID != userID {
		return nil, store.ErrChatNotFound
	}

	msg := &store.Message{
		ChatID:      chatID,
		Type:        store.MessageTypeUser,
		Content:     content,
		Attachments: attachments,
	}
	persisted, err := s.data.AddMessage(msg)
	if err != nil {
		return nil, err
	}

	var payload *ai.FilePayload
	if len(attachments) > 0 {
		data, err := s.data.GetFileData(attachments[0].StoredName)
		if err != nil {
			s.logger.Warn("failed to load attachment payload",
				zap.String("file", attachments[0].StoredName), zap.Error(err))
		} else {
			payload = &ai.FilePayload{
				Name:     attachments[0].Name,
				MimeType: attachments[0].MimeType,
				Data:     data,
			}
		}
	}

	go s.respond(chatID, content, payload)
	return persisted, nil
}

// respond runs on its own goroutine: it asks the generator for a reply and
// persists it as an assistant message. Generation failures degrade to a
// canned apology rather than surfacing an error to anyone.
func (s *ChatService) respond(chatID, prompt string, file *ai.FilePayload) {
	history, err := s.data.GetMessagesByChatID(chatID)
	if err != nil {
		s.logger.Warn("failed to load history for reply",
			zap.String("chatId", chatID), zap.Error(err))
		history = nil
	}

	content, err := s.generator.Generate(context.Background(), prompt, history, file)
	if err != nil {
		s.logger.Warn("response generation failed",
			zap.String("chatId", chatID), zap.Error(err))
		content = fallbackReply
	}

	reply := &store.Message{
		ChatID:  chatID,
		Type:    store.MessageTypeAssistant,
		Content: content,
	}
	if _, err := s.data.AddMessage(reply); err != nil {
		s.logger.Error("failed to store assistant message",
			zap.String("chatId", chatID), zap.Error(err))
	}
}

func (s *ChatService) GetChats(userID string) ([]store.Chat, error) {
	return s.data.GetChatsByUserID(userID)
}

func (s *ChatService) GetChatMessages(chatID string) ([]store.Message, error) {
	chat, err := s.data.GetChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, store.ErrChatNotFound
	}
	return s.data.GetMessagesByChatID(chatID)
}

// DeleteChat removes a chat the user owns; it reports false when the chat
// does not exist or belongs to someone else.
func (s *ChatService) DeleteChat(chatID, userID string) (bool, error) {
	chat, err := s.data.GetChatByID(chatID)
	if err != nil {
		return false, err
	}
	if chat == nil || chat.UserID != userID {
		return false, nil
	}
	return s.data.DeleteChat(chatID)
}

func (s *ChatService) SetMessageFeedback(messageID string, liked, disliked *bool) (*store.Message, error) {
	msg, err := s.data.SetMessageFeedback(messageID, liked, disliked)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}
