// Package client implements the chat client: a backend-agnostic state
// holder with listener subscriptions and a bounded poll loop that waits for
// asynchronously produced assistant messages. Backends are interchangeable:
// HTTP against the server API, or direct calls into a local chat service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

type Backend interface {
	CreateChat(ctx context.Context, userID, title, model string, initialMessage *string) (*store.Chat, []store.Message, error)
	SendMessage(ctx context.Context, chatID, userID, content string, attachments []store.FileAttachment) (*store.Message, error)
	ListChats(ctx context.Context, userID string) ([]store.Chat, error)
	GetMessages(ctx context.Context, chatID string) ([]store.Message, error)
	DeleteChat(ctx context.Context, chatID, userID string) (bool, error)
}

// LocalBackend talks straight to a chat service over local storage, the
// counterpart of the browser-local persistence mode.
type LocalBackend struct {
	svc *core.ChatService
}

func NewLocalBackend(svc *core.ChatService) *LocalBackend {
	return &LocalBackend{svc: svc}
}

func (b *LocalBackend) CreateChat(ctx context.Context, userID, title, model string, initialMessage *string) (*store.Chat, []store.Message, error) {
	return b.svc.CreateChat(userID, title, model, "", initialMessage)
}

func (b *LocalBackend) SendMessage(ctx context.Context, chatID, userID, content string, attachments []store.FileAttachment) (*store.Message, error) {
	return b.svc.PostMessage(chatID, userID, content, attachments)
}

func (b *LocalBackend) ListChats(ctx context.Context, userID string) ([]store.Chat, error) {
	return b.svc.GetChats(userID)
}

func (b *LocalBackend) GetMessages(ctx context.Context, chatID string) ([]store.Message, error) {
	return b.svc.GetChatMessages(chatID)
}

func (b *LocalBackend) DeleteChat(ctx context.Context, chatID, userID string) (bool, error) {
	return b.svc.DeleteChat(chatID, userID)
}

// HTTPBackend talks to the server API, unwrapping its response envelope.
type HTTPBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{baseURL: baseURL, token: token, client: &http.Client{}}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return errors.New(env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

type createChatPayload struct {
	UserID         string  `json:"userId"`
	Title          string  `json:"title"`
	Model          string  `json:"model"`
	InitialMessage *string `json:"initialMessage,omitempty"`
}

type createChatResult struct {
	Chat     *store.Chat     `json:"chat"`
	Messages []store.Message `json:"messages"`
}

func (b *HTTPBackend) CreateChat(ctx context.Context, userID, title, model string, initialMessage *string) (*store.Chat, []store.Message, error) {
	var result createChatResult
	err := b.doJSON(ctx, http.MethodPost, "/api/chats", createChatPayload{
		UserID:         userID,
		Title:          title,
		Model:          model,
		InitialMessage: initialMessage,
	}, &result)
	if err != nil {
		return nil, nil, err
	}
	return result.Chat, result.Messages, nil
}

type sendMessagePayload struct {
	ChatID      string                 `json:"chatId"`
	UserID      string                 `json:"userId"`
	Content     string                 `json:"content"`
	Attachments []store.FileAttachment `json:"attachments,omitempty"`
}

func (b *HTTPBackend) SendMessage(ctx context.Context, chatID, userID, content string, attachments []store.FileAttachment) (*store.Message, error) {
	var msg store.Message
	err := b.doJSON(ctx, http.MethodPost, "/api/chats/message", sendMessagePayload{
		ChatID:      chatID,
		UserID:      userID,
		Content:     content,
		Attachments: attachments,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (b *HTTPBackend) ListChats(ctx context.Context, userID string) ([]store.Chat, error) {
	var chats []store.Chat
	if err := b.doJSON(ctx, http.MethodGet, "/api/chats?userId="+userID, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (b *HTTPBackend) GetMessages(ctx context.Context, chatID string) ([]store.Message, error) {
	var messages []store.Message
	if err := b.doJSON(ctx, http.MethodGet, "/api/chats/"+chatID+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (b *HTTPBackend) DeleteChat(ctx context.Context, chatID, userID string) (bool, error) {
	var result map[string]bool
	if err := b.doJSON(ctx, http.MethodDelete, "/api/chats/"+chatID+"?userId="+userID, nil, &result); err != nil {
		return false, err
	}
	return result["deleted"], nil
}
