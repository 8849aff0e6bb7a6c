package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

func (h *APIHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	chats, err := h.chats.GetChats(userID)
	if err != nil {
		h.logger.Error("failed to list chats", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to list chats")
		return
	}
	if chats == nil {
		chats = []store.Chat{}
	}
	h.writeData(w, http.StatusOK, chats)
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	messages, err := h.chats.GetChatMessages(chatID)
	if errors.Is(err, store.ErrChatNotFound) {
		h.writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to list messages", zap.String("chatId", chatID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	h.writeData(w, http.StatusOK, messages)
}

type createChatRequest struct {
	UserID         string  `json:"userId"`
	Title          string  `json:"title"`
	Model          string  `json:"model"`
	CategoryID     string  `json:"categoryId"`
	InitialMessage *string `json:"initialMessage,omitempty"`
}

type createChatResponse struct {
	Chat     *store.Chat     `json:"chat"`
	Messages []store.Message `json:"messages,omitempty"`
}

func (h *APIHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Model == "" {
		h.writeError(w, http.StatusBadRequest, "model is required")
		return
	}

	chat, messages, err := h.chats.CreateChat(req.UserID, req.Title, req.Model, req.CategoryID, req.InitialMessage)
	if err != nil {
		h.logger.Error("failed to create chat", zap.String("userId", req.UserID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to create chat")
		return
	}
	h.writeData(w, http.StatusCreated, createChatResponse{Chat: chat, Messages: messages})
}

type postMessageRequest struct {
	ChatID      string                 `json:"chatId"`
	UserID      string                 `json:"userId"`
	Content     string                 `json:"content"`
	Attachments []store.FileAttachment `json:"attachments,omitempty"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.chats.PostMessage(req.ChatID, req.UserID, req.Content, req.Attachments)
	switch {
	case errors.Is(err, core.ErrEmptyMessage):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrChatNotFound):
		h.writeError(w, http.StatusNotFound, "Chat not found")
		return
	case err != nil:
		h.logger.Error("failed to post message", zap.String("chatId", req.ChatID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to post message")
		return
	}
	h.writeData(w, http.StatusCreated, msg)
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	deleted, err := h.chats.DeleteChat(chatID, userID)
	if err != nil {
		h.logger.Error("failed to delete chat", zap.String("chatId", chatID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	h.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

type feedbackRequest struct {
	MessageID string `json:"messageId"`
	Liked     *bool  `json:"liked,omitempty"`
	Disliked  *bool  `json:"disliked,omitempty"`
}

func (h *APIHandler) MessageFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MessageID == "" {
		h.writeError(w, http.StatusBadRequest, "messageId is required")
		return
	}

	msg, err := h.chats.SetMessageFeedback(req.MessageID, req.Liked, req.Disliked)
	if errors.Is(err, core.ErrMessageNotFound) {
		h.writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to set feedback", zap.String("messageId", req.MessageID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to set feedback")
		return
	}
	h.writeData(w, http.StatusOK, msg)
}

func (h *APIHandler) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := h.data.GetModels()
	if err != nil {
		h.logger.Error("failed to list models", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to list models")
		return
	}
	h.writeData(w, http.StatusOK, models)
}
