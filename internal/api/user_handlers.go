package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.data.GetUserByID(userID)
	if err != nil {
		h.logger.Error("failed to get user", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.writeData(w, http.StatusOK, user)
}

func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var update store.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.data.UpdateUser(userID, update)
	if err != nil {
		h.logger.Error("failed to update user", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.writeData(w, http.StatusOK, user)
}

func (h *APIHandler) GetUserSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.data.GetUserByID(userID)
	if err != nil {
		h.logger.Error("failed to get settings", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.writeData(w, http.StatusOK, user.Settings)
}

func (h *APIHandler) UpdateUserSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var settings store.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.data.UpdateUserSettings(userID, settings)
	if err != nil {
		h.logger.Error("failed to update settings", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	h.writeData(w, http.StatusOK, user.Settings)
}

// Category endpoints (server path: deleting a category strips the
// assignment from its chats).

func (h *APIHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	categories, err := h.data.GetCategoriesByUserID(userID)
	if err != nil {
		h.logger.Error("failed to list categories", zap.String("userId", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	h.writeData(w, http.StatusOK, categories)
}

type categoryRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (h *APIHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "userId and name are required")
		return
	}

	category, err := h.data.CreateCategory(req.UserID, req.Name)
	if err != nil {
		h.logger.Error("failed to create category", zap.String("userId", req.UserID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	h.writeData(w, http.StatusCreated, category)
}

func (h *APIHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.data.UpdateCategory(categoryID, req.Name)
	if errors.Is(err, store.ErrDefaultCategory) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to update category", zap.String("categoryId", categoryID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	if category == nil {
		h.writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	h.writeData(w, http.StatusOK, category)
}

func (h *APIHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	deleted, err := h.data.DeleteCategory(categoryID)
	if errors.Is(err, store.ErrDefaultCategory) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to delete category", zap.String("categoryId", categoryID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	h.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
