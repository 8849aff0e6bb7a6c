package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.data.Stats()
	if err != nil {
		h.logger.Error("failed to compute stats", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	h.writeData(w, http.StatusOK, stats)
}

func (h *APIHandler) ClearChatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.data.ClearChats(); err != nil {
		h.logger.Error("failed to clear chats", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to clear chats")
		return
	}
	h.writeData(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (h *APIHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.data.ClearAll(); err != nil {
		h.logger.Error("failed to clear data", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}
	h.writeData(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.data.ExportData()
	if err != nil {
		h.logger.Error("failed to export data", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	h.writeData(w, http.StatusOK, bundle)
}

func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var bundle store.ExportBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid import payload")
		return
	}
	if err := h.data.ImportData(&bundle); err != nil {
		h.logger.Error("failed to import data", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to import data")
		return
	}
	h.writeData(w, http.StatusOK, map[string]bool{"imported": true})
}
