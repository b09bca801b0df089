package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/store"
	"github.com/dukerupert/dayline/internal/websocket"
)

type ChoreLogHandler struct {
	chores *store.ChoreStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChoreLogHandler(cs *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *ChoreLogHandler {
	return &ChoreLogHandler{chores: cs, hub: hub, logger: logger}
}

func (h *ChoreLogHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type choreLogRequest struct {
	ChoreID           int64     `json:"chore_id"`
	Date              time.Time `json:"date"`
	ActualTimeMinutes int       `json:"actual_time_minutes"`
}

// Create handles POST /api/chore-logs. Unlike generated instances, a manual
// log may carry any non-negative duration and any date.
func (h *ChoreLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ActualTimeMinutes < 0 {
		writeError(w, http.StatusBadRequest, "actual_time_minutes must not be negative")
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	chore, err := h.chores.GetOwned(req.ChoreID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("check chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusBadRequest, "chore not found")
		return
	}

	log, err := h.chores.CreateLog(req.ChoreID, req.Date, req.ActualTimeMinutes)
	if err != nil {
		h.logger.Error("create chore log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore log")
		return
	}

	h.broadcast(websocket.NewMessage("chore_log", "created", log.ID, nil))
	writeJSON(w, http.StatusCreated, log)
}

// List handles GET /api/chore-logs with optional chore_id, from, and to
// filters.
func (h *ChoreLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var choreID *int64
	if raw := r.URL.Query().Get("chore_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid chore_id")
			return
		}
		chore, err := h.chores.GetOwned(id, userID)
		if err != nil {
			h.logger.Error("check chore", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check chore")
			return
		}
		if chore == nil {
			writeError(w, http.StatusBadRequest, "chore not found")
			return
		}
		choreID = &id
	}

	from, ok := parseDateQuery(r, "from")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, ok := parseDateQuery(r, "to")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	logs, err := h.chores.ListLogs(userID, choreID, from, to)
	if err != nil {
		h.logger.Error("list chore logs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chore logs")
		return
	}
	writeList(w, logs)
}

type choreLogUpdateRequest struct {
	ActualTimeMinutes int `json:"actual_time_minutes"`
}

// Update handles PUT /api/chore-logs/{id}.
func (h *ChoreLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetLogOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get chore log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore log")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore log not found")
		return
	}

	var req choreLogUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ActualTimeMinutes < 0 {
		writeError(w, http.StatusBadRequest, "actual_time_minutes must not be negative")
		return
	}

	log, err := h.chores.UpdateLogMinutes(id, req.ActualTimeMinutes)
	if err != nil {
		h.logger.Error("update chore log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore log")
		return
	}

	h.broadcast(websocket.NewMessage("chore_log", "updated", id, nil))
	writeJSON(w, http.StatusOK, log)
}

// Delete handles DELETE /api/chore-logs/{id}.
func (h *ChoreLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetLogOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get chore log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore log")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore log not found")
		return
	}

	if err := h.chores.DeleteLog(id); err != nil {
		h.logger.Error("delete chore log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete chore log")
		return
	}

	h.broadcast(websocket.NewMessage("chore_log", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
