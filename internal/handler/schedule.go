package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/schedule"
	"github.com/dukerupert/dayline/internal/store"
	"github.com/dukerupert/dayline/internal/websocket"
)

// ScheduleHandler exposes the instance generation engine over HTTP.
type ScheduleHandler struct {
	generator *schedule.Generator
	chores    *store.ChoreStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewScheduleHandler(gen *schedule.Generator, cs *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{generator: gen, chores: cs, hub: hub, logger: logger}
}

func (h *ScheduleHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type generateRequest struct {
	TargetDate *time.Time `json:"target_date"`
}

// Generate handles POST /api/chores/generate-instances. The target date is
// optional; absent means today. The response contains only instances this
// call created.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	created, err := h.generator.GenerateForDate(auth.UserID(r.Context()), req.TargetDate)
	if err != nil {
		h.logger.Error("generate instances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate instances")
		return
	}

	for _, log := range created {
		h.broadcast(websocket.NewMessage("chore_log", "created", log.ID, nil))
	}
	writeList(w, created)
}

type generateRangeRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// GenerateRange handles POST /api/chores/generate-instances-range. Both
// bounds are required and the range is inclusive.
func (h *ScheduleHandler) GenerateRange(w http.ResponseWriter, r *http.Request) {
	var req generateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	created, err := h.generator.GenerateForRange(auth.UserID(r.Context()), req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "start_date must not be after end_date")
			return
		}
		h.logger.Error("generate instance range", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate instances")
		return
	}

	for _, log := range created {
		h.broadcast(websocket.NewMessage("chore_log", "created", log.ID, nil))
	}
	writeList(w, created)
}

// Pending handles GET /api/chores/pending-instances. An optional
// target_date query selects a day other than today.
func (h *ScheduleHandler) Pending(w http.ResponseWriter, r *http.Request) {
	target, ok := parseDateQuery(r, "target_date")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid target_date")
		return
	}

	pending, err := h.generator.PendingForDate(auth.UserID(r.Context()), target)
	if err != nil {
		h.logger.Error("list pending instances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending instances")
		return
	}
	writeList(w, pending)
}

type completeRequest struct {
	ActualTimeMinutes int `json:"actual_time_minutes"`
}

// Complete handles POST /api/chores/instances/{id}/complete. Minutes must
// be positive; zero would put the instance back in the pending set.
func (h *ScheduleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ActualTimeMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "actual_time_minutes must be positive")
		return
	}

	existing, err := h.chores.GetLogOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get instance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get instance")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "instance not found")
		return
	}

	log, err := h.generator.Complete(id, req.ActualTimeMinutes)
	if err != nil {
		if errors.Is(err, schedule.ErrInstanceNotFound) {
			writeError(w, http.StatusNotFound, "instance not found")
			return
		}
		h.logger.Error("complete instance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete instance")
		return
	}

	h.broadcast(websocket.NewMessage("chore_log", "updated", id, nil))
	writeJSON(w, http.StatusOK, log)
}
