package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/model"
	"github.com/dukerupert/dayline/internal/store"
	"github.com/dukerupert/dayline/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	goals  *store.GoalStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, gs *store.GoalStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, goals: gs, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type taskRequest struct {
	GoalID               int64            `json:"goal_id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Status               model.TaskStatus `json:"status"`
	EstimatedTimeMinutes *int             `json:"estimated_time_minutes"`
	ActualTimeMinutes    int              `json:"actual_time_minutes"`
	Date                 time.Time        `json:"date"`
}

func (req *taskRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Status == "" {
		req.Status = model.TaskStatusPlanned
	}
	if !req.Status.Valid() {
		return "status must be planned or done"
	}
	if req.EstimatedTimeMinutes != nil && *req.EstimatedTimeMinutes < 0 {
		return "estimated_time_minutes must not be negative"
	}
	if req.ActualTimeMinutes < 0 {
		return "actual_time_minutes must not be negative"
	}
	if req.Date.IsZero() {
		return "date is required"
	}
	return ""
}

// checkGoal verifies the goal exists and, through its project, belongs to
// the user.
func (h *TaskHandler) checkGoal(w http.ResponseWriter, goalID, userID int64) bool {
	goal, err := h.goals.GetOwned(goalID, userID)
	if err != nil {
		h.logger.Error("check goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check goal")
		return false
	}
	if goal == nil {
		writeError(w, http.StatusBadRequest, "goal not found")
		return false
	}
	return true
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkGoal(w, req.GoalID, auth.UserID(r.Context())) {
		return
	}

	task, err := h.tasks.Create(req.GoalID, req.Name, req.Description, req.Status, req.EstimatedTimeMinutes, req.ActualTimeMinutes, req.Date)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var goalID *int64
	if raw := r.URL.Query().Get("goal_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid goal_id")
			return
		}
		if !h.checkGoal(w, id, userID) {
			return
		}
		goalID = &id
	}

	tasks, err := h.tasks.ListByUser(userID, goalID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	writeList(w, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.tasks.GetOwned(id, userID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkGoal(w, req.GoalID, userID) {
		return
	}

	task, err := h.tasks.Update(id, req.GoalID, req.Name, req.Description, req.Status, req.EstimatedTimeMinutes, req.ActualTimeMinutes, req.Date)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
