package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/store"
	"github.com/dukerupert/dayline/internal/websocket"
)

type GoalHandler struct {
	goals    *store.GoalStore
	projects *store.ProjectStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewGoalHandler(gs *store.GoalStore, ps *store.ProjectStore, hub *websocket.Hub, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: gs, projects: ps, hub: hub, logger: logger}
}

func (h *GoalHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type goalRequest struct {
	ProjectID                  int64      `json:"project_id"`
	Name                       string     `json:"name"`
	Description                string     `json:"description"`
	Deadline                   *time.Time `json:"deadline"`
	DailyTimeAllocatedMinutes  *int       `json:"daily_time_allocated_minutes"`
	WeeklyTimeAllocatedMinutes *int       `json:"weekly_time_allocated_minutes"`
}

func (req *goalRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.DailyTimeAllocatedMinutes != nil && *req.DailyTimeAllocatedMinutes < 0 {
		return "time allocations must not be negative"
	}
	if req.WeeklyTimeAllocatedMinutes != nil && *req.WeeklyTimeAllocatedMinutes < 0 {
		return "time allocations must not be negative"
	}
	return ""
}

// checkProject verifies the project exists and belongs to the user. Returns
// false after writing the error response.
func (h *GoalHandler) checkProject(w http.ResponseWriter, projectID, userID int64) bool {
	project, err := h.projects.GetOwned(projectID, userID)
	if err != nil {
		h.logger.Error("check project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check project")
		return false
	}
	if project == nil {
		writeError(w, http.StatusBadRequest, "project not found")
		return false
	}
	return true
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkProject(w, req.ProjectID, auth.UserID(r.Context())) {
		return
	}

	goal, err := h.goals.Create(req.ProjectID, req.Name, req.Description, req.Deadline, req.DailyTimeAllocatedMinutes, req.WeeklyTimeAllocatedMinutes)
	if err != nil {
		h.logger.Error("create goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	h.broadcast(websocket.NewMessage("goal", "created", goal.ID, nil))
	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		if !h.checkProject(w, projectID, userID) {
			return
		}
		goals, err := h.goals.ListByProject(projectID)
		if err != nil {
			h.logger.Error("list goals", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list goals")
			return
		}
		writeList(w, goals)
		return
	}

	goals, err := h.goals.ListByUser(userID)
	if err != nil {
		h.logger.Error("list goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	writeList(w, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	goal, err := h.goals.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.goals.GetOwned(id, userID)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	// Moving the goal to another project requires owning the target too
	if !h.checkProject(w, req.ProjectID, userID) {
		return
	}

	goal, err := h.goals.Update(id, req.ProjectID, req.Name, req.Description, req.Deadline, req.DailyTimeAllocatedMinutes, req.WeeklyTimeAllocatedMinutes)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	h.broadcast(websocket.NewMessage("goal", "updated", id, nil))
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.goals.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	if err := h.goals.Delete(id); err != nil {
		h.logger.Error("delete goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	h.broadcast(websocket.NewMessage("goal", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
