package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/store"
	"github.com/dukerupert/dayline/internal/websocket"
)

type ProjectHandler struct {
	projects *store.ProjectStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProjectHandler(ps *store.ProjectStore, hub *websocket.Hub, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: ps, hub: hub, logger: logger}
}

func (h *ProjectHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type projectRequest struct {
	Name                       string `json:"name"`
	Color                      string `json:"color"`
	DailyTimeAllocatedMinutes  int    `json:"daily_time_allocated_minutes"`
	WeeklyTimeAllocatedMinutes int    `json:"weekly_time_allocated_minutes"`
}

func (req *projectRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.DailyTimeAllocatedMinutes < 0 || req.WeeklyTimeAllocatedMinutes < 0 {
		return "time allocations must not be negative"
	}
	return ""
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	project, err := h.projects.Create(auth.UserID(r.Context()), req.Name, req.Color, req.DailyTimeAllocatedMinutes, req.WeeklyTimeAllocatedMinutes)
	if err != nil {
		h.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.broadcast(websocket.NewMessage("project", "created", project.ID, nil))
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	writeList(w, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	project, err := h.projects.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.projects.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	project, err := h.projects.Update(id, req.Name, req.Color, req.DailyTimeAllocatedMinutes, req.WeeklyTimeAllocatedMinutes)
	if err != nil {
		h.logger.Error("update project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	h.broadcast(websocket.NewMessage("project", "updated", id, nil))
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.projects.GetOwned(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.projects.Delete(id); err != nil {
		h.logger.Error("delete project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	h.broadcast(websocket.NewMessage("project", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
