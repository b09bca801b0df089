package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dayline/internal/auth"
	"github.com/dukerupert/dayline/internal/model"
	"github.com/dukerupert/dayline/internal/schedule"
	"github.com/dukerupert/dayline/internal/store"
)

// DashboardHandler serves the read-only rollups for the home screen and
// per-goal time tracking.
type DashboardHandler struct {
	summary *store.SummaryStore
	goals   *store.GoalStore
	logger  *slog.Logger
}

func NewDashboardHandler(ss *store.SummaryStore, gs *store.GoalStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{summary: ss, goals: gs, logger: logger}
}

type dashboardSummary struct {
	Date              string `json:"date"`
	Projects          int    `json:"projects"`
	TasksPlannedToday int    `json:"tasks_planned_today"`
	TasksDoneToday    int    `json:"tasks_done_today"`
	PendingChores     int    `json:"pending_chores"`
	ChoreMinutesToday int    `json:"chore_minutes_today"`
}

// Summary handles GET /api/dashboard/summary. An optional target_date query
// selects a day other than today.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	target, ok := parseDateQuery(r, "target_date")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid target_date")
		return
	}
	day := schedule.StartOfDay(time.Now())
	if target != nil {
		day = schedule.StartOfDay(*target)
	}
	next := day.Add(24 * time.Hour)

	out := dashboardSummary{Date: day.Format("2006-01-02")}
	var err error

	if out.Projects, err = h.summary.CountProjects(userID); err != nil {
		h.logger.Error("dashboard projects", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	if out.TasksPlannedToday, err = h.summary.CountTasksByStatus(userID, model.TaskStatusPlanned, day, next); err != nil {
		h.logger.Error("dashboard planned tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	if out.TasksDoneToday, err = h.summary.CountTasksByStatus(userID, model.TaskStatusDone, day, next); err != nil {
		h.logger.Error("dashboard done tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	if out.PendingChores, err = h.summary.CountPendingChores(userID, day); err != nil {
		h.logger.Error("dashboard pending chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	if out.ChoreMinutesToday, err = h.summary.SumChoreMinutes(userID, day, next); err != nil {
		h.logger.Error("dashboard chore minutes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

type timeTracking struct {
	GoalID           int64  `json:"goal_id"`
	Period           string `json:"period"`
	From             string `json:"from"`
	To               string `json:"to"`
	AllocatedMinutes *int   `json:"allocated_minutes"`
	ActualMinutes    int    `json:"actual_minutes"`
}

// GoalTimeTracking handles GET /api/goals/{id}/time-tracking. The period
// query is "daily" (default) or "weekly"; weekly windows start on Monday to
// line up with weekly chore generation.
func (h *DashboardHandler) GoalTimeTracking(w http.ResponseWriter, r *http.Request) {
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

	target, ok := parseDateQuery(r, "target_date")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid target_date")
		return
	}
	day := schedule.StartOfDay(time.Now())
	if target != nil {
		day = schedule.StartOfDay(*target)
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "daily"
	}

	var from, to time.Time
	var allocated *int
	switch period {
	case "daily":
		from, to = day, day.Add(24*time.Hour)
		allocated = goal.DailyTimeAllocatedMinutes
	case "weekly":
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		from = day.AddDate(0, 0, -offset)
		to = from.AddDate(0, 0, 7)
		allocated = goal.WeeklyTimeAllocatedMinutes
	default:
		writeError(w, http.StatusBadRequest, "period must be daily or weekly")
		return
	}

	actual, err := h.summary.SumTaskMinutes(id, from, to)
	if err != nil {
		h.logger.Error("sum task minutes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute time tracking")
		return
	}

	writeJSON(w, http.StatusOK, timeTracking{
		GoalID:           id,
		Period:           period,
		From:             from.Format("2006-01-02"),
		To:               to.Format("2006-01-02"),
		AllocatedMinutes: allocated,
		ActualMinutes:    actual,
	})
}
