// Package server wires the stores, the generation engine, and the
// background services into one HTTP handler tree.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dayline/internal/backup"
	"github.com/dukerupert/dayline/internal/handler"
	"github.com/dukerupert/dayline/internal/middleware"
	"github.com/dukerupert/dayline/internal/push"
	"github.com/dukerupert/dayline/internal/schedule"
	"github.com/dukerupert/dayline/internal/store"
	ws "github.com/dukerupert/dayline/internal/websocket"
)

// Config carries the knobs the server cannot derive on its own.
type Config struct {
	Backup       backup.Config
	VAPIDPublic  string
	VAPIDPrivate string
	ReminderHour int
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH      *handler.AuthHandler
	projectH   *handler.ProjectHandler
	goalH      *handler.GoalHandler
	taskH      *handler.TaskHandler
	choreH     *handler.ChoreHandler
	choreLogH  *handler.ChoreLogHandler
	scheduleH  *handler.ScheduleHandler
	dashboardH *handler.DashboardHandler
	pushH      *handler.PushHandler
	backupH    *handler.BackupHandler

	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushReminder  *push.Reminder
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	projectStore := store.NewProjectStore(db)
	goalStore := store.NewGoalStore(db)
	taskStore := store.NewTaskStore(db)
	choreStore := store.NewChoreStore(db)
	summaryStore := store.NewSummaryStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	generator := schedule.NewGenerator(choreStore)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	})

	pushSvc := push.NewService(cfg.VAPIDPublic, cfg.VAPIDPrivate)
	pushReminder := push.NewReminder(pushSvc, generator, pushStore, userStore, cfg.ReminderHour, logger.With("component", "reminder"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		projectH:      handler.NewProjectHandler(projectStore, hub, logger.With("component", "project")),
		goalH:         handler.NewGoalHandler(goalStore, projectStore, hub, logger.With("component", "goal")),
		taskH:         handler.NewTaskHandler(taskStore, goalStore, hub, logger.With("component", "task")),
		choreH:        handler.NewChoreHandler(choreStore, hub, logger.With("component", "chore")),
		choreLogH:     handler.NewChoreLogHandler(choreStore, hub, logger.With("component", "chore_log")),
		scheduleH:     handler.NewScheduleHandler(generator, choreStore, hub, logger.With("component", "schedule")),
		dashboardH:    handler.NewDashboardHandler(summaryStore, goalStore, logger.With("component", "dashboard")),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushReminder:  pushReminder,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushReminder returns the daily reminder loop.
func (s *Server) PushReminder() *push.Reminder {
	return s.pushReminder
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Project routes
	mux.HandleFunc("POST /api/projects", s.projectH.Create)
	mux.HandleFunc("GET /api/projects", s.projectH.List)
	mux.HandleFunc("GET /api/projects/{id}", s.projectH.Get)
	mux.HandleFunc("PUT /api/projects/{id}", s.projectH.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", s.projectH.Delete)

	// Goal routes
	mux.HandleFunc("POST /api/goals", s.goalH.Create)
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("GET /api/goals/{id}", s.goalH.Get)
	mux.HandleFunc("PUT /api/goals/{id}", s.goalH.Update)
	mux.HandleFunc("DELETE /api/goals/{id}", s.goalH.Delete)
	mux.HandleFunc("GET /api/goals/{id}/time-tracking", s.dashboardH.GoalTimeTracking)

	// Task routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Chore routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("PATCH /api/chores/{id}/active", s.choreH.SetActive)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)

	// Instance generation routes
	mux.HandleFunc("POST /api/chores/generate-instances", s.scheduleH.Generate)
	mux.HandleFunc("POST /api/chores/generate-instances-range", s.scheduleH.GenerateRange)
	mux.HandleFunc("GET /api/chores/pending-instances", s.scheduleH.Pending)
	mux.HandleFunc("POST /api/chores/instances/{id}/complete", s.scheduleH.Complete)

	// Chore log routes
	mux.HandleFunc("POST /api/chore-logs", s.choreLogH.Create)
	mux.HandleFunc("GET /api/chore-logs", s.choreLogH.List)
	mux.HandleFunc("PUT /api/chore-logs/{id}", s.choreLogH.Update)
	mux.HandleFunc("DELETE /api/chore-logs/{id}", s.choreLogH.Delete)

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/summary", s.dashboardH.Summary)

	// Push notification routes
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	// Backup routes
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// Live sync
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
