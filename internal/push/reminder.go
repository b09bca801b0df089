package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/dayline/internal/schedule"
	"github.com/dukerupert/dayline/internal/store"
)

// Reminder runs the daily chore reminder loop. Once per day at the
// configured UTC hour it generates any missing chore instances for each
// user and notifies their push subscriptions about instances still pending.
type Reminder struct {
	mu        sync.RWMutex
	service   *Service
	generator *schedule.Generator
	push      *store.PushStore
	users     *store.UserStore
	logger    *slog.Logger

	hour     int
	interval time.Duration
	lastRun  map[int64]string // userID -> date of last reminder

	cancel context.CancelFunc
	done   chan struct{}
}

// NewReminder creates the reminder loop. hour is the UTC hour of day at
// which reminders go out.
func NewReminder(svc *Service, gen *schedule.Generator, pushStore *store.PushStore, userStore *store.UserStore, hour int, logger *slog.Logger) *Reminder {
	return &Reminder{
		service:   svc,
		generator: gen,
		push:      pushStore,
		users:     userStore,
		logger:    logger,
		hour:      hour,
		interval:  60 * time.Second,
		lastRun:   make(map[int64]string),
	}
}

// Start begins the reminder loop. It is a no-op when push is not configured.
func (r *Reminder) Start(ctx context.Context) {
	if !r.service.Enabled() {
		return
	}

	r.mu.Lock()
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// Stop gracefully stops the reminder loop.
func (r *Reminder) Stop() {
	r.mu.RLock()
	cancel := r.cancel
	done := r.done
	r.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *Reminder) tick() {
	now := time.Now().UTC()
	if now.Hour() != r.hour {
		return
	}
	today := now.Format("2006-01-02")

	users, err := r.users.List()
	if err != nil {
		r.logger.Error("reminder list users", "error", err)
		return
	}

	for _, u := range users {
		r.mu.RLock()
		already := r.lastRun[u.ID] == today
		r.mu.RUnlock()
		if already {
			continue
		}

		r.remindUser(u.ID)

		r.mu.Lock()
		r.lastRun[u.ID] = today
		r.mu.Unlock()
	}
}

// remindUser generates today's instances for the user, then notifies every
// subscription about the instances still pending. Users with nothing pending
// get no notification.
func (r *Reminder) remindUser(userID int64) {
	if _, err := r.generator.GenerateForDate(userID, nil); err != nil {
		r.logger.Error("reminder generate instances", "user_id", userID, "error", err)
		return
	}

	pending, err := r.generator.PendingForDate(userID, nil)
	if err != nil {
		r.logger.Error("reminder list pending", "user_id", userID, "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	subs, err := r.push.ListByUser(userID)
	if err != nil {
		r.logger.Error("reminder list subscriptions", "user_id", userID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	body := fmt.Sprintf("You have %d chores pending today", len(pending))
	if len(pending) == 1 {
		body = "You have 1 chore pending today"
	}

	payload := Payload{
		Title: "Chore Reminder",
		Body:  body,
		URL:   "/chores",
		Tag:   "chore-daily",
	}

	for _, sub := range subs {
		if err := r.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				r.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				r.logger.Error("reminder send", "user_id", userID, "error", err)
			}
		}
	}
}
