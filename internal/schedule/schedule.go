// Package schedule decides, for a given calendar date, which chores are due
// and materializes a pending log for each. Generation is always driven by a
// caller-supplied target date; nothing here runs on its own clock.
package schedule

import (
	"errors"
	"time"

	"github.com/dukerupert/dayline/internal/model"
	"github.com/dukerupert/dayline/internal/store"
)

var (
	// ErrInvalidRange is returned when a range's start date falls after its end.
	ErrInvalidRange = errors.New("start date must not be after end date")

	// ErrInstanceNotFound is returned when a chore log id does not exist.
	ErrInstanceNotFound = errors.New("chore instance not found")
)

// StartOfDay truncates t to midnight UTC, preserving the calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Generator creates chore instances against the persistent store. It holds
// no state of its own and is safe for concurrent use; the unique
// (chore_id, day) index is what protects against racing generators.
type Generator struct {
	chores *store.ChoreStore
}

func NewGenerator(chores *store.ChoreStore) *Generator {
	return &Generator{chores: chores}
}

// isDue reports whether an instance must exist for the chore on the day
// starting at dayStart. An existing instance means no: generation already
// happened. Otherwise the decision is purely the chore's frequency:
// daily chores are due every day, weekly chores on Mondays, monthly chores
// on the 1st. Unknown frequencies are never due.
func (g *Generator) isDue(chore model.Chore, dayStart time.Time) (bool, error) {
	exists, err := g.chores.HasLogForDay(chore.ID, dayStart)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	switch chore.Frequency {
	case model.FrequencyDaily:
		return true, nil
	case model.FrequencyWeekly:
		return dayStart.Weekday() == time.Monday, nil
	case model.FrequencyMonthly:
		return dayStart.Day() == 1, nil
	}
	return false, nil
}

// GenerateForDate creates missing instances for the user's active chores on
// the target date (nil = now). All instances created by one call share the
// same start-of-day date and are committed in one batch. Only newly created
// instances are returned; calling again for the same day yields none.
func (g *Generator) GenerateForDate(userID int64, target *time.Time) ([]model.ChoreLog, error) {
	t := time.Now()
	if target != nil {
		t = *target
	}
	dayStart := StartOfDay(t)

	active := true
	chores, err := g.chores.ListByUser(userID, &active)
	if err != nil {
		return nil, err
	}

	var due []int64
	for _, chore := range chores {
		ok, err := g.isDue(chore, dayStart)
		if err != nil {
			return nil, err
		}
		if ok {
			due = append(due, chore.ID)
		}
	}

	return g.chores.CreateLogsForDay(due, dayStart)
}

// GenerateForRange runs day-by-day generation across [start, end],
// inclusive of end's calendar day, returning all created instances in
// chronological order. Each day commits independently, so a failure
// partway through keeps every completed day; re-running over the same
// range fills only the gaps.
func (g *Generator) GenerateForRange(userID int64, start, end time.Time) ([]model.ChoreLog, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	lastDay := StartOfDay(end)
	var created []model.ChoreLog
	for day := StartOfDay(start); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		d := day
		instances, err := g.GenerateForDate(userID, &d)
		if err != nil {
			return created, err
		}
		created = append(created, instances...)
	}
	return created, nil
}

// PendingForDate returns the user's uncompleted instances for the target
// date (nil = now).
func (g *Generator) PendingForDate(userID int64, target *time.Time) ([]model.ChoreLog, error) {
	t := time.Now()
	if target != nil {
		t = *target
	}
	return g.chores.ListPendingForDay(userID, StartOfDay(t))
}

// Complete records the actual time spent on an instance. It is a pure state
// transition: the caller is responsible for checking ownership and that
// minutes is positive. Completing an already-completed instance overwrites
// the previous duration.
func (g *Generator) Complete(logID int64, minutes int) (*model.ChoreLog, error) {
	log, err := g.chores.GetLogByID(logID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrInstanceNotFound
	}
	return g.chores.UpdateLogMinutes(logID, minutes)
}
