package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dayline/internal/model"
)

// SummaryStore serves the read-only rollups behind the dashboard and
// time-tracking endpoints. It never mutates anything.
type SummaryStore struct {
	db *sql.DB
}

func NewSummaryStore(db *sql.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// SumTaskMinutes totals actual task minutes for a goal with dates in
// [from, to).
func (s *SummaryStore) SumTaskMinutes(goalID int64, from, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(actual_time_minutes), 0) FROM tasks WHERE goal_id = ? AND date >= ? AND date < ?`,
		goalID, from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum task minutes: %w", err)
	}
	return total, nil
}

// CountProjects returns the number of projects the user owns.
func (s *SummaryStore) CountProjects(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// CountTasksByStatus counts the user's tasks with the given status and a
// date in [from, to).
func (s *SummaryStore) CountTasksByStatus(userID int64, status model.TaskStatus, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks t
		 JOIN goals g ON g.id = t.goal_id
		 JOIN projects p ON p.id = g.project_id
		 WHERE p.user_id = ? AND t.status = ? AND t.date >= ? AND t.date < ?`,
		userID, status, from.UTC(), to.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks by status: %w", err)
	}
	return n, nil
}

// CountPendingChores counts uncompleted chore instances for the user dated
// within [dayStart, dayStart+24h).
func (s *SummaryStore) CountPendingChores(userID int64, dayStart time.Time) (int, error) {
	dayStart = dayStart.UTC()
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chore_logs l
		 JOIN chores c ON c.id = l.chore_id
		 WHERE c.user_id = ? AND l.date >= ? AND l.date < ? AND l.actual_time_minutes = 0`,
		userID, dayStart, dayStart.Add(24*time.Hour),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending chores: %w", err)
	}
	return n, nil
}

// SumChoreMinutes totals logged chore minutes for the user with dates in
// [from, to).
func (s *SummaryStore) SumChoreMinutes(userID int64, from, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(l.actual_time_minutes), 0) FROM chore_logs l
		 JOIN chores c ON c.id = l.chore_id
		 WHERE c.user_id = ? AND l.date >= ? AND l.date < ?`,
		userID, from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum chore minutes: %w", err)
	}
	return total, nil
}
