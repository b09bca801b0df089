package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dayline/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var deadline sql.NullTime
	var daily, weekly sql.NullInt64

	err := scanner.Scan(
		&g.ID, &g.ProjectID, &g.Name, &g.Description,
		&deadline, &daily, &weekly, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		g.Deadline = &deadline.Time
	}
	if daily.Valid {
		v := int(daily.Int64)
		g.DailyTimeAllocatedMinutes = &v
	}
	if weekly.Valid {
		v := int(weekly.Int64)
		g.WeeklyTimeAllocatedMinutes = &v
	}
	return &g, nil
}

const goalCols = `id, project_id, name, description, deadline, daily_time_allocated_minutes, weekly_time_allocated_minutes, created_at`

func nullMinutes(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (s *GoalStore) Create(projectID int64, name, description string, deadline *time.Time, dailyMinutes, weeklyMinutes *int) (*model.Goal, error) {
	var dl sql.NullTime
	if deadline != nil {
		dl = sql.NullTime{Time: *deadline, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO goals (project_id, name, description, deadline, daily_time_allocated_minutes, weekly_time_allocated_minutes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, name, description, dl, nullMinutes(dailyMinutes), nullMinutes(weeklyMinutes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) GetByID(id int64) (*model.Goal, error) {
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// GetOwned walks goal -> project -> user and returns the goal only if that
// chain ends at the given user.
func (s *GoalStore) GetOwned(id, userID int64) (*model.Goal, error) {
	row := s.db.QueryRow(
		`SELECT g.id, g.project_id, g.name, g.description, g.deadline,
		        g.daily_time_allocated_minutes, g.weekly_time_allocated_minutes, g.created_at
		 FROM goals g JOIN projects p ON p.id = g.project_id
		 WHERE g.id = ? AND p.user_id = ?`,
		id, userID,
	)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) ListByUser(userID int64) ([]model.Goal, error) {
	rows, err := s.db.Query(
		`SELECT g.id, g.project_id, g.name, g.description, g.deadline,
		        g.daily_time_allocated_minutes, g.weekly_time_allocated_minutes, g.created_at
		 FROM goals g JOIN projects p ON p.id = g.project_id
		 WHERE p.user_id = ? ORDER BY g.created_at DESC, g.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

func (s *GoalStore) ListByProject(projectID int64) ([]model.Goal, error) {
	rows, err := s.db.Query(
		`SELECT `+goalCols+` FROM goals WHERE project_id = ? ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals by project: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

func collectGoals(rows *sql.Rows) ([]model.Goal, error) {
	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(id, projectID int64, name, description string, deadline *time.Time, dailyMinutes, weeklyMinutes *int) (*model.Goal, error) {
	var dl sql.NullTime
	if deadline != nil {
		dl = sql.NullTime{Time: *deadline, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE goals SET project_id = ?, name = ?, description = ?, deadline = ?,
		        daily_time_allocated_minutes = ?, weekly_time_allocated_minutes = ?
		 WHERE id = ?`,
		projectID, name, description, dl, nullMinutes(dailyMinutes), nullMinutes(weeklyMinutes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
