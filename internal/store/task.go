package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dayline/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var estimated sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.GoalID, &t.Name, &t.Description, &t.Status,
		&estimated, &t.ActualTimeMinutes, &t.Date, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if estimated.Valid {
		v := int(estimated.Int64)
		t.EstimatedTimeMinutes = &v
	}
	return &t, nil
}

const taskCols = `id, goal_id, name, description, status, estimated_time_minutes, actual_time_minutes, date, created_at`

func (s *TaskStore) Create(goalID int64, name, description string, status model.TaskStatus, estimatedMinutes *int, actualMinutes int, date time.Time) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (goal_id, name, description, status, estimated_time_minutes, actual_time_minutes, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goalID, name, description, status, nullMinutes(estimatedMinutes), actualMinutes, date.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetOwned walks task -> goal -> project -> user.
func (s *TaskStore) GetOwned(id, userID int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT t.id, t.goal_id, t.name, t.description, t.status,
		        t.estimated_time_minutes, t.actual_time_minutes, t.date, t.created_at
		 FROM tasks t
		 JOIN goals g ON g.id = t.goal_id
		 JOIN projects p ON p.id = g.project_id
		 WHERE t.id = ? AND p.user_id = ?`,
		id, userID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByUser(userID int64, goalID *int64) ([]model.Task, error) {
	query := `SELECT t.id, t.goal_id, t.name, t.description, t.status,
	                 t.estimated_time_minutes, t.actual_time_minutes, t.date, t.created_at
	          FROM tasks t
	          JOIN goals g ON g.id = t.goal_id
	          JOIN projects p ON p.id = g.project_id
	          WHERE p.user_id = ?`
	args := []any{userID}
	if goalID != nil {
		query += ` AND t.goal_id = ?`
		args = append(args, *goalID)
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id, goalID int64, name, description string, status model.TaskStatus, estimatedMinutes *int, actualMinutes int, date time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET goal_id = ?, name = ?, description = ?, status = ?,
		        estimated_time_minutes = ?, actual_time_minutes = ?, date = ?
		 WHERE id = ?`,
		goalID, name, description, status, nullMinutes(estimatedMinutes), actualMinutes, date.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
