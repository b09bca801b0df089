package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dayline/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Color,
		&p.DailyTimeAllocatedMinutes, &p.WeeklyTimeAllocatedMinutes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const projectCols = `id, user_id, name, color, daily_time_allocated_minutes, weekly_time_allocated_minutes, created_at`

func (s *ProjectStore) Create(userID int64, name, color string, dailyMinutes, weeklyMinutes int) (*model.Project, error) {
	result, err := s.db.Exec(
		`INSERT INTO projects (user_id, name, color, daily_time_allocated_minutes, weekly_time_allocated_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, name, color, dailyMinutes, weeklyMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) GetByID(id int64) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// GetOwned returns the project only if it belongs to the user.
func (s *ProjectStore) GetOwned(id, userID int64) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectCols+` FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) ListByUser(userID int64) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Update(id int64, name, color string, dailyMinutes, weeklyMinutes int) (*model.Project, error) {
	_, err := s.db.Exec(
		`UPDATE projects SET name = ?, color = ?, daily_time_allocated_minutes = ?, weekly_time_allocated_minutes = ?
		 WHERE id = ?`,
		name, color, dailyMinutes, weeklyMinutes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
