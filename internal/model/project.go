package model

import "time"

type Project struct {
	ID                         int64     `json:"id"`
	UserID                     int64     `json:"user_id"`
	Name                       string    `json:"name"`
	Color                      string    `json:"color"`
	DailyTimeAllocatedMinutes  int       `json:"daily_time_allocated_minutes"`
	WeeklyTimeAllocatedMinutes int       `json:"weekly_time_allocated_minutes"`
	CreatedAt                  time.Time `json:"created_at"`
}

type Goal struct {
	ID                         int64      `json:"id"`
	ProjectID                  int64      `json:"project_id"`
	Name                       string     `json:"name"`
	Description                string     `json:"description"`
	Deadline                   *time.Time `json:"deadline"`
	DailyTimeAllocatedMinutes  *int       `json:"daily_time_allocated_minutes"`
	WeeklyTimeAllocatedMinutes *int       `json:"weekly_time_allocated_minutes"`
	CreatedAt                  time.Time  `json:"created_at"`
}

type TaskStatus string

const (
	TaskStatusPlanned TaskStatus = "planned"
	TaskStatusDone    TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPlanned || s == TaskStatusDone
}

type Task struct {
	ID                   int64      `json:"id"`
	GoalID               int64      `json:"goal_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Status               TaskStatus `json:"status"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes"`
	ActualTimeMinutes    int        `json:"actual_time_minutes"`
	Date                 time.Time  `json:"date"`
	CreatedAt            time.Time  `json:"created_at"`
}
