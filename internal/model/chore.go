package model

import "time"

// Frequency controls on which days the schedule generator considers a chore
// due: every day, Mondays, or the first of the month. It is plain data on the
// chore; changing it affects only instances generated after the change.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type Chore struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	Name                 string    `json:"name"`
	Frequency            Frequency `json:"frequency"`
	EstimatedTimeMinutes int       `json:"estimated_time_minutes"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}

// ChoreLog is one concrete occurrence of a chore on one calendar day.
// ActualTimeMinutes == 0 means the instance is still pending; any positive
// value marks it completed.
type ChoreLog struct {
	ID                int64     `json:"id"`
	ChoreID           int64     `json:"chore_id"`
	Date              time.Time `json:"date"`
	ActualTimeMinutes int       `json:"actual_time_minutes"`
	CreatedAt         time.Time `json:"created_at"`
}

// Pending reports whether the instance has not been completed yet.
func (l ChoreLog) Pending() bool {
	return l.ActualTimeMinutes == 0
}
