package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dayline/internal/model"
)

// dayFormat is the calendar-day key stored alongside each log's timestamp.
// The UNIQUE (chore_id, day) index over it is what actually enforces
// at-most-one instance per chore per day.
const dayFormat = "2006-01-02"

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

// --- Chore methods ---

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Frequency,
		&c.EstimatedTimeMinutes, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const choreCols = `id, user_id, name, frequency, estimated_time_minutes, is_active, created_at`

func (s *ChoreStore) Create(userID int64, name string, frequency model.Frequency, estimatedMinutes int, isActive bool) (*model.Chore, error) {
	result, err := s.db.Exec(
		`INSERT INTO chores (user_id, name, frequency, estimated_time_minutes, is_active) VALUES (?, ?, ?, ?, ?)`,
		userID, name, frequency, estimatedMinutes, isActive,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// GetOwned returns the chore only if it belongs to the user.
func (s *ChoreStore) GetOwned(id, userID int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned chore: %w", err)
	}
	return c, nil
}

// ListByUser returns the user's chores in creation order. A non-nil isActive
// restricts the result to chores with that active flag.
func (s *ChoreStore) ListByUser(userID int64, isActive *bool) ([]model.Chore, error) {
	query := `SELECT ` + choreCols + ` FROM chores WHERE user_id = ?`
	args := []any{userID}
	if isActive != nil {
		query += ` AND is_active = ?`
		args = append(args, *isActive)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(id int64, name string, frequency model.Frequency, estimatedMinutes int, isActive bool) (*model.Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET name = ?, frequency = ?, estimated_time_minutes = ?, is_active = ? WHERE id = ?`,
		name, frequency, estimatedMinutes, isActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(id)
}

// SetActive flips the generation flag without touching anything else.
// Deactivation stops generation while preserving log history.
func (s *ChoreStore) SetActive(id int64, active bool) (*model.Chore, error) {
	_, err := s.db.Exec(`UPDATE chores SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return nil, fmt.Errorf("set chore active: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// --- ChoreLog methods ---

func scanLog(scanner interface{ Scan(...any) error }) (*model.ChoreLog, error) {
	var l model.ChoreLog
	err := scanner.Scan(&l.ID, &l.ChoreID, &l.Date, &l.ActualTimeMinutes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const logCols = `id, chore_id, date, actual_time_minutes, created_at`

// CreateLog inserts a single log directly, bypassing generation. The caller
// may supply any duration, including a positive one for an already-done chore.
func (s *ChoreStore) CreateLog(choreID int64, date time.Time, actualMinutes int) (*model.ChoreLog, error) {
	date = date.UTC()
	result, err := s.db.Exec(
		`INSERT INTO chore_logs (chore_id, date, day, actual_time_minutes) VALUES (?, ?, ?, ?)`,
		choreID, date, date.Format(dayFormat), actualMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetLogByID(id)
}

// CreateLogsForDay batch-inserts one pending log per chore, all dated
// dayStart, in a single transaction. Rows that collide with the unique
// (chore_id, day) index are silently skipped: a concurrent generator got
// there first and the instance already exists. Only rows actually inserted
// by this call are returned.
func (s *ChoreStore) CreateLogsForDay(choreIDs []int64, dayStart time.Time) ([]model.ChoreLog, error) {
	if len(choreIDs) == 0 {
		return nil, nil
	}
	dayStart = dayStart.UTC()
	day := dayStart.Format(dayFormat)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var created []model.ChoreLog
	for _, choreID := range choreIDs {
		result, err := tx.Exec(
			`INSERT INTO chore_logs (chore_id, date, day, actual_time_minutes) VALUES (?, ?, ?, 0)
			 ON CONFLICT (chore_id, day) DO NOTHING`,
			choreID, dayStart, day,
		)
		if err != nil {
			return nil, fmt.Errorf("insert chore log: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			continue // already generated
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		row := tx.QueryRow(`SELECT `+logCols+` FROM chore_logs WHERE id = ?`, id)
		l, err := scanLog(row)
		if err != nil {
			return nil, fmt.Errorf("scan chore log: %w", err)
		}
		created = append(created, *l)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (s *ChoreStore) GetLogByID(id int64) (*model.ChoreLog, error) {
	row := s.db.QueryRow(`SELECT `+logCols+` FROM chore_logs WHERE id = ?`, id)
	l, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore log: %w", err)
	}
	return l, nil
}

// GetLogOwned resolves log -> chore -> user and returns the log only if the
// chain ends at the given user. Every instance-touching endpoint goes through
// this instead of re-deriving the ownership walk.
func (s *ChoreStore) GetLogOwned(id, userID int64) (*model.ChoreLog, error) {
	row := s.db.QueryRow(
		`SELECT l.id, l.chore_id, l.date, l.actual_time_minutes, l.created_at
		 FROM chore_logs l JOIN chores c ON c.id = l.chore_id
		 WHERE l.id = ? AND c.user_id = ?`,
		id, userID,
	)
	l, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned chore log: %w", err)
	}
	return l, nil
}

// HasLogForDay reports whether an instance already exists for the chore
// within [dayStart, dayStart+24h).
func (s *ChoreStore) HasLogForDay(choreID int64, dayStart time.Time) (bool, error) {
	dayStart = dayStart.UTC()
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chore_logs WHERE chore_id = ? AND date >= ? AND date < ?`,
		choreID, dayStart, dayStart.Add(24*time.Hour),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count chore logs for day: %w", err)
	}
	return n > 0, nil
}

// ListPendingForDay returns the user's uncompleted instances dated within
// [dayStart, dayStart+24h).
func (s *ChoreStore) ListPendingForDay(userID int64, dayStart time.Time) ([]model.ChoreLog, error) {
	dayStart = dayStart.UTC()
	rows, err := s.db.Query(
		`SELECT l.id, l.chore_id, l.date, l.actual_time_minutes, l.created_at
		 FROM chore_logs l JOIN chores c ON c.id = l.chore_id
		 WHERE c.user_id = ? AND l.date >= ? AND l.date < ? AND l.actual_time_minutes = 0
		 ORDER BY l.id ASC`,
		userID, dayStart, dayStart.Add(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending chore logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListLogs returns the user's logs, optionally filtered by chore and date
// bounds (from inclusive, to inclusive).
func (s *ChoreStore) ListLogs(userID int64, choreID *int64, from, to *time.Time) ([]model.ChoreLog, error) {
	query := `SELECT l.id, l.chore_id, l.date, l.actual_time_minutes, l.created_at
	          FROM chore_logs l JOIN chores c ON c.id = l.chore_id
	          WHERE c.user_id = ?`
	args := []any{userID}
	if choreID != nil {
		query += ` AND l.chore_id = ?`
		args = append(args, *choreID)
	}
	if from != nil {
		query += ` AND l.date >= ?`
		args = append(args, from.UTC())
	}
	if to != nil {
		query += ` AND l.date <= ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY l.date ASC, l.created_at ASC, l.id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chore logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]model.ChoreLog, error) {
	var logs []model.ChoreLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// UpdateLogMinutes sets the logged duration. Writing over a previous positive
// value is allowed; last write wins.
func (s *ChoreStore) UpdateLogMinutes(id int64, actualMinutes int) (*model.ChoreLog, error) {
	_, err := s.db.Exec(`UPDATE chore_logs SET actual_time_minutes = ? WHERE id = ?`, actualMinutes, id)
	if err != nil {
		return nil, fmt.Errorf("update chore log: %w", err)
	}
	return s.GetLogByID(id)
}

func (s *ChoreStore) DeleteLog(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chore_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore log: %w", err)
	}
	return nil
}
