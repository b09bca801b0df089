package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/dayline/internal/database"
	"github.com/dukerupert/dayline/internal/model"
)

func setupSummaryTestDB(t *testing.T) (*SummaryStore, *sql.DB, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("sum@example.com", "Sum", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewSummaryStore(db), db, u.ID
}

func TestSummaryTaskRollups(t *testing.T) {
	sum, db, uid := setupSummaryTestDB(t)

	p, err := NewProjectStore(db).Create(uid, "Fitness", "", 0, 0)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	g, err := NewGoalStore(db).Create(p.ID, "Run a 10k", "", nil, nil, nil)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	ts := NewTaskStore(db)
	today := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	if _, err := ts.Create(g.ID, "Run", "", model.TaskStatusDone, nil, 40, today); err != nil {
		t.Fatalf("create task 1: %v", err)
	}
	if _, err := ts.Create(g.ID, "Stretch", "", model.TaskStatusPlanned, nil, 0, today); err != nil {
		t.Fatalf("create task 2: %v", err)
	}
	if _, err := ts.Create(g.ID, "Rest", "", model.TaskStatusDone, nil, 15, tomorrow); err != nil {
		t.Fatalf("create task 3: %v", err)
	}

	total, err := sum.SumTaskMinutes(g.ID, today, tomorrow)
	if err != nil {
		t.Fatalf("sum task minutes: %v", err)
	}
	if total != 40 {
		t.Errorf("minutes = %d, want 40", total)
	}

	done, err := sum.CountTasksByStatus(uid, model.TaskStatusDone, today, tomorrow)
	if err != nil {
		t.Fatalf("count done: %v", err)
	}
	if done != 1 {
		t.Errorf("done = %d, want 1", done)
	}

	planned, err := sum.CountTasksByStatus(uid, model.TaskStatusPlanned, today, tomorrow)
	if err != nil {
		t.Fatalf("count planned: %v", err)
	}
	if planned != 1 {
		t.Errorf("planned = %d, want 1", planned)
	}

	n, err := sum.CountProjects(uid)
	if err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if n != 1 {
		t.Errorf("projects = %d, want 1", n)
	}
}

func TestSummaryChoreRollups(t *testing.T) {
	sum, db, uid := setupSummaryTestDB(t)

	cs := NewChoreStore(db)
	c1, err := cs.Create(uid, "Dishes", model.FrequencyDaily, 15, true)
	if err != nil {
		t.Fatalf("create chore 1: %v", err)
	}
	c2, err := cs.Create(uid, "Trash", model.FrequencyDaily, 5, true)
	if err != nil {
		t.Fatalf("create chore 2: %v", err)
	}

	today := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	created, err := cs.CreateLogsForDay([]int64{c1.ID, c2.ID}, today)
	if err != nil {
		t.Fatalf("create logs: %v", err)
	}
	if _, err := cs.UpdateLogMinutes(created[0].ID, 18); err != nil {
		t.Fatalf("complete log: %v", err)
	}

	pending, err := sum.CountPendingChores(uid, today)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 1 {
		t.Errorf("pending = %d, want 1", pending)
	}

	minutes, err := sum.SumChoreMinutes(uid, today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("sum chore minutes: %v", err)
	}
	if minutes != 18 {
		t.Errorf("minutes = %d, want 18", minutes)
	}
}
