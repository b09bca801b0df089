package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/dayline/internal/database"
	"github.com/dukerupert/dayline/internal/model"
	"github.com/dukerupert/dayline/internal/store"
)

func setupGeneratorTest(t *testing.T) (*Generator, *store.ChoreStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	u, err := users.Create("gen@example.com", "Gen", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	chores := store.NewChoreStore(db)
	return NewGenerator(chores), chores, u.ID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfDay(t *testing.T) {
	afternoon := time.Date(2024, 3, 15, 14, 30, 45, 123, time.UTC)
	got := StartOfDay(afternoon)
	if !got.Equal(date(2024, 3, 15)) {
		t.Errorf("StartOfDay = %v, want %v", got, date(2024, 3, 15))
	}

	// A non-UTC time truncates to the UTC calendar date.
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2024, 3, 15, 22, 0, 0, 0, est) // 03:00 UTC on the 16th
	got = StartOfDay(late)
	if !got.Equal(date(2024, 3, 16)) {
		t.Errorf("StartOfDay across zones = %v, want %v", got, date(2024, 3, 16))
	}
}

func TestGenerateDailyEveryDay(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	for _, day := range []time.Time{
		date(2024, 3, 13), // Wednesday
		date(2024, 3, 16), // Saturday
		date(2024, 4, 1),
	} {
		d := day
		created, err := gen.GenerateForDate(userID, &d)
		if err != nil {
			t.Fatalf("generate for %v: %v", day, err)
		}
		if len(created) != 1 {
			t.Errorf("generated %d instances for %v, want 1", len(created), day)
		}
	}
}

func TestGenerateWeeklyOnlyMonday(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Vacuum", model.FrequencyWeekly, 30, true); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	// Wednesday: nothing.
	wed := date(2024, 3, 13)
	created, err := gen.GenerateForDate(userID, &wed)
	if err != nil {
		t.Fatalf("generate wednesday: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("wednesday generated %d instances, want 0", len(created))
	}

	// The following Monday: one instance.
	mon := date(2024, 3, 18)
	created, err = gen.GenerateForDate(userID, &mon)
	if err != nil {
		t.Fatalf("generate monday: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("monday generated %d instances, want 1", len(created))
	}
	if !created[0].Pending() {
		t.Error("new instance should be pending")
	}

	// The same Monday again: idempotent.
	created, err = gen.GenerateForDate(userID, &mon)
	if err != nil {
		t.Fatalf("regenerate monday: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("repeat monday generated %d instances, want 0", len(created))
	}
}

func TestGenerateMonthlyOnlyFirst(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Filters", model.FrequencyMonthly, 20, true); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	mid := date(2024, 3, 15)
	created, err := gen.GenerateForDate(userID, &mid)
	if err != nil {
		t.Fatalf("generate mid-month: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("mid-month generated %d instances, want 0", len(created))
	}

	first := date(2024, 4, 1)
	created, err = gen.GenerateForDate(userID, &first)
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("first of month generated %d instances, want 1", len(created))
	}
}

func TestGenerateSkipsInactiveAndUnknownFrequency(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Paused", model.FrequencyDaily, 10, false); err != nil {
		t.Fatalf("create inactive chore: %v", err)
	}
	if _, err := chores.Create(userID, "Odd", model.Frequency("yearly"), 10, true); err != nil {
		t.Fatalf("create odd chore: %v", err)
	}

	day := date(2024, 3, 13)
	created, err := gen.GenerateForDate(userID, &day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("generated %d instances, want 0", len(created))
	}
}

func TestGenerateDefaultsToNow(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	created, err := gen.GenerateForDate(userID, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("generated %d instances, want 1", len(created))
	}
	if !created[0].Date.Equal(StartOfDay(time.Now())) {
		t.Errorf("instance date = %v, want today's start of day", created[0].Date)
	}
}

func TestGenerateForRange(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true); err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if _, err := chores.Create(userID, "Vacuum", model.FrequencyWeekly, 30, true); err != nil {
		t.Fatalf("create weekly: %v", err)
	}

	// Wed 2024-03-13 through Tue 2024-03-19: seven daily + one Monday weekly.
	created, err := gen.GenerateForRange(userID, date(2024, 3, 13), date(2024, 3, 19))
	if err != nil {
		t.Fatalf("generate range: %v", err)
	}
	if len(created) != 8 {
		t.Fatalf("range generated %d instances, want 8", len(created))
	}
	for i := 1; i < len(created); i++ {
		if created[i].Date.Before(created[i-1].Date) {
			t.Errorf("instances out of order at %d: %v before %v", i, created[i].Date, created[i-1].Date)
		}
	}

	// Overlapping re-run extends coverage without duplicating.
	created, err = gen.GenerateForRange(userID, date(2024, 3, 18), date(2024, 3, 20))
	if err != nil {
		t.Fatalf("generate overlap: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("overlap generated %d instances, want 1", len(created))
	}
}

func TestGenerateForRangeRejectsReversed(t *testing.T) {
	gen, _, userID := setupGeneratorTest(t)

	_, err := gen.GenerateForRange(userID, date(2024, 3, 19), date(2024, 3, 13))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestGenerateForRangeSingleDay(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	created, err := gen.GenerateForRange(userID, date(2024, 3, 13), date(2024, 3, 13))
	if err != nil {
		t.Fatalf("generate single day: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("single-day range generated %d instances, want 1", len(created))
	}
}

func TestPendingForDate(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	if _, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true); err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if _, err := chores.Create(userID, "Trash", model.FrequencyDaily, 5, true); err != nil {
		t.Fatalf("create second daily: %v", err)
	}

	day := date(2024, 3, 13)
	created, err := gen.GenerateForDate(userID, &day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("generated %d instances, want 2", len(created))
	}

	if _, err := gen.Complete(created[0].ID, 12); err != nil {
		t.Fatalf("complete: %v", err)
	}

	pending, err := gen.PendingForDate(userID, &day)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != created[1].ID {
		t.Errorf("pending instance = %d, want %d", pending[0].ID, created[1].ID)
	}
}

func TestCompleteOverwrites(t *testing.T) {
	gen, chores, userID := setupGeneratorTest(t)

	c, err := chores.Create(userID, "Dishes", model.FrequencyDaily, 15, true)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	day := date(2024, 3, 13)
	created, err := gen.GenerateForDate(userID, &day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	log := created[0]
	if log.ChoreID != c.ID {
		t.Errorf("chore_id = %d, want %d", log.ChoreID, c.ID)
	}

	updated, err := gen.Complete(log.ID, 20)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.ActualTimeMinutes != 20 {
		t.Errorf("minutes = %d, want 20", updated.ActualTimeMinutes)
	}

	updated, err = gen.Complete(log.ID, 35)
	if err != nil {
		t.Fatalf("recomplete: %v", err)
	}
	if updated.ActualTimeMinutes != 35 {
		t.Errorf("minutes after overwrite = %d, want 35", updated.ActualTimeMinutes)
	}
}

func TestCompleteMissingInstance(t *testing.T) {
	gen, _, _ := setupGeneratorTest(t)

	_, err := gen.Complete(9999, 10)
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("err = %v, want ErrInstanceNotFound", err)
	}
}
