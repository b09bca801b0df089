package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/dayline/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *sql.DB, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("sess@example.com", "Sess", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewSessionStore(db), db, u.ID
}

func TestSessionCreate(t *testing.T) {
	ss, _, uid := setupSessionTestDB(t)

	sess, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	other, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create second session: %v", err)
	}
	if other.Token == sess.Token {
		t.Error("expected distinct tokens")
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, _, uid := setupSessionTestDB(t)

	sess, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != uid {
		t.Fatalf("got %v, want user %d", got, uid)
	}

	got, err = ss.GetByToken("no-such-token")
	if err != nil {
		t.Fatalf("get unknown token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionExpiredIsInvisible(t *testing.T) {
	ss, db, uid := setupSessionTestDB(t)

	expired := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Exec(
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		"stale-token", uid, expired,
	); err != nil {
		t.Fatalf("insert stale session: %v", err)
	}

	got, err := ss.GetByToken("stale-token")
	if err != nil {
		t.Fatalf("get stale token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	ss, _, uid := setupSessionTestDB(t)

	sess, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := ss.DeleteByToken(sess.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted token: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, db, uid := setupSessionTestDB(t)

	live, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		"stale-token", uid, time.Now().UTC().Add(-time.Hour),
	); err != nil {
		t.Fatalf("insert stale session: %v", err)
	}

	if err := ss.DeleteExpired(); err != nil {
		t.Fatalf("delete expired: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("sessions remaining = %d, want 1", count)
	}

	got, err := ss.GetByToken(live.Token)
	if err != nil {
		t.Fatalf("get live token: %v", err)
	}
	if got == nil {
		t.Error("expected live session to survive cleanup")
	}
}
