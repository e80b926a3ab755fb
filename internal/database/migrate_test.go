package database

import (
	"io/fs"
	"strings"
	"testing"
)

// 埋め込みマイグレーションにup/downのペアが揃っていることを検証
func TestMigrationsFS_ContainsUpDownPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file name: %s", name)
		}
	}

	if len(ups) == 0 {
		t.Fatal("expected at least one up migration")
	}
	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down counterpart", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up counterpart", base)
		}
	}
}

// usersとuser_sessionsのマイグレーションが一意性制約を含むことを検証
func TestMigrationsFS_DeclaresUniquenessConstraints(t *testing.T) {
	users, err := fs.ReadFile(migrationsFS, "migrations/0001_create_users.up.sql")
	if err != nil {
		t.Fatalf("failed to read users migration: %v", err)
	}
	if !strings.Contains(string(users), "UNIQUE") {
		t.Error("users migration should declare UNIQUE constraints on username and email")
	}

	sessions, err := fs.ReadFile(migrationsFS, "migrations/0002_create_user_sessions.up.sql")
	if err != nil {
		t.Fatalf("failed to read user_sessions migration: %v", err)
	}
	if !strings.Contains(string(sessions), "UNIQUE (user_id, session_name)") {
		t.Error("user_sessions migration should declare UNIQUE (user_id, session_name)")
	}
}
