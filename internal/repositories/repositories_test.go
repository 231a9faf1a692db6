package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/google/go-cmp/cmp"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()

	user := models.NewUser(0, email, "Test User")
	if err := NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "test@example.com", "Test User")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}

		if retrieved.Email() != user.Email() {
			t.Errorf("expected email %s, got %s", user.Email(), retrieved.Email())
		}
	})

	t.Run("GetByEmail normalizes case", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		retrieved, err := repo.GetByEmail("  TEST@Example.com ")
		if err != nil {
			t.Fatalf("failed to get user by email: %v", err)
		}
		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}
	})

	t.Run("FindOrCreate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)

		first, err := repo.FindOrCreate("ada@example.com", "Ada")
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		second, err := repo.FindOrCreate("ada@example.com", "Ada Lovelace")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}

		if first.ID() != second.ID() {
			t.Errorf("expected same user, got %s and %s", first.ID(), second.ID())
		}
		if second.Name() != "Ada Lovelace" {
			t.Errorf("expected renamed user, got %q", second.Name())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")
		user.SetName("Renamed")

		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Name() != "Renamed" {
			t.Errorf("expected name 'Renamed', got %q", retrieved.Name())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID()); err == nil {
			t.Error("expected error when getting deleted user")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		for _, email := range []string{"user1@example.com", "user2@example.com", "user3@example.com"} {
			createTestUser(t, db, email)
		}

		retrieved, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}

		if len(retrieved) != 3 {
			t.Errorf("expected 3 users, got %d", len(retrieved))
		}

		filtered, err := repo.List(map[string]any{"email": "user2@example.com"})
		if err != nil {
			t.Fatalf("failed to list filtered users: %v", err)
		}

		if len(filtered) != 1 {
			t.Fatalf("expected 1 user, got %d", len(filtered))
		}

		if filtered[0].Email() != "user2@example.com" {
			t.Errorf("expected user2@example.com, got %s", filtered[0].Email())
		}
	})
}

func TestLibraryRepository(t *testing.T) {
	t.Run("SavedMovieIDs keeps insertion order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		user := createTestUser(t, db, "test@example.com")

		want := []models.MovieID{"603", "27205", "155"}
		for _, id := range want {
			if _, err := repo.Add(user.ID(), id); err != nil {
				t.Fatalf("failed to add %s: %v", id, err)
			}
		}

		got, err := repo.SavedMovieIDs(user.ID())
		if err != nil {
			t.Fatalf("failed to list saved ids: %v", err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("saved ids mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("SavedMovieIDs is scoped to user", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		alice := createTestUser(t, db, "alice@example.com")
		bob := createTestUser(t, db, "bob@example.com")

		if _, err := repo.Add(alice.ID(), "1"); err != nil {
			t.Fatalf("failed to add: %v", err)
		}
		if _, err := repo.Add(bob.ID(), "2"); err != nil {
			t.Fatalf("failed to add: %v", err)
		}

		got, err := repo.SavedMovieIDs(bob.ID())
		if err != nil {
			t.Fatalf("failed to list saved ids: %v", err)
		}
		if diff := cmp.Diff([]models.MovieID{"2"}, got); diff != "" {
			t.Errorf("saved ids mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("SavedMovieIDs empty library", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		got, err := NewLibraryRepository(db).SavedMovieIDs(user.ID())
		if err != nil {
			t.Fatalf("failed to list saved ids: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no ids, got %v", got)
		}
	})

	t.Run("Remove then re-add moves to end", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		user := createTestUser(t, db, "test@example.com")

		for _, id := range []models.MovieID{"1", "2", "3"} {
			if _, err := repo.Add(user.ID(), id); err != nil {
				t.Fatalf("failed to add %s: %v", id, err)
			}
		}

		if err := repo.Remove(user.ID(), "1"); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		if _, err := repo.Add(user.ID(), "1"); err != nil {
			t.Fatalf("failed to re-add: %v", err)
		}

		got, err := repo.SavedMovieIDs(user.ID())
		if err != nil {
			t.Fatalf("failed to list saved ids: %v", err)
		}
		if diff := cmp.Diff([]models.MovieID{"2", "3", "1"}, got); diff != "" {
			t.Errorf("saved ids mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("one active entry per movie", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		user := createTestUser(t, db, "test@example.com")

		if _, err := repo.Add(user.ID(), "603"); err != nil {
			t.Fatalf("failed to add: %v", err)
		}
		if _, err := repo.Add(user.ID(), "603"); !errors.Is(err, shared.ErrAlreadySaved) {
			t.Errorf("expected ErrAlreadySaved, got %v", err)
		}

		// a second writer that passed the existence check before the first insert landed
		err := repo.Create(models.NewLibraryEntry(0, user.ID(), "603"))
		if err == nil {
			t.Fatal("expected the unique index to reject a duplicate entry")
		}
		if !isDuplicateSave(err) {
			t.Errorf("expected a duplicate save error, got %v", err)
		}

		other := createTestUser(t, db, "other@example.com")
		if _, err := repo.Add(other.ID(), "603"); err != nil {
			t.Errorf("expected another user to save the same movie, got %v", err)
		}

		got, err := repo.SavedMovieIDs(user.ID())
		if err != nil {
			t.Fatalf("failed to list saved ids: %v", err)
		}
		if diff := cmp.Diff([]models.MovieID{"603"}, got); diff != "" {
			t.Errorf("saved ids mismatch (-want +got):
%s", diff)
		}
	})

	t.Run("Get & Update & Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		user := createTestUser(t, db, "test@example.com")

		entry, err := repo.Add(user.ID(), "603")
		if err != nil {
			t.Fatalf("failed to add: %v", err)
		}

		retrieved, err := repo.Get(entry.ID())
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if retrieved.MovieID() != "603" {
			t.Errorf("expected movie 603, got %s", retrieved.MovieID())
		}

		if err := repo.Update(retrieved); err != nil {
			t.Fatalf("failed to update entry: %v", err)
		}

		if err := repo.Delete(entry.ID()); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}
		if _, err := repo.Get(entry.ID()); err == nil {
			t.Error("expected error when getting deleted entry")
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Current without session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		session, err := NewSessionRepository(db).Current()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session != nil {
			t.Errorf("expected nil session, got %+v", session)
		}
	})

	t.Run("Start & Current", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		user := createTestUser(t, db, "test@example.com")

		started, err := repo.Start(user)
		if err != nil {
			t.Fatalf("failed to start session: %v", err)
		}

		current, err := repo.Current()
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if current == nil {
			t.Fatal("expected active session")
		}
		if !current.Same(started) {
			t.Errorf("expected session %s, got %s", started.ID, current.ID)
		}
		if current.Email != "test@example.com" {
			t.Errorf("expected email test@example.com, got %s", current.Email)
		}
	})

	t.Run("Start replaces previous session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		alice := createTestUser(t, db, "alice@example.com")
		bob := createTestUser(t, db, "bob@example.com")

		if _, err := repo.Start(alice); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}
		if _, err := repo.Start(bob); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}

		current, err := repo.Current()
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if current == nil || current.UserID != bob.ID() {
			t.Errorf("expected bob's session, got %+v", current)
		}

		var active int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE ended_at IS NULL`).Scan(&active); err != nil {
			t.Fatalf("failed to count sessions: %v", err)
		}
		if active != 1 {
			t.Errorf("expected 1 active session, got %d", active)
		}
	})

	t.Run("End", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		user := createTestUser(t, db, "test@example.com")

		if _, err := repo.Start(user); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}
		if err := repo.End(); err != nil {
			t.Fatalf("failed to end session: %v", err)
		}

		current, err := repo.Current()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if current != nil {
			t.Errorf("expected nil session, got %+v", current)
		}
	})
}

func TestMovieCacheRepository(t *testing.T) {
	t.Run("Put & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieCacheRepository(db)
		payload := []byte(`{"id":603,"title":"The Matrix"}`)

		if err := repo.Put("603", payload); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		got, fetchedAt, err := repo.Get("603")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("expected %s, got %s", payload, got)
		}
		if fetchedAt.IsZero() {
			t.Error("expected fetched_at to be set")
		}
	})

	t.Run("Put overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieCacheRepository(db)
		if err := repo.Put("603", []byte(`{"v":1}`)); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		if err := repo.Put("603", []byte(`{"v":2}`)); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		got, _, err := repo.Get("603")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if string(got) != `{"v":2}` {
			t.Errorf("expected overwritten payload, got %s", got)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieCacheRepository(db)
		if err := repo.Put("603", []byte(`{}`)); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		removed, err := repo.Purge(time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("failed to purge: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}

		if _, _, err := repo.Get("603"); err == nil {
			t.Error("expected miss after purge")
		}
	})
}
