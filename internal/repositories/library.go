package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/mattn/go-sqlite3"
)

var _ models.Repository[*models.LibraryEntry] = (*LibraryRepository)(nil)

const entryColumns = `id, sequence, user_id, movie_id, created_at, updated_at, deleted_at`

// LibraryRepository persists the movies each user has saved.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new [LibraryRepository] with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Create inserts a new entry with generated ID and sequence
func (r *LibraryRepository) Create(entry *models.LibraryEntry) error {
	sequence, err := NextSequence(r.db, "library_entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	entry.SetID(shared.GenerateID())
	entry.SetSequence(sequence)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO library_entries (id, sequence, user_id, movie_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, entry.ID(), sequence, entry.UserID(), entry.MovieID().String(), entry.CreatedAt(), entry.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert library entry: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID, excluding soft-deleted entries
func (r *LibraryRepository) Get(id string) (*models.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE id = ? AND deleted_at IS NULL`

	entry, err := scanEntry(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: entry %s", shared.ErrNotSaved, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query library entry: %w", err)
	}
	return entry, nil
}

// Update refreshes the entry's updated_at timestamp; entries carry no other mutable data.
func (r *LibraryRepository) Update(entry *models.LibraryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	entry.SetUpdatedAt(now)

	result, err := r.db.Exec(`UPDATE library_entries SET updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update library entry: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: entry %s", shared.ErrNotSaved, entry.ID()))
}

// Delete soft-deletes an entry by ID
func (r *LibraryRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE library_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete library entry: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: entry %s", shared.ErrNotSaved, id))
}

// List retrieves entries in sequence order. Supported criteria: "user_id", "movie_id".
func (r *LibraryRepository) List(criteria map[string]any) ([]*models.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if movieID, ok := criteria["movie_id"].(models.MovieID); ok && !movieID.IsZero() {
		query += " AND movie_id = ?"
		args = append(args, movieID.String())
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LibraryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// SavedMovieIDs returns the movie ids saved by userID in the order they were added.
func (r *LibraryRepository) SavedMovieIDs(userID string) ([]models.MovieID, error) {
	entries, err := r.List(map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}

	ids := make([]models.MovieID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MovieID())
	}
	return ids, nil
}

// Add saves movieID to userID's library. Saving the same movie twice returns [shared.ErrAlreadySaved].
//
// The check is repeated by the idx_library_entries_saved unique index, which catches concurrent adds.
func (r *LibraryRepository) Add(userID string, movieID models.MovieID) (*models.LibraryEntry, error) {
	existing, err := r.List(map[string]any{"user_id": userID, "movie_id": movieID})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrAlreadySaved, movieID)
	}

	entry := models.NewLibraryEntry(0, userID, movieID)
	if err := r.Create(entry); err != nil {
		if isDuplicateSave(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAlreadySaved, movieID)
		}
		return nil, err
	}
	return entry, nil
}

// isDuplicateSave reports whether err is a violation of the one-active-entry-per-movie index.
func isDuplicateSave(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "library_entries.movie_id")
}

// Remove deletes movieID from userID's library.
func (r *LibraryRepository) Remove(userID string, movieID models.MovieID) error {
	result, err := r.db.Exec(
		`UPDATE library_entries SET deleted_at = ? WHERE user_id = ? AND movie_id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), userID, movieID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to remove library entry: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: %s", shared.ErrNotSaved, movieID))
}

func scanEntry(s scanner) (*models.LibraryEntry, error) {
	var (
		id        string
		sequence  int
		userID    string
		movieID   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &userID, &movieID, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	entry := models.NewLibraryEntry(sequence, userID, models.MovieID(movieID))
	entry.SetID(id)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}
	return entry, nil
}
