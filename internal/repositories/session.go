package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
)

// SessionRepository stores the active session. Starting a session ends any previous one.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Current returns the active session, or nil when nobody is signed in.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `
		SELECT s.id, s.user_id, u.email, u.name, s.started_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id AND u.deleted_at IS NULL
		WHERE s.ended_at IS NULL
		ORDER BY s.started_at DESC
		LIMIT 1
	`

	var s models.Session
	err := r.db.QueryRow(query).Scan(&s.ID, &s.UserID, &s.Email, &s.Name, &s.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

// Start ends any active session and begins a new one for user.
func (r *SessionRepository) Start(user *models.User) (*models.Session, error) {
	if user == nil || user.ID() == "" {
		return nil, fmt.Errorf("%w: user is required", shared.ErrInvalidArgument)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.Exec(`UPDATE sessions SET ended_at = ? WHERE ended_at IS NULL`, now); err != nil {
		return nil, fmt.Errorf("failed to end previous session: %w", err)
	}

	session := &models.Session{
		ID:        shared.GenerateID(),
		UserID:    user.ID(),
		Email:     user.Email(),
		Name:      user.Name(),
		StartedAt: now,
	}
	if _, err := tx.Exec(`INSERT INTO sessions (id, user_id, started_at) VALUES (?, ?, ?)`, session.ID, session.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return session, nil
}

// End signs out. Ending when nobody is signed in returns [shared.ErrNotAuthenticated].
func (r *SessionRepository) End() error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE ended_at IS NULL`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return affectedOne(result, shared.ErrNotAuthenticated)
}
