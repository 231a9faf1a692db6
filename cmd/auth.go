package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs the user in, creating the account on first login.
//
// Any running TUI picks up the new session on its next poll.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	if email == "" {
		return fmt.Errorf("%w: --email", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := repositories.NewUserRepository(db).FindOrCreate(email, cmd.String("name"))
	if err != nil {
		return fmt.Errorf("failed to find or create user: %w", err)
	}

	session, err := repositories.NewSessionRepository(db).Start(user)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	r.logger.Info("signed in", "user", user.ID(), "session", session.ID)
	return r.writePlain("✓ Signed in as %s\n", user.DisplayName())
}

// AuthLogout ends the active session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewSessionRepository(db).End(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("Not signed in\n")
		}
		return fmt.Errorf("failed to end session: %w", err)
	}

	r.logger.Info("signed out")
	return r.writePlain("✓ Signed out\n")
}

type authStatus struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"user_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Name          string    `json:"name,omitempty"`
	Since         time.Time `json:"since,omitzero"`
}

// AuthStatus reports the signed-in user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	session, err := repositories.NewSessionRepository(db).Current()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	status := authStatus{}
	if session != nil {
		status = authStatus{
			Authenticated: true,
			UserID:        session.UserID,
			Email:         session.Email,
			Name:          session.Name,
			Since:         session.StartedAt,
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, false)
	}

	if !status.Authenticated {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}
	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("Email: %s\n", status.Email)
	if status.Name != "" {
		r.writePlain("Name: %s\n", status.Name)
	}
	return r.writePlain("Since: %s\n", status.Since.Local().Format(time.DateTime))
}
