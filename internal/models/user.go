package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var _ Model = (*User)(nil)

// User owns a movie library.
type User struct {
	timestamps
	id       string
	sequence int
	email    string
	name     string
}

// NewUser creates a [User]; the ID is assigned on persistence.
func NewUser(sequence int, email, name string) *User {
	return &User{
		timestamps: newTimestamps(),
		sequence:   sequence,
		email:      strings.TrimSpace(strings.ToLower(email)),
		name:       strings.TrimSpace(name),
	}
}

func (u *User) ID() string        { return u.id }
func (u *User) Sequence() int     { return u.sequence }
func (u *User) Email() string     { return u.email }
func (u *User) Name() string      { return u.name }
func (u *User) SetID(id string)   { u.id = id }
func (u *User) SetName(n string)  { u.name = strings.TrimSpace(n) }
func (u *User) SetSequence(s int) { u.sequence = s }

// DisplayName is the name when set, otherwise the email.
func (u *User) DisplayName() string {
	if u.name != "" {
		return u.name
	}
	return u.email
}

func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := mail.ParseAddress(u.email); err != nil {
		return fmt.Errorf("invalid email %q", u.email)
	}
	return nil
}

// Session is the signed-in user context. A nil *Session means nobody is signed in.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	StartedAt time.Time
}

// Same reports whether s and other describe the same session; two nil sessions are the same.
func (s *Session) Same(other *Session) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return s.ID == other.ID
}
