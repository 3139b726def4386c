// Package users implements the flat-list user store and the authentication
// flow on top of it. The store carries no transactional guarantees:
// concurrent writers race and the last write wins.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"curachef"
)

// Backend persists the raw user list bytes.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// TestBackend is a simple in-memory implementation for testing
type TestBackend struct {
	data []byte
	err  error
}

func NewTestBackend(data []byte) *TestBackend {
	return &TestBackend{data: data}
}

func NewTestBackendWithError() *TestBackend {
	return &TestBackend{err: errors.New("backend unavailable")}
}

func (t *TestBackend) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.data == nil {
		return nil, fs.ErrNotExist
	}
	return t.data, nil
}

func (t *TestBackend) Save(ctx context.Context, data []byte) error {
	if t.err != nil {
		return t.err
	}
	t.data = data
	return nil
}

// Store holds the flat user list behind a byte backend.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// GetUsers returns every stored user. A missing backend object seeds an
// empty list rather than failing, matching first-run behavior.
func (s *Store) GetUsers(ctx context.Context) ([]curachef.User, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if serr := s.save(ctx, []curachef.User{}); serr != nil {
				return nil, fmt.Errorf("failed to seed user store: %w", serr)
			}
			return []curachef.User{}, nil
		}
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	var users []curachef.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	return users, nil
}

// AddUser creates a new account with default empty preferences. Fails with
// an AuthError when the email is already present.
func (s *Store) AddUser(ctx context.Context, email, password string) (*curachef.User, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == email {
			return nil, curachef.NewAuthError("An account with this email already exists.")
		}
	}

	newUser := curachef.User{
		Email:       email,
		Password:    password,
		Preferences: DefaultPreferences(),
	}

	if err := s.save(ctx, append(users, newUser)); err != nil {
		return nil, err
	}
	return &newUser, nil
}

// UpdatePreferences replaces the preferences for one user. This is the only
// mutation path for a preference record.
func (s *Store) UpdatePreferences(ctx context.Context, email string, prefs curachef.UserPreferences) (*curachef.User, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	var updated *curachef.User
	for i := range users {
		if users[i].Email == email {
			users[i].Preferences = prefs
			updated = &users[i]
			break
		}
	}
	if updated == nil {
		return nil, fmt.Errorf("user %q not found", email)
	}

	if err := s.save(ctx, users); err != nil {
		return nil, err
	}
	return updated, nil
}

// DefaultPreferences returns the empty preference record a new account
// starts with.
func DefaultPreferences() curachef.UserPreferences {
	return curachef.UserPreferences{
		DietaryRestrictions: []string{},
		Allergies:           []string{},
		FavoriteCuisines:    []string{},
		HealthGoals:         []string{},
	}
}

func (s *Store) save(ctx context.Context, users []curachef.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}
