package users

import (
	"context"
	"log/slog"
	"strings"

	"curachef"
)

// Service tracks the signed-in user over the store. Auth failures stay
// inside this flow as AuthError values and never touch generation state.
type Service struct {
	store   *Store
	current *curachef.User
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Current returns the signed-in user, or nil.
func (s *Service) Current() *curachef.User {
	return s.current
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*curachef.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, curachef.NewAuthError("Email and password are required.")
	}

	user, err := s.store.AddUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	slog.Info("AUTH: Account created", "email", email)
	s.current = user
	return user, nil
}

// SignIn re-reads the store on every attempt in case another process
// registered a user, then compares credentials by equality.
func (s *Service) SignIn(ctx context.Context, email, password string) (*curachef.User, error) {
	all, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].Email == email && all[i].Password == password {
			slog.Info("AUTH: Signed in", "email", email)
			s.current = &all[i]
			return s.current, nil
		}
	}

	return nil, curachef.NewAuthError("Invalid email or password.")
}

// SignOut clears the current user. Stored records are untouched.
func (s *Service) SignOut() {
	s.current = nil
}

// SavePreferences persists new preferences for the signed-in user and
// refreshes the in-memory record. This is the only way preferences change;
// generation never mutates them.
func (s *Service) SavePreferences(ctx context.Context, prefs curachef.UserPreferences) (*curachef.User, error) {
	if s.current == nil {
		return nil, curachef.NewAuthError("Please sign in to save preferences.")
	}

	updated, err := s.store.UpdatePreferences(ctx, s.current.Email, prefs)
	if err != nil {
		return nil, err
	}

	slog.Info("AUTH: Preferences saved", "email", updated.Email)
	s.current = updated
	return updated, nil
}
