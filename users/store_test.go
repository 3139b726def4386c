package users

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curachef"
)

func seedData(t *testing.T, all []curachef.User) []byte {
	t.Helper()
	data, err := json.Marshal(all)
	require.NoError(t, err)
	return data
}

func TestGetUsersSeedsEmptyListOnFirstRun(t *testing.T) {
	backend := NewTestBackend(nil)
	store := NewStore(backend)

	all, err := store.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	// The seed write must have happened so the next load succeeds directly.
	data, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestGetUsersBackendFailure(t *testing.T) {
	store := NewStore(NewTestBackendWithError())

	_, err := store.GetUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load users")
}

func TestGetUsersCorruptData(t *testing.T) {
	store := NewStore(NewTestBackend([]byte("not json")))

	_, err := store.GetUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse users")
}

func TestAddUser(t *testing.T) {
	store := NewStore(NewTestBackend(nil))

	user, err := store.AddUser(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, DefaultPreferences(), user.Preferences)
	assert.NotNil(t, user.Preferences.Allergies, "slices start empty, not nil")

	all, err := store.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a@b.com", all[0].Email)
}

func TestAddUserDuplicateEmail(t *testing.T) {
	existing := seedData(t, []curachef.User{{Email: "a@b.com", Password: "x"}})
	store := NewStore(NewTestBackend(existing))

	_, err := store.AddUser(context.Background(), "a@b.com", "other")
	require.Error(t, err)
	assert.True(t, curachef.IsAuth(err))
	assert.Equal(t, "An account with this email already exists.", err.Error())
}

func TestUpdatePreferences(t *testing.T) {
	existing := seedData(t, []curachef.User{
		{Email: "a@b.com", Password: "x", Preferences: DefaultPreferences()},
		{Email: "c@d.com", Password: "y", Preferences: DefaultPreferences()},
	})
	store := NewStore(NewTestBackend(existing))

	prefs := curachef.UserPreferences{
		DietaryRestrictions: []string{"Vegan"},
		Allergies:           []string{"peanuts"},
		FavoriteCuisines:    []string{"South Indian"},
		HealthGoals:         []string{"Weight Loss"},
	}
	updated, err := store.UpdatePreferences(context.Background(), "a@b.com", prefs)
	require.NoError(t, err)
	assert.Equal(t, prefs, updated.Preferences)

	all, err := store.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, prefs, all[0].Preferences)
	assert.Equal(t, DefaultPreferences(), all[1].Preferences, "other users untouched")
}

func TestUpdatePreferencesUnknownUser(t *testing.T) {
	store := NewStore(NewTestBackend(seedData(t, []curachef.User{})))

	_, err := store.UpdatePreferences(context.Background(), "ghost@b.com", curachef.UserPreferences{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost@b.com" not found`)
}
