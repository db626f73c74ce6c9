package chanstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:", 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_RegisterFind(t *testing.T) {
	store := openTestStore(t)

	ci, err := store.Register("#Alpha", "alice")
	require.NoError(t, err)
	assert.Equal(t, "#Alpha", ci.Name)
	assert.Equal(t, DefaultSetLevel, ci.SetLevel)

	found, err := store.Find("#alpha")
	require.NoError(t, err, "lookups ignore case")
	assert.Equal(t, "alice", found.Founder)

	_, err = store.Register("#ALPHA", "bob")
	assert.Equal(t, ErrAlreadyRegistered, err)

	_, err = store.Register("alpha", "bob")
	assert.Equal(t, ErrInvalidName, err)

	_, err = store.Find("#missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_Setters(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Register("#alpha", "alice")
	require.NoError(t, err)

	require.NoError(t, store.SetDescription("#alpha", "a channel"))
	require.NoError(t, store.SetURL("#alpha", "https://example.org"))
	require.NoError(t, store.SetEmail("#alpha", "ops@example.org"))
	require.NoError(t, store.SetEntryMsg("#alpha", "welcome"))
	require.NoError(t, store.SetFounder("#alpha", "bob"))
	require.NoError(t, store.SetFlag("#alpha", FlagSecure, true))
	require.NoError(t, store.SetFlag("#alpha", FlagPeace, true))
	require.NoError(t, store.SetFlag("#alpha", FlagPeace, false))

	ci, err := store.Find("#alpha")
	require.NoError(t, err)
	assert.Equal(t, "a channel", ci.Description)
	assert.Equal(t, "https://example.org", ci.URL)
	assert.Equal(t, "ops@example.org", ci.Email)
	assert.Equal(t, "welcome", ci.EntryMsg)
	assert.Equal(t, "bob", ci.Founder)
	assert.True(t, ci.HasFlag(FlagSecure))
	assert.False(t, ci.HasFlag(FlagPeace))

	assert.Equal(t, ErrNotFound, store.SetDescription("#missing", "x"))
}

func TestStore_AccessAndDrop(t *testing.T) {
	store := openTestStore(t)
	ci, err := store.Register("#alpha", "alice")
	require.NoError(t, err)

	require.NoError(t, store.SetAccess("#alpha", "bob", 50))
	require.NoError(t, store.SetAccess("#ALPHA", "BOB", 60))

	level, err := store.AccessLevel(ci, "bob")
	require.NoError(t, err)
	assert.Equal(t, 60, level)

	level, err = store.AccessLevel(ci, "Alice")
	require.NoError(t, err)
	assert.Equal(t, LevelFounder, level)

	entries, err := store.AccessList("#alpha")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, ErrNotFound, store.SetAccess("#missing", "bob", 1))

	require.NoError(t, store.Drop("#alpha"))
	assert.Equal(t, ErrNotFound, store.Drop("#alpha"))

	entries, err = store.AccessList("#alpha")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_UserPerm(t *testing.T) {
	store := openTestStore(t)

	level, err := store.UserPerm("carol")
	require.NoError(t, err)
	assert.Zero(t, level)

	require.NoError(t, store.SetUserPerm("carol", 100))
	require.NoError(t, store.SetUserPerm("dave", 99))

	assert.True(t, store.IsServicesOper("carol"))
	assert.False(t, store.IsServicesOper("dave"))
	assert.False(t, store.IsServicesOper(""))
}

func TestStore_CanConfigure(t *testing.T) {
	store := openTestStore(t)
	ci, err := store.Register("#alpha", "alice")
	require.NoError(t, err)

	require.NoError(t, store.SetAccess("#alpha", "bob", 50))
	require.NoError(t, store.SetUserPerm("carol", 100))

	assert.True(t, store.CanConfigure("alice", ci), "founder")
	assert.True(t, store.CanConfigure("carol", ci), "services operator")
	assert.False(t, store.CanConfigure("bob", ci), "below the SET level")
	assert.False(t, store.CanConfigure("eve", ci), "no access")
	assert.False(t, store.CanConfigure("", ci))
	assert.False(t, store.CanConfigure("alice", nil))

	require.NoError(t, store.SetSetLevel("#alpha", 40))
	ci, err = store.Find("#alpha")
	require.NoError(t, err)
	assert.True(t, store.CanConfigure("bob", ci))
	assert.False(t, store.CanConfigure("eve", ci), "level 0 never passes")
}
