package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstLaunchDefaultsToTrue(t *testing.T) {
	store, err := NewStore(t.TempDir(), "test-pass-phrase")
	assert.Nil(t, err)

	assert.True(t, store.IsFirstLaunch())

	assert.Nil(t, store.SetFirstLaunch(false))
	assert.False(t, store.IsFirstLaunch())
}

func TestRememberCredentialsFlag(t *testing.T) {
	store, err := NewStore(t.TempDir(), "test-pass-phrase")
	assert.Nil(t, err)

	assert.False(t, store.ShouldRememberCredentials())

	assert.Nil(t, store.SetRememberCredentials(true))
	assert.True(t, store.ShouldRememberCredentials())

	// The two flags live in the same file & don't clobber each other
	assert.Nil(t, store.SetFirstLaunch(false))
	assert.True(t, store.ShouldRememberCredentials())
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "test-pass-phrase")
	assert.Nil(t, err)

	assert.Nil(t, store.SaveCredentials("user@example.com", "Passw0rd"))

	email, password, err := store.SavedCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, "Passw0rd", password)

	// A new store over the same dir & pass phrase can still decrypt
	reopened, err := NewStore(dir, "test-pass-phrase")
	assert.Nil(t, err)

	email, _, err = reopened.SavedCredentials()
	assert.Nil(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestSavedCredentialsWithWrongPassPhrase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "test-pass-phrase")
	assert.Nil(t, err)
	assert.Nil(t, store.SaveCredentials("user@example.com", "Passw0rd"))

	other, err := NewStore(dir, "another-pass-phrase")
	assert.Nil(t, err)

	_, _, err = other.SavedCredentials()
	assert.NotNil(t, err)
}

func TestClearCredentials(t *testing.T) {
	store, err := NewStore(t.TempDir(), "test-pass-phrase")
	assert.Nil(t, err)

	// Clearing with nothing saved is fine
	assert.Nil(t, store.ClearCredentials())

	assert.Nil(t, store.SaveCredentials("user@example.com", "Passw0rd"))
	assert.Nil(t, store.ClearCredentials())

	_, _, err = store.SavedCredentials()
	assert.ErrorIs(t, err, ErrNoSavedCredentials)
}
