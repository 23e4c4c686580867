package profile

import (
	"context"
	"testing"

	"github.com/ares-safety/ares/client/api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestStore() *api.StoreStub {
	return &api.StoreStub{Identity: api.Identity{ID: "user-1", Email: "user@example.com"}}
}

func TestLoadProfileBootstrapsNewUser(t *testing.T) {
	store := newTestStore()
	controller := NewController(store)

	controller.LoadProfile(context.Background())

	state := controller.State()
	assert.True(t, store.BootstrappedUser, "Expected the store to create a default document")
	assert.True(t, state.IsNewUser)
	assert.True(t, state.IsEditing, "Expected a new user to land in edit mode")
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, "user@example.com", state.Email)
	assert.Equal(t, api.DefaultEmergencyMessage, state.EmergencyMessage)
	assert.False(t, state.IsFormValid)
}

func TestLoadProfileExistingUser(t *testing.T) {
	store := newTestStore()
	store.Profile = &api.User{
		ID:               "user-1",
		Email:            "user@example.com",
		FullName:         "Ada Lovelace",
		PhoneNumber:      "0123456789",
		EmergencyMessage: "Please call me back",
		CreatedAt:        12345,
		UpdatedAt:        12345,
	}
	controller := NewController(store)

	controller.LoadProfile(context.Background())

	state := controller.State()
	assert.False(t, state.IsNewUser)
	assert.False(t, state.IsEditing)
	assert.Equal(t, "Ada Lovelace", state.FullName)
	assert.True(t, state.IsFormValid)
}

func TestLoadProfileErrorLeavesFieldsUntouched(t *testing.T) {
	store := newTestStore()
	store.ProfileErr = errors.New("ares server is unreachable")
	controller := NewController(store)

	controller.LoadProfile(context.Background())

	state := controller.State()
	assert.Equal(t, "ares server is unreachable", state.ErrorMessage)
	assert.Empty(t, state.UserID)
	assert.Equal(t, api.DefaultEmergencyMessage, state.EmergencyMessage)

	// RetryLoading succeeds once the store recovers
	store.ProfileErr = nil
	controller.RetryLoading(context.Background())

	state = controller.State()
	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, "user-1", state.UserID)
}

func TestSaveProfilePreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Profile = &api.User{
		ID:               "user-1",
		Email:            "user@example.com",
		FullName:         "Ada Lovelace",
		PhoneNumber:      "0123456789",
		EmergencyMessage: "Please call me back",
		CreatedAt:        12345,
		UpdatedAt:        12345,
	}
	controller := NewController(store)
	controller.LoadProfile(ctx)

	controller.ToggleEditMode()
	controller.SetAddress("1 Safety Way")
	controller.SaveProfile(ctx)

	state := controller.State()
	assert.True(t, state.UpdateSuccess)
	assert.False(t, state.IsEditing)
	assert.NotNil(t, store.UpdatedProfile)
	assert.Equal(t, "1 Safety Way", store.UpdatedProfile.Address)
	assert.Equal(t, int64(12345), store.UpdatedProfile.CreatedAt, "Expected the stored creation time to survive a save")

	controller.ResetUpdateSuccess()
	assert.False(t, controller.State().UpdateSuccess)
}

func TestSaveProfileCompletesNewUserFlow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	controller := NewController(store)
	controller.LoadProfile(ctx)

	controller.SetFullName("Ada Lovelace")
	controller.SetPhoneNumber("0123456789")
	controller.SaveProfile(ctx)

	state := controller.State()
	assert.True(t, state.UpdateSuccess)
	assert.False(t, state.IsNewUser)
	assert.False(t, state.IsEditing)
}

func TestSaveProfileIsNoOpWhileInvalid(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	controller := NewController(store)
	controller.LoadProfile(ctx)

	// Full name is still blank, so the gate stays closed
	controller.SetPhoneNumber("0123456789")
	controller.SaveProfile(ctx)

	assert.Nil(t, store.UpdatedProfile)
	assert.False(t, controller.State().UpdateSuccess)
}

func TestSaveProfileSurfacesStoreError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.SaveProfileErr = errors.New("ares server is unreachable")
	controller := NewController(store)
	controller.LoadProfile(ctx)

	controller.SetFullName("Ada Lovelace")
	controller.SetPhoneNumber("0123456789")
	controller.SaveProfile(ctx)

	state := controller.State()
	assert.False(t, state.UpdateSuccess)
	assert.True(t, state.IsEditing, "Expected edit mode to stay open after a failed save")
	assert.Equal(t, "ares server is unreachable", state.ErrorMessage)
}

func TestPhoneValidationFlag(t *testing.T) {
	controller := NewController(newTestStore())

	controller.SetPhoneNumber("012")
	assert.False(t, controller.State().IsPhoneValid)

	controller.SetPhoneNumber("0123456789")
	assert.True(t, controller.State().IsPhoneValid)
}
