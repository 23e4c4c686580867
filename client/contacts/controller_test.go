package contacts

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

func TestFormDefaults(t *testing.T) {
	controller := NewController(newTestStore())

	form := controller.FormState()
	assert.Equal(t, DEFAULT_CONTACT_PRIORITY, form.Priority)
	assert.True(t, form.NotifyOnEmergency)
	assert.False(t, form.IsEditing)
	assert.False(t, form.IsFormValid)
}

func TestSaveContactRoundTrip(t *testing.T) {
	ctx := context.Background()
	controller := NewController(newTestStore())

	controller.SetName("Mom")
	controller.SetPhoneNumber("0123456789")
	controller.SetRelationship("Parent")
	assert.True(t, controller.FormState().IsFormValid)

	controller.SaveContact(ctx)

	assert.True(t, controller.FormState().IsSaved)
	list := controller.ListState()
	assert.Len(t, list.Contacts, 1)
	assert.NotEmpty(t, list.Contacts[0].ID, "Expected the store to assign an id")
	assert.Equal(t, "Mom", list.Contacts[0].Name)
	assert.Equal(t, DEFAULT_CONTACT_PRIORITY, list.Contacts[0].Priority)
	assert.True(t, list.Contacts[0].NotifyOnEmergency)
}

func TestSaveContactIsNoOpWhileInvalid(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	controller := NewController(store)

	controller.SetName("Mom")
	controller.SetPhoneNumber("012345678") // one digit short

	controller.SaveContact(ctx)

	assert.False(t, controller.FormState().IsSaved)
	assert.Empty(t, store.Contacts)
}

func TestLoadContactsOrdersByPriority(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-2", Name: "Dad", PhoneNumber: "0123456780", Priority: 2},
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 1},
	}
	controller := NewController(store)

	controller.LoadContacts(ctx)

	list := controller.ListState()
	assert.Equal(t, []string{"Mom", "Dad"}, []string{list.Contacts[0].Name, list.Contacts[1].Name})
}

func TestLoadContactsSurfacesStoreError(t *testing.T) {
	store := newTestStore()
	store.ListErr = errors.New("ares server is unreachable")
	controller := NewController(store)

	controller.LoadContacts(context.Background())

	assert.Equal(t, "ares server is unreachable", controller.ListState().ErrorMessage)
}

func TestLoadContactToEdit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Relationship: "Parent", Priority: 2, NotifyOnEmergency: true},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)

	controller.LoadContactToEdit("c-1")

	form := controller.FormState()
	assert.True(t, form.IsEditing)
	assert.True(t, form.IsFormValid)
	assert.Equal(t, "c-1", form.ContactID)
	assert.Equal(t, "Mom", form.Name)
	assert.Equal(t, "Parent", form.Relationship)
	assert.Equal(t, 2, form.Priority)
}

func TestLoadContactToEditWithUnknownIdLeavesFormUntouched(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 1},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)
	controller.SetName("Half-typed")

	controller.LoadContactToEdit("no-such-id")

	form := controller.FormState()
	assert.False(t, form.IsEditing)
	assert.Equal(t, "Half-typed", form.Name)
}

func TestSaveContactWhileEditingOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", UserID: "user-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 1},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)
	controller.LoadContactToEdit("c-1")

	controller.SetName("Mother")
	controller.SaveContact(ctx)

	assert.True(t, controller.FormState().IsSaved)
	list := controller.ListState()
	assert.Len(t, list.Contacts, 1)
	assert.Equal(t, "Mother", list.Contacts[0].Name)
	assert.Equal(t, "c-1", list.Contacts[0].ID)
}

func TestDeleteContactReloadsList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 1},
		{ID: "c-2", Name: "Dad", PhoneNumber: "0123456780", Priority: 2},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)

	controller.DeleteContact(ctx, "c-1")

	list := controller.ListState()
	assert.Len(t, list.Contacts, 1)
	assert.Equal(t, "c-2", list.Contacts[0].ID)
}

func TestDeleteContactSurfacesStoreError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 1},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)

	store.DeleteErr = errors.New("ares server is unreachable")
	controller.DeleteContact(ctx, "c-1")

	list := controller.ListState()
	assert.Equal(t, "ares server is unreachable", list.ErrorMessage)
	assert.Len(t, list.Contacts, 1, "Expected the list to keep its last good contents")
}

func TestResetForm(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	store.Contacts = []api.EmergencyContact{
		{ID: "c-1", Name: "Mom", PhoneNumber: "0123456789", Priority: 3},
	}
	controller := NewController(store)
	controller.LoadContacts(ctx)
	controller.LoadContactToEdit("c-1")

	controller.ResetForm()
	assert.Equal(t, defaultFormState(), controller.FormState())

	// Resetting again changes nothing
	controller.ResetForm()
	assert.Equal(t, defaultFormState(), controller.FormState())
}
