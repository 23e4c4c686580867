package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func createTestUser(t *testing.T, email string) *User {
	user := &User{
		Email:    email,
		Password: "Passw0rd",
		FullName: "Ada Lovelace",
	}
	assert.Nil(t, CreateUser(user))

	return user
}

func TestCreateUser(t *testing.T) {
	InitializeTestDb()

	user := createTestUser(t, "ada@example.com")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "Passw0rd", user.Password, "Expected the password to be stored hashed")
	assert.Equal(t, DefaultEmergencyMessage, user.EmergencyMessage)

	found, err := FindUserBy("email", "ada@example.com")
	assert.Nil(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Empty(t, found.Password, "Expected lookups to never load the password hash")
}

func TestUpdateProfileNeverTouchesProtectedColumns(t *testing.T) {
	InitializeTestDb()

	user := createTestUser(t, "ada@example.com")

	err := user.UpdateProfile(map[string]interface{}{
		"full_name":  "Ada King",
		"email":      "stolen@example.com",
		"created_at": 0,
	})
	assert.Nil(t, err)

	found, err := FindUserBy("id", user.ID)
	assert.Nil(t, err)
	assert.Equal(t, "Ada King", found.FullName)
	assert.Equal(t, "ada@example.com", found.Email, "Expected email to be off-limits for profile updates")
	assert.Equal(t, user.CreatedAt.Unix(), found.CreatedAt.Unix(), "Expected the creation time to survive a zero sentinel")
}

func TestContactsByPriority(t *testing.T) {
	InitializeTestDb()

	user := createTestUser(t, "ada@example.com")
	assert.Nil(t, user.AddContact(&Contact{Name: "Dad", PhoneNumber: "0123456780", Priority: 2}))
	assert.Nil(t, user.AddContact(&Contact{Name: "Mom", PhoneNumber: "0123456789", Priority: 1}))

	assert.Nil(t, user.ContactsByPriority())
	assert.Len(t, user.Contacts, 2)
	assert.Equal(t, "Mom", user.Contacts[0].Name)
	assert.Equal(t, "Dad", user.Contacts[1].Name)
}

func TestUpdateContactIsScopedToOwner(t *testing.T) {
	InitializeTestDb()

	owner := createTestUser(t, "ada@example.com")
	other := createTestUser(t, "grace@example.com")

	contact := &Contact{Name: "Mom", PhoneNumber: "0123456789"}
	assert.Nil(t, owner.AddContact(contact))

	rowsAffected, err := other.UpdateContact(contact.ID, map[string]interface{}{"name": "Hijacked"})
	assert.Nil(t, err)
	assert.Zero(t, rowsAffected, "Expected a cross-user update to touch nothing")

	rowsAffected, err = owner.UpdateContact(contact.ID, map[string]interface{}{"name": "Mother"})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), rowsAffected)

	found, err := FindContact(contact.ID)
	assert.Nil(t, err)
	assert.Equal(t, "Mother", found.Name)
}

func TestNotifiableContacts(t *testing.T) {
	InitializeTestDb()

	user := createTestUser(t, "ada@example.com")
	assert.Nil(t, user.AddContact(&Contact{Name: "Mom", PhoneNumber: "0123456789", Priority: 1, NotifyOnEmergency: true}))

	// Opting out has to go through an update - on create, gorm swaps the
	// false zero value for the column default.
	dad := &Contact{Name: "Dad", PhoneNumber: "0123456780", Priority: 2}
	assert.Nil(t, user.AddContact(dad))
	_, err := user.UpdateContact(dad.ID, map[string]interface{}{"notify_on_emergency": false})
	assert.Nil(t, err)

	contacts, err := user.NotifiableContacts()
	assert.Nil(t, err)
	assert.Len(t, contacts, 1)
	assert.Equal(t, "Mom", contacts[0].Name)
}

func TestDeleteUser(t *testing.T) {
	InitializeTestDb()

	user := createTestUser(t, "ada@example.com")
	assert.Nil(t, DeleteUser(user.ID))

	_, err := FindUserBy("id", user.ID)
	assert.NotNil(t, err)
}
