package models

import (
	"fmt"

	"github.com/ares-safety/ares/server/auth"
)

// DefaultEmergencyMessage seeds every new profile until the user writes
// their own.
const DefaultEmergencyMessage = "I am in danger! Please send help."

var (
	allFieldsExceptPassword = []string{"id",
		"email",
		"full_name",
		"phone_number",
		"birth_date",
		"address",
		"emergency_message",
		"profile_photo_url",
		"created_at",
		"updated_at",
	}

	// updatableProfileFields excludes id, email & created_at: a profile
	// update can never move a document to another identity or clobber the
	// stored creation time, even when the client sends a zero sentinel.
	updatableProfileFields = []string{"full_name",
		"phone_number",
		"birth_date",
		"address",
		"emergency_message",
		"profile_photo_url",
	}
)

type User struct {
	BaseModel
	Email            string    `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password         string    `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number"`
	BirthDate        int64     `json:"birth_date"`
	Address          string    `json:"address"`
	EmergencyMessage string    `json:"emergency_message" gorm:"not null"`
	ProfilePhotoURL  string    `json:"profile_photo_url"`
	Contacts         []Contact `json:"contacts,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) UpdateProfile(data map[string]interface{}) error {
	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableProfileFields).Updates(data).Error
}

func (user *User) AddContact(contact *Contact) error {
	contact.ID = ""
	contact.UserID = user.ID
	return db.Create(contact).Error
}

// ContactsByPriority loads the user's contacts ordered ascending by
// priority, into user.Contacts.
func (user *User) ContactsByPriority() error {
	return db.Order("priority asc").Limit(500).Find(&user.Contacts, "user_id = ?", user.ID).Error
}

// UpdateContact overwrites a contact's user-editable fields. The user_id
// scope makes cross-user mutation a silent no-op at the store level; the
// handler surfaces it as not-found.
func (user *User) UpdateContact(contactID string, data map[string]interface{}) (int64, error) {
	res := db.Table("contacts").Where("id = ? AND user_id = ?", contactID, user.ID).Updates(data)
	return res.RowsAffected, res.Error
}

func (user *User) DeleteContact(contactID string) error {
	return db.Where("user_id = ?", user.ID).Delete(&Contact{}, "id = ?", contactID).Error
}

// NotifiableContacts returns the contacts that opted into emergency
// notifications, highest priority first.
func (user *User) NotifiableContacts() ([]Contact, error) {
	contacts := []Contact{}

	err := db.Where("user_id = ? AND notify_on_emergency = true", user.ID).
		Order("priority asc").Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error

	if err != nil {
		return "", err
	}
	return user.Password, nil
}

func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	if user.EmergencyMessage == "" {
		user.EmergencyMessage = DefaultEmergencyMessage
	}

	return db.Create(user).Error
}

func DeleteUser(id interface{}) error {
	return db.Delete(&User{}, "id = ?", id).Error
}
