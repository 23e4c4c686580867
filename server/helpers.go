package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/ares-safety/ares/server/models"
	"github.com/go-playground/validator"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type RequestContextKey string

// userPayload is the wire shape of a profile document - timestamps go out
// as epoch millis.
type userPayload struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	PhoneNumber      string `json:"phone_number"`
	BirthDate        int64  `json:"birth_date"`
	Address          string `json:"address"`
	EmergencyMessage string `json:"emergency_message"`
	ProfilePhotoURL  string `json:"profile_photo_url"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

type contactPayload struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	PhoneNumber       string `json:"phone_number"`
	Relationship      string `json:"relationship"`
	Priority          int    `json:"priority"`
	NotifyOnEmergency bool   `json:"notify_on_emergency"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

type sessionPayload struct {
	Token string          `json:"token"`
	User  identityPayload `json:"user"`
}

type identityPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	}

	if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeData(rw http.ResponseWriter, data interface{}) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: data})
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

func newUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		PhoneNumber:      user.PhoneNumber,
		BirthDate:        user.BirthDate,
		Address:          user.Address,
		EmergencyMessage: user.EmergencyMessage,
		ProfilePhotoURL:  user.ProfilePhotoURL,
		CreatedAt:        models.EpochMillis(user.CreatedAt),
		UpdatedAt:        models.EpochMillis(user.UpdatedAt),
	}
}

func newContactPayload(contact *models.Contact) contactPayload {
	return contactPayload{
		ID:                contact.ID,
		UserID:            contact.UserID,
		Name:              contact.Name,
		PhoneNumber:       contact.PhoneNumber,
		Relationship:      contact.Relationship,
		Priority:          contact.Priority,
		NotifyOnEmergency: contact.NotifyOnEmergency,
		CreatedAt:         models.EpochMillis(contact.CreatedAt),
		UpdatedAt:         models.EpochMillis(contact.UpdatedAt),
	}
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isValidPassword(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return isValidPhoneNumber(fl.Field().String())
	})
}

// isValidPassword mirrors the client rule: 8+ chars, 1 uppercase, 1 digit.
func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasDigit bool
	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}

	return hasUpper && hasDigit
}

func isValidPhoneNumber(phoneNumber string) bool {
	if len(phoneNumber) < 10 {
		return false
	}

	for _, char := range phoneNumber {
		if !unicode.IsDigit(char) {
			return false
		}
	}

	return true
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
