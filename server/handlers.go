package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ares-safety/ares/server/auth"
	"github.com/ares-safety/ares/server/auth/key"
	"github.com/ares-safety/ares/server/models"
	"github.com/ares-safety/ares/server/work"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const DELIVER_ALERT_HANDLER = "deliverAlert"

var updatableProfileFields = map[string]bool{
	"full_name":         true,
	"phone_number":      true,
	"birth_date":        true,
	"address":           true,
	"emergency_message": true,
	"profile_photo_url": true,
}

var updatableContactFields = map[string]bool{
	"name":                true,
	"phone_number":        true,
	"relationship":        true,
	"priority":            true,
	"notify_on_emergency": true,
}

func healthCheck(rw http.ResponseWriter, r *http.Request) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func getJWKS(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(keyPairJWK))
}

// ---------------------------------------------------------------------------------//
// Auth handlers
// --------------------------------------------------------------------------------//

func signUp(rw http.ResponseWriter, r *http.Request) {
	data := models.User{}
	decoder := json.NewDecoder(r.Body)

	err := decoder.Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	errs := validate.Struct(data)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	err = models.CreateUser(&data)
	if err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "UNIQUE") {
			writeResponse(rw, ResponsePayload{Errors: []string{"an account with that email already exists"}}, http.StatusConflict)
			return
		}

		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// The fresh account is signed in right away
	token, err := sessionToken(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeData(rw, sessionPayload{Token: token, User: identityPayload{ID: data.ID, Email: data.Email}})
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	decoder := json.NewDecoder(r.Body)
	decoder.Decode(&data)

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	token, err := sessionToken(user)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeData(rw, sessionPayload{Token: token, User: identityPayload{ID: user.ID, Email: user.Email}})
}

func requestPasswordReset(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	decoder := json.NewDecoder(r.Body)
	decoder.Decode(&data)

	if isBlank(data["email"]) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email is required"}}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"no account found for that email"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	resetToken, err := auth.EncodeJWT(auth.AresTokenClaims{
		PasswordReset: true,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			ExpiresAt: time.Now().Add(auth.PasswordResetDuration).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// Delivered over SMS - ares has a verified phone number for most
	// accounts & no mail infrastructure.
	if user.PhoneNumber != "" {
		err = twilioClient.SendMessage(user.PhoneNumber, fmt.Sprintf("Your ares password reset code: %v", resetToken))
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{"unable to deliver the reset code"}}, http.StatusInternalServerError)
			return
		}
	} else {
		logg.Infof("password reset requested for %v (no phone number on file)", user.Email)
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Profile handlers
// --------------------------------------------------------------------------------//

func findUserProfile(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeData(rw, newUserPayload(user))
}

func updateUserProfile(rw http.ResponseWriter, r *http.Request) {
	var errs []string
	data := make(map[string]interface{})
	decoder := json.NewDecoder(r.Body)

	err := decoder.Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	removeUnknownFields(data, updatableProfileFields)
	if len(data) <= 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if data["full_name"] != nil && isBlank(fmt.Sprintf("%v", data["full_name"])) {
		errs = append(errs, "full_name cannot be empty")
	}

	if data["emergency_message"] != nil && isBlank(fmt.Sprintf("%v", data["emergency_message"])) {
		errs = append(errs, "emergency_message cannot be empty")
	}

	if data["phone_number"] != nil && !isValidPhoneNumber(fmt.Sprintf("%v", data["phone_number"])) {
		errs = append(errs, "phone_number must be at least 10 digits")
	}

	if len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	err = user.UpdateProfile(data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func uploadProfilePhoto(rw http.ResponseWriter, r *http.Request) {
	if gStorage == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"photo storage is not configured"}}, http.StatusServiceUnavailable)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	objectName := fmt.Sprintf("photos/%v", user.ID)
	photoURL, err := gStorage.UploadObject(serverConfig.Google.Storage.Bucket, objectName, http.MaxBytesReader(rw, r.Body, 5<<20))
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	err = user.UpdateProfile(map[string]interface{}{"profile_photo_url": photoURL})
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeData(rw, map[string]string{"profile_photo_url": photoURL})
}

// ---------------------------------------------------------------------------------//
// Contact handlers
// --------------------------------------------------------------------------------//

func listContacts(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	err = user.ContactsByPriority()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	payload := []contactPayload{}
	for i := range user.Contacts {
		payload = append(payload, newContactPayload(&user.Contacts[i]))
	}

	writeData(rw, payload)
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	data := models.Contact{}
	decoder := json.NewDecoder(r.Body)

	err := decoder.Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	errs := validate.Struct(data)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// Ownership is never client-supplied
	err = user.AddContact(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeData(rw, newContactPayload(&data))
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	var errs []string
	vars := mux.Vars(r)
	data := make(map[string]interface{})
	decoder := json.NewDecoder(r.Body)

	err := decoder.Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	removeUnknownFields(data, updatableContactFields)
	if len(data) <= 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if data["name"] != nil && isBlank(fmt.Sprintf("%v", data["name"])) {
		errs = append(errs, "name cannot be empty")
	}

	if data["phone_number"] != nil && !isValidPhoneNumber(fmt.Sprintf("%v", data["phone_number"])) {
		errs = append(errs, "phone_number must be at least 10 digits")
	}

	if len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	rowsAffected, err := user.UpdateContact(vars["id"], data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if rowsAffected == 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"contact not found"}}, http.StatusNotFound)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	err = user.DeleteContact(vars["id"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// sosAlert fans the user's emergency message out to every notify-enabled
// contact, highest priority first. Delivery happens on the worker pool so a
// slow SMS provider can't block the panic button.
func sosAlert(rw http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	contacts, err := user.NotifiableContacts()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if len(contacts) == 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"no emergency contacts are set to be notified"}}, http.StatusBadRequest)
		return
	}

	message := user.EmergencyMessage
	if message == "" {
		message = models.DefaultEmergencyMessage
	}

	for _, contact := range contacts {
		err = workerPool.Perform(work.JobParams{
			Name:    fmt.Sprintf("%v-%v-%v", DELIVER_ALERT_HANDLER, user.ID, contact.ID),
			Handler: DELIVER_ALERT_HANDLER,
			Args: map[string]interface{}{
				"contact_name": contact.Name,
				"phone_number": contact.PhoneNumber,
				"message":      fmt.Sprintf("%v - %v", user.FullName, message),
			},
		})
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func sessionToken(user *models.User) (string, error) {
	return auth.EncodeJWT(auth.AresTokenClaims{
		FullName: user.FullName,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			ExpiresAt: time.Now().Add(auth.SessionDuration).Unix(),
		},
	}, authKeyPair)
}

func requestUser(r *http.Request) (*models.User, error) {
	uid := r.Context().Value(RequestContextKey("requestUserID")).(string)
	return models.FindUserBy("id", uid)
}
