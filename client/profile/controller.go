package profile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ares-safety/ares/client/api"
	"github.com/ares-safety/ares/client/session"
)

const (
	loadFallbackMessage = "Unable to load your profile"
	saveFallbackMessage = "Unable to update your profile"
)

type State struct {
	UserID           string
	Email            string
	FullName         string
	PhoneNumber      string
	BirthDate        int64
	Address          string
	EmergencyMessage string
	ProfilePhotoURL  string

	IsEditing     bool
	IsLoading     bool
	ErrorMessage  string
	IsFormValid   bool
	IsPhoneValid  bool
	UpdateSuccess bool
	IsNewUser     bool
}

// Controller orchestrates loading & editing of the current identity's own
// profile. The store bootstraps a default document on first load, so a
// brand-new account (blank full name) drops straight into edit mode.
type Controller struct {
	store api.ProfileStore

	mu    sync.Mutex
	state State
}

func NewController(store api.ProfileStore) *Controller {
	return &Controller{
		store: store,
		state: State{
			EmergencyMessage: api.DefaultEmergencyMessage,
			IsPhoneValid:     true,
		},
	}
}

func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	return controller.state
}

// LoadProfile fetches (or lazily bootstraps) the profile document & replaces
// every field in state. A load failure leaves the previous fields untouched.
func (controller *Controller) LoadProfile(ctx context.Context) {
	controller.mu.Lock()
	controller.state.IsLoading = true
	controller.state.ErrorMessage = ""
	controller.mu.Unlock()

	user, err := controller.store.CurrentProfile(ctx)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsLoading = false
	if err != nil {
		controller.state.ErrorMessage = errMessage(err, loadFallbackMessage)
		return
	}

	isNewUser := strings.TrimSpace(user.FullName) == ""

	controller.state.UserID = user.ID
	controller.state.Email = user.Email
	controller.state.FullName = user.FullName
	controller.state.PhoneNumber = user.PhoneNumber
	controller.state.BirthDate = user.BirthDate
	controller.state.Address = user.Address
	controller.state.EmergencyMessage = user.EmergencyMessage
	controller.state.ProfilePhotoURL = user.ProfilePhotoURL
	controller.state.IsNewUser = isNewUser

	// New users land directly in edit mode to finish their profile
	controller.state.IsEditing = isNewUser

	controller.revalidate()
}

// RetryLoading re-issues the profile fetch after a blocking load failure.
func (controller *Controller) RetryLoading(ctx context.Context) {
	controller.LoadProfile(ctx)
}

func (controller *Controller) ToggleEditMode() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsEditing = !controller.state.IsEditing
}

func (controller *Controller) SetFullName(fullName string) {
	controller.setField(func(state *State) { state.FullName = fullName })
}

func (controller *Controller) SetPhoneNumber(phoneNumber string) {
	controller.setField(func(state *State) { state.PhoneNumber = phoneNumber })
}

func (controller *Controller) SetBirthDate(birthDateMillis int64) {
	controller.setField(func(state *State) { state.BirthDate = birthDateMillis })
}

func (controller *Controller) SetAddress(address string) {
	controller.setField(func(state *State) { state.Address = address })
}

func (controller *Controller) SetEmergencyMessage(message string) {
	controller.setField(func(state *State) { state.EmergencyMessage = message })
}

// SetProfilePhotoURL has no validation impact.
func (controller *Controller) SetProfilePhotoURL(url string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.ProfilePhotoURL = url
}

// SaveProfile sends the full current field set, except CreatedAt which goes
// as a zero sentinel - the store preserves the stored value (see
// api.ProfileStore). No-op while the form is invalid.
func (controller *Controller) SaveProfile(ctx context.Context) {
	controller.mu.Lock()
	if !controller.state.IsFormValid {
		controller.mu.Unlock()
		return
	}

	controller.state.IsLoading = true
	controller.state.ErrorMessage = ""

	user := api.User{
		ID:               controller.state.UserID,
		Email:            controller.state.Email,
		FullName:         controller.state.FullName,
		PhoneNumber:      controller.state.PhoneNumber,
		BirthDate:        controller.state.BirthDate,
		Address:          controller.state.Address,
		EmergencyMessage: controller.state.EmergencyMessage,
		ProfilePhotoURL:  controller.state.ProfilePhotoURL,
		CreatedAt:        0,
		UpdatedAt:        time.Now().UnixMilli(),
	}
	controller.mu.Unlock()

	err := controller.store.UpdateProfile(ctx, user)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsLoading = false
	if err != nil {
		controller.state.ErrorMessage = errMessage(err, saveFallbackMessage)
		return
	}

	controller.state.IsEditing = false
	controller.state.UpdateSuccess = true
	controller.state.IsNewUser = false
}

// ResetUpdateSuccess clears the one-shot success signal once the UI has
// acknowledged it.
func (controller *Controller) ResetUpdateSuccess() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.UpdateSuccess = false
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (controller *Controller) setField(mutate func(*State)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	mutate(&controller.state)
	controller.revalidate()
}

// revalidate recomputes the per-field & submit flags. Callers must hold the lock.
func (controller *Controller) revalidate() {
	controller.state.IsPhoneValid = session.ValidatePhone(controller.state.PhoneNumber)
	controller.state.IsFormValid = strings.TrimSpace(controller.state.FullName) != "" &&
		controller.state.IsPhoneValid &&
		strings.TrimSpace(controller.state.EmergencyMessage) != ""
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}

	return err.Error()
}
