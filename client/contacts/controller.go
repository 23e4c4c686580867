package contacts

import (
	"context"
	"strings"
	"sync"

	"github.com/ares-safety/ares/client/api"
)

const (
	DEFAULT_CONTACT_PRIORITY = 1

	loadFallbackMessage   = "Unable to load contacts"
	saveFallbackMessage   = "Unable to save the contact"
	deleteFallbackMessage = "Unable to delete the contact"
)

// ListState is the observable state of the contact list screen.
type ListState struct {
	Contacts     []api.EmergencyContact
	IsLoading    bool
	ErrorMessage string
}

// FormState is the observable state of the add/edit contact form. It is
// independent of ListState so the form can be reset without touching the list.
type FormState struct {
	ContactID         string
	Name              string
	PhoneNumber       string
	Relationship      string
	Priority          int
	NotifyOnEmergency bool
	IsEditing         bool
	IsFormValid       bool
	IsLoading         bool
	ErrorMessage      string
	IsSaved           bool
}

// Controller orchestrates the emergency-contact list & its add/edit form.
// Single-owner; callers load the list once after construction & the
// controller reloads it itself after every mutation.
type Controller struct {
	store api.ContactStore

	mu        sync.Mutex
	listState ListState
	formState FormState
}

func NewController(store api.ContactStore) *Controller {
	return &Controller{
		store:     store,
		formState: defaultFormState(),
	}
}

func (controller *Controller) ListState() ListState {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	state := controller.listState
	state.Contacts = append([]api.EmergencyContact{}, controller.listState.Contacts...)
	return state
}

func (controller *Controller) FormState() FormState {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	return controller.formState
}

// LoadContacts replaces the list with the store's contacts, ordered
// ascending by priority.
func (controller *Controller) LoadContacts(ctx context.Context) {
	controller.mu.Lock()
	controller.listState.IsLoading = true
	controller.listState.ErrorMessage = ""
	controller.mu.Unlock()

	contacts, err := controller.store.ContactsByPriority(ctx)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.listState.IsLoading = false
	if err != nil {
		controller.listState.ErrorMessage = errMessage(err, loadFallbackMessage)
		return
	}

	controller.listState.Contacts = contacts
}

// ResetForm reinitializes the form to its defaults.
func (controller *Controller) ResetForm() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.formState = defaultFormState()
}

// LoadContactToEdit populates the form from the already-loaded list; it does
// not fetch. An unknown id leaves the form untouched.
func (controller *Controller) LoadContactToEdit(contactID string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	for _, contact := range controller.listState.Contacts {
		if contact.ID != contactID {
			continue
		}

		controller.formState = FormState{
			ContactID:         contact.ID,
			Name:              contact.Name,
			PhoneNumber:       contact.PhoneNumber,
			Relationship:      contact.Relationship,
			Priority:          contact.Priority,
			NotifyOnEmergency: contact.NotifyOnEmergency,
			IsEditing:         true,
		}
		controller.revalidate()
		return
	}
}

func (controller *Controller) SetName(name string) {
	controller.setField(func(state *FormState) { state.Name = name })
}

func (controller *Controller) SetPhoneNumber(phoneNumber string) {
	controller.setField(func(state *FormState) { state.PhoneNumber = phoneNumber })
}

func (controller *Controller) SetRelationship(relationship string) {
	controller.setField(func(state *FormState) { state.Relationship = relationship })
}

func (controller *Controller) SetPriority(priority int) {
	controller.setField(func(state *FormState) { state.Priority = priority })
}

// SetNotifyOnEmergency has no validation impact.
func (controller *Controller) SetNotifyOnEmergency(notify bool) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.formState.NotifyOnEmergency = notify
}

// SaveContact creates or overwrites a contact from the form, then reloads
// the list. No-op while the form is invalid.
func (controller *Controller) SaveContact(ctx context.Context) {
	controller.mu.Lock()
	if !controller.formState.IsFormValid {
		controller.mu.Unlock()
		return
	}

	controller.formState.IsLoading = true
	controller.formState.ErrorMessage = ""

	contact := api.EmergencyContact{
		ID:                controller.formState.ContactID,
		Name:              controller.formState.Name,
		PhoneNumber:       controller.formState.PhoneNumber,
		Relationship:      controller.formState.Relationship,
		Priority:          controller.formState.Priority,
		NotifyOnEmergency: controller.formState.NotifyOnEmergency,
	}
	isEditing := controller.formState.IsEditing
	controller.mu.Unlock()

	var err error
	if isEditing {
		err = controller.store.UpdateContact(ctx, contact)
	} else {
		_, err = controller.store.AddContact(ctx, contact)
	}

	controller.mu.Lock()
	controller.formState.IsLoading = false
	if err != nil {
		controller.formState.ErrorMessage = errMessage(err, saveFallbackMessage)
		controller.mu.Unlock()
		return
	}

	controller.formState.IsSaved = true
	controller.mu.Unlock()

	controller.LoadContacts(ctx)
}

// DeleteContact removes a contact by id, then reloads the list.
func (controller *Controller) DeleteContact(ctx context.Context, contactID string) {
	controller.mu.Lock()
	controller.listState.IsLoading = true
	controller.listState.ErrorMessage = ""
	controller.mu.Unlock()

	err := controller.store.DeleteContact(ctx, contactID)
	if err != nil {
		controller.mu.Lock()
		defer controller.mu.Unlock()

		controller.listState.IsLoading = false
		controller.listState.ErrorMessage = errMessage(err, deleteFallbackMessage)
		return
	}

	controller.LoadContacts(ctx)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func defaultFormState() FormState {
	return FormState{
		Priority:          DEFAULT_CONTACT_PRIORITY,
		NotifyOnEmergency: true,
	}
}

func (controller *Controller) setField(mutate func(*FormState)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	mutate(&controller.formState)
	controller.revalidate()
}

// revalidate recomputes the form's submit gate. Callers must hold the lock.
func (controller *Controller) revalidate() {
	controller.formState.IsFormValid = strings.TrimSpace(controller.formState.Name) != "" &&
		len(controller.formState.PhoneNumber) >= 10
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}

	return err.Error()
}
