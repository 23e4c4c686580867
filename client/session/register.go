package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ares-safety/ares/client/api"
)

type RegisterState struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	PhoneNumber     string
	BirthDate       int64
	Address         string
	TermsAccepted   bool

	IsEmailValid     bool
	IsPasswordValid  bool
	IsPhoneValid     bool
	DoPasswordsMatch bool

	IsLoading                bool
	ErrorMessage             string
	IsRegistrationSuccessful bool
	IsFormValid              bool
}

// RegisterController drives the sign-up flow. Field-level validity flags are
// recomputed on every setter so the UI can flag fields as the user types.
type RegisterController struct {
	gateway api.AuthGateway

	mu    sync.Mutex
	state RegisterState
}

func NewRegisterController(gateway api.AuthGateway) *RegisterController {
	return &RegisterController{
		gateway: gateway,

		// Per-field flags start out valid so untouched fields aren't flagged
		state: RegisterState{
			IsEmailValid:     true,
			IsPasswordValid:  true,
			IsPhoneValid:     true,
			DoPasswordsMatch: true,
		},
	}
}

func (controller *RegisterController) State() RegisterState {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	return controller.state
}

func (controller *RegisterController) SetEmail(email string) {
	controller.setField(func(state *RegisterState) { state.Email = email })
}

func (controller *RegisterController) SetPassword(password string) {
	controller.setField(func(state *RegisterState) { state.Password = password })
}

func (controller *RegisterController) SetConfirmPassword(confirmPassword string) {
	controller.setField(func(state *RegisterState) { state.ConfirmPassword = confirmPassword })
}

func (controller *RegisterController) SetFullName(fullName string) {
	controller.setField(func(state *RegisterState) { state.FullName = fullName })
}

func (controller *RegisterController) SetPhoneNumber(phoneNumber string) {
	controller.setField(func(state *RegisterState) { state.PhoneNumber = phoneNumber })
}

func (controller *RegisterController) SetBirthDate(birthDateMillis int64) {
	controller.setField(func(state *RegisterState) { state.BirthDate = birthDateMillis })
}

func (controller *RegisterController) SetAddress(address string) {
	controller.setField(func(state *RegisterState) { state.Address = address })
}

func (controller *RegisterController) SetTermsAccepted(accepted bool) {
	controller.setField(func(state *RegisterState) { state.TermsAccepted = accepted })
}

// SubmitRegistration issues one sign-up call with a profile seed built from
// the form. The id is left empty - the gateway assigns it.
func (controller *RegisterController) SubmitRegistration(ctx context.Context) {
	controller.mu.Lock()
	if !controller.state.IsFormValid {
		controller.mu.Unlock()
		return
	}

	controller.state.IsLoading = true
	controller.state.ErrorMessage = ""

	now := time.Now().UnixMilli()
	seed := api.User{
		Email:       controller.state.Email,
		FullName:    controller.state.FullName,
		PhoneNumber: controller.state.PhoneNumber,
		BirthDate:   controller.state.BirthDate,
		Address:     controller.state.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	email, password := controller.state.Email, controller.state.Password
	controller.mu.Unlock()

	_, err := controller.gateway.SignUp(ctx, email, password, seed)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsLoading = false
	if err != nil {
		controller.state.ErrorMessage = errMessage(err, "Unable to create account")
		return
	}

	controller.state.IsRegistrationSuccessful = true
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (controller *RegisterController) setField(mutate func(*RegisterState)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	mutate(&controller.state)
	controller.revalidate()
}

// revalidate recomputes every per-field flag & the submit gate. Callers must
// hold the lock.
func (controller *RegisterController) revalidate() {
	state := &controller.state

	state.IsEmailValid = ValidateEmail(state.Email)
	state.IsPasswordValid = ValidatePassword(state.Password)
	state.IsPhoneValid = ValidatePhone(state.PhoneNumber)
	state.DoPasswordsMatch = state.Password == state.ConfirmPassword

	state.IsFormValid = state.IsEmailValid &&
		state.IsPasswordValid &&
		state.DoPasswordsMatch &&
		state.TermsAccepted &&
		strings.TrimSpace(state.FullName) != "" &&
		state.IsPhoneValid
}
