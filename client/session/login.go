package session

import (
	"context"
	"strings"
	"sync"

	"github.com/ares-safety/ares/client/api"
	"github.com/ares-safety/ares/server/logger"
)

const (
	// A user is locked out of login for the rest of the session after this
	// many consecutive failures. The counter lives in memory only, so a
	// fresh controller (i.e. app restart) clears the block.
	MAX_FAILED_LOGIN_ATTEMPTS = 3

	lockedOutMessage      = "Too many failed attempts. Try again in 5 minutes."
	emailRequiredMessage  = "Enter your email address"
	signInFallbackMessage = "Unable to sign in"
)

var logg = logger.NewLogger()

// CredentialStore is the slice of the local preference store the login
// controller needs. *prefs.Store satisfies it.
type CredentialStore interface {
	ShouldRememberCredentials() bool
	SetRememberCredentials(remember bool) error
	SaveCredentials(email, password string) error
	SavedCredentials() (email, password string, err error)
	ClearCredentials() error
}

type LoginState struct {
	Email                string
	Password             string
	RememberMe           bool
	IsLoading            bool
	ErrorMessage         string
	IsLoginSuccessful    bool
	IsFormValid          bool
	IsTemporarilyBlocked bool
	ShowPasswordRecovery bool
	ResetPasswordError   string
	PasswordResetSent    bool
}

// LoginController drives the sign-in flow. It is single-owner: one goroutine
// issues operations, though State may be read concurrently.
type LoginController struct {
	gateway     api.AuthGateway
	credentials CredentialStore

	mu             sync.Mutex
	state          LoginState
	failedAttempts int
}

func NewLoginController(gateway api.AuthGateway, credentials CredentialStore) *LoginController {
	return &LoginController{gateway: gateway, credentials: credentials}
}

// State returns a snapshot of the observable login state.
func (controller *LoginController) State() LoginState {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	return controller.state
}

// Initialize preloads remembered credentials, if the user opted in.
func (controller *LoginController) Initialize() {
	if !controller.credentials.ShouldRememberCredentials() {
		return
	}

	email, password, err := controller.credentials.SavedCredentials()
	if err != nil || email == "" || password == "" {
		return
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.Email = email
	controller.state.Password = password
	controller.state.RememberMe = true
	controller.revalidate()
}

func (controller *LoginController) SetEmail(email string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.Email = email
	controller.revalidate()
}

func (controller *LoginController) SetPassword(password string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.Password = password
	controller.revalidate()
}

// SetRememberMe updates the flag; turning it off clears any persisted
// credentials right away.
func (controller *LoginController) SetRememberMe(rememberMe bool) {
	controller.mu.Lock()
	controller.state.RememberMe = rememberMe
	controller.mu.Unlock()

	if rememberMe {
		return
	}

	if err := controller.credentials.SetRememberCredentials(false); err != nil {
		logg.Warnf("unable to disable remember-credentials flag: %v", err)
	}
	if err := controller.credentials.ClearCredentials(); err != nil {
		logg.Warnf("unable to clear saved credentials: %v", err)
	}
}

// SubmitLogin issues one sign-in call. It is a no-op while the form is
// invalid - which includes the locked-out state.
func (controller *LoginController) SubmitLogin(ctx context.Context) {
	controller.mu.Lock()
	if !controller.state.IsFormValid {
		controller.mu.Unlock()
		return
	}

	controller.state.IsLoading = true
	controller.state.ErrorMessage = ""
	email, password, rememberMe := controller.state.Email, controller.state.Password, controller.state.RememberMe
	controller.mu.Unlock()

	_, err := controller.gateway.SignIn(ctx, email, password)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	if err != nil {
		controller.failedAttempts++

		controller.state.IsLoading = false
		if controller.failedAttempts >= MAX_FAILED_LOGIN_ATTEMPTS {
			controller.state.IsTemporarilyBlocked = true
			controller.state.ErrorMessage = lockedOutMessage
		} else {
			controller.state.ErrorMessage = errMessage(err, signInFallbackMessage)
		}
		controller.revalidate()
		return
	}

	controller.failedAttempts = 0
	controller.persistCredentials(email, password, rememberMe)

	controller.state.IsLoading = false
	controller.state.IsLoginSuccessful = true
}

// OpenPasswordRecovery shows the recovery dialog state.
func (controller *LoginController) OpenPasswordRecovery() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.ShowPasswordRecovery = true
}

// RequestPasswordReset asks the gateway to send a reset email. A blank email
// is a local validation error & never reaches the gateway.
func (controller *LoginController) RequestPasswordReset(ctx context.Context) {
	controller.mu.Lock()
	if strings.TrimSpace(controller.state.Email) == "" {
		controller.state.ResetPasswordError = emailRequiredMessage
		controller.mu.Unlock()
		return
	}

	controller.state.IsLoading = true
	controller.state.ResetPasswordError = ""
	email := controller.state.Email
	controller.mu.Unlock()

	err := controller.gateway.SendPasswordReset(ctx, email)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsLoading = false
	if err != nil {
		controller.state.ResetPasswordError = errMessage(err, "Unable to send reset email")
		return
	}

	controller.state.PasswordResetSent = true
	controller.state.ShowPasswordRecovery = false
}

func (controller *LoginController) DismissPasswordRecovery() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.ShowPasswordRecovery = false
	controller.state.ResetPasswordError = ""
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// revalidate recomputes IsFormValid. Callers must hold the lock.
func (controller *LoginController) revalidate() {
	controller.state.IsFormValid = strings.TrimSpace(controller.state.Email) != "" &&
		strings.TrimSpace(controller.state.Password) != "" &&
		!controller.state.IsTemporarilyBlocked
}

func (controller *LoginController) persistCredentials(email, password string, rememberMe bool) {
	var err error
	if rememberMe {
		if err = controller.credentials.SetRememberCredentials(true); err == nil {
			err = controller.credentials.SaveCredentials(email, password)
		}
	} else {
		if err = controller.credentials.SetRememberCredentials(false); err == nil {
			err = controller.credentials.ClearCredentials()
		}
	}

	if err != nil {
		logg.Warnf("unable to update saved credentials: %v", err)
	}
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}

	return err.Error()
}
