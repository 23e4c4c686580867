package alert

import (
	"context"
	"sync"

	"github.com/ares-safety/ares/client/api"
)

const sendFallbackMessage = "Unable to send the alert"

type State struct {
	IsSending    bool
	AlertSent    bool
	ErrorMessage string
}

// Controller drives the SOS button: one dispatch call per trigger, with the
// outcome surfaced as state. The server fans the alert out to every
// notify-enabled contact.
type Controller struct {
	dispatcher api.AlertDispatcher

	mu    sync.Mutex
	state State
}

func NewController(dispatcher api.AlertDispatcher) *Controller {
	return &Controller{dispatcher: dispatcher}
}

func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	return controller.state
}

func (controller *Controller) TriggerAlert(ctx context.Context) {
	controller.mu.Lock()
	controller.state.IsSending = true
	controller.state.ErrorMessage = ""
	controller.mu.Unlock()

	err := controller.dispatcher.TriggerAlert(ctx)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.IsSending = false
	if err != nil {
		controller.state.ErrorMessage = err.Error()
		if controller.state.ErrorMessage == "" {
			controller.state.ErrorMessage = sendFallbackMessage
		}
		return
	}

	controller.state.AlertSent = true
}

// ResetAlertSent clears the one-shot sent signal.
func (controller *Controller) ResetAlertSent() {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.state.AlertSent = false
}
