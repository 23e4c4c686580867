package alert

import (
	"context"
	"testing"

	"github.com/ares-safety/ares/client/api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTriggerAlert(t *testing.T) {
	dispatcher := &api.StoreStub{Identity: api.Identity{ID: "user-1"}}
	controller := NewController(dispatcher)

	controller.TriggerAlert(context.Background())

	state := controller.State()
	assert.True(t, state.AlertSent)
	assert.False(t, state.IsSending)
	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, 1, dispatcher.TriggeredAlerts)

	controller.ResetAlertSent()
	assert.False(t, controller.State().AlertSent)
}

func TestTriggerAlertSurfacesDispatchError(t *testing.T) {
	dispatcher := &api.StoreStub{AlertErr: errors.New("no emergency contacts are set to be notified")}
	controller := NewController(dispatcher)

	controller.TriggerAlert(context.Background())

	state := controller.State()
	assert.False(t, state.AlertSent)
	assert.Equal(t, "no emergency contacts are set to be notified", state.ErrorMessage)
}
