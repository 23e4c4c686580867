package session

import (
	"context"
	"testing"

	"github.com/ares-safety/ares/client/api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newValidRegisterController(gateway api.AuthGateway) *RegisterController {
	controller := NewRegisterController(gateway)
	controller.SetEmail("user@example.com")
	controller.SetPassword("Passw0rd")
	controller.SetConfirmPassword("Passw0rd")
	controller.SetFullName("Ada Lovelace")
	controller.SetPhoneNumber("0123456789")
	controller.SetTermsAccepted(true)

	return controller
}

func TestRegisterFormValidation(t *testing.T) {
	cases := []struct {
		description string
		mutate      func(*RegisterController)
		expected    bool
	}{
		{
			description: "Should be valid with every field filled correctly",
			mutate:      func(c *RegisterController) {},
			expected:    true,
		},
		{
			description: "Should be invalid with a malformed email",
			mutate:      func(c *RegisterController) { c.SetEmail("not-an-email") },
			expected:    false,
		},
		{
			description: "Should be invalid with a weak password",
			mutate: func(c *RegisterController) {
				c.SetPassword("password")
				c.SetConfirmPassword("password")
			},
			expected: false,
		},
		{
			description: "Should be invalid when passwords differ",
			mutate:      func(c *RegisterController) { c.SetConfirmPassword("Passw0rd!") },
			expected:    false,
		},
		{
			description: "Should be invalid with a blank full name",
			mutate:      func(c *RegisterController) { c.SetFullName("   ") },
			expected:    false,
		},
		{
			description: "Should be invalid with a short phone number",
			mutate:      func(c *RegisterController) { c.SetPhoneNumber("012345678") },
			expected:    false,
		},
		{
			description: "Should be invalid until terms are accepted",
			mutate:      func(c *RegisterController) { c.SetTermsAccepted(false) },
			expected:    false,
		},
	}

	for _, tc := range cases {
		controller := newValidRegisterController(&api.AuthGatewayStub{})
		tc.mutate(controller)
		assert.Equal(t, tc.expected, controller.State().IsFormValid, tc.description)
	}
}

func TestRegisterFieldFlagsStartValid(t *testing.T) {
	state := NewRegisterController(&api.AuthGatewayStub{}).State()

	assert.True(t, state.IsEmailValid)
	assert.True(t, state.IsPasswordValid)
	assert.True(t, state.IsPhoneValid)
	assert.True(t, state.DoPasswordsMatch)
	assert.False(t, state.IsFormValid)
}

func TestSubmitRegistration(t *testing.T) {
	gateway := &api.AuthGatewayStub{}
	controller := newValidRegisterController(gateway)
	controller.SetAddress("1 Safety Way")
	controller.SetBirthDate(655603200000)

	controller.SubmitRegistration(context.Background())

	assert.True(t, controller.State().IsRegistrationSuccessful)
	assert.NotNil(t, gateway.SignedUpSeed)
	assert.Empty(t, gateway.SignedUpSeed.ID, "Expected the gateway to assign the id")
	assert.Equal(t, "user@example.com", gateway.SignedUpSeed.Email)
	assert.Equal(t, "Ada Lovelace", gateway.SignedUpSeed.FullName)
	assert.Equal(t, "0123456789", gateway.SignedUpSeed.PhoneNumber)
	assert.Equal(t, "1 Safety Way", gateway.SignedUpSeed.Address)
	assert.Equal(t, int64(655603200000), gateway.SignedUpSeed.BirthDate)
	assert.Greater(t, gateway.SignedUpSeed.CreatedAt, int64(0))
}

func TestSubmitRegistrationIsNoOpWhileInvalid(t *testing.T) {
	gateway := &api.AuthGatewayStub{}
	controller := NewRegisterController(gateway)

	controller.SubmitRegistration(context.Background())

	assert.Nil(t, gateway.SignedUpSeed)
	assert.False(t, controller.State().IsRegistrationSuccessful)
}

func TestSubmitRegistrationSurfacesGatewayError(t *testing.T) {
	gateway := &api.AuthGatewayStub{SignUpErr: errors.New("an account with that email already exists")}
	controller := newValidRegisterController(gateway)

	controller.SubmitRegistration(context.Background())

	state := controller.State()
	assert.False(t, state.IsRegistrationSuccessful)
	assert.Equal(t, "an account with that email already exists", state.ErrorMessage)
}
