package api

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AuthGatewayStub is a canned AuthGateway for controller tests.
type AuthGatewayStub struct {
	Identity   *Identity
	SignInErr  error
	SignUpErr  error
	ResetErr   error
	SignInCost int // consecutive failures before SignInErr clears, <0 for always

	SignInCalls    int
	ResetCalls     int
	SignedUpSeed   *User
	SignedOutCalls int
}

func (stub *AuthGatewayStub) CurrentIdentity() *Identity {
	return stub.Identity
}

func (stub *AuthGatewayStub) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	stub.SignInCalls++

	if stub.SignInErr != nil && (stub.SignInCost < 0 || stub.SignInCalls <= stub.SignInCost) {
		return nil, stub.SignInErr
	}

	if stub.Identity == nil {
		stub.Identity = &Identity{ID: uuid.NewString(), Email: email}
	}
	return stub.Identity, nil
}

func (stub *AuthGatewayStub) SignUp(ctx context.Context, email, password string, seed User) (*Identity, error) {
	if stub.SignUpErr != nil {
		return nil, stub.SignUpErr
	}

	stub.SignedUpSeed = &seed
	stub.Identity = &Identity{ID: uuid.NewString(), Email: email}
	return stub.Identity, nil
}

func (stub *AuthGatewayStub) SendPasswordReset(ctx context.Context, email string) error {
	stub.ResetCalls++
	return stub.ResetErr
}

func (stub *AuthGatewayStub) SignOut() {
	stub.SignedOutCalls++
	stub.Identity = nil
}

// StoreStub is an in-memory ContactStore + ProfileStore + AlertDispatcher.
// Ids are assigned the way the real store assigns them - opaque & non-empty.
type StoreStub struct {
	Identity Identity
	Profile  *User
	Contacts []EmergencyContact

	ListErr          error
	AddErr           error
	UpdateErr        error
	DeleteErr        error
	ProfileErr       error
	SaveProfileErr   error
	AlertErr         error
	UpdatedProfile   *User
	TriggeredAlerts  int
	BootstrappedUser bool
}

func (stub *StoreStub) ContactsByPriority(ctx context.Context) ([]EmergencyContact, error) {
	if stub.ListErr != nil {
		return nil, stub.ListErr
	}

	contacts := append([]EmergencyContact{}, stub.Contacts...)
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].Priority < contacts[j].Priority })
	return contacts, nil
}

func (stub *StoreStub) AddContact(ctx context.Context, contact EmergencyContact) (*EmergencyContact, error) {
	if stub.AddErr != nil {
		return nil, stub.AddErr
	}

	contact.ID = uuid.NewString()
	contact.UserID = stub.Identity.ID
	contact.CreatedAt = nowMillis()
	contact.UpdatedAt = contact.CreatedAt

	stub.Contacts = append(stub.Contacts, contact)
	return &contact, nil
}

func (stub *StoreStub) UpdateContact(ctx context.Context, contact EmergencyContact) error {
	if stub.UpdateErr != nil {
		return stub.UpdateErr
	}

	for i := range stub.Contacts {
		if stub.Contacts[i].ID == contact.ID {
			contact.UserID = stub.Contacts[i].UserID
			contact.CreatedAt = stub.Contacts[i].CreatedAt
			contact.UpdatedAt = nowMillis()
			stub.Contacts[i] = contact
			return nil
		}
	}

	return errors.New("contact not found")
}

func (stub *StoreStub) DeleteContact(ctx context.Context, id string) error {
	if stub.DeleteErr != nil {
		return stub.DeleteErr
	}

	for i := range stub.Contacts {
		if stub.Contacts[i].ID == id {
			stub.Contacts = append(stub.Contacts[:i], stub.Contacts[i+1:]...)
			return nil
		}
	}

	return nil
}

func (stub *StoreStub) CurrentProfile(ctx context.Context) (*User, error) {
	if stub.ProfileErr != nil {
		return nil, stub.ProfileErr
	}

	if stub.Profile == nil {
		stub.BootstrappedUser = true
		stub.Profile = &User{
			ID:               stub.Identity.ID,
			Email:            stub.Identity.Email,
			EmergencyMessage: DefaultEmergencyMessage,
			CreatedAt:        nowMillis(),
			UpdatedAt:        nowMillis(),
		}
	}

	profile := *stub.Profile
	return &profile, nil
}

func (stub *StoreStub) UpdateProfile(ctx context.Context, user User) error {
	if stub.SaveProfileErr != nil {
		return stub.SaveProfileErr
	}

	// Zero CreatedAt is a sentinel - keep the stored value.
	if user.CreatedAt == 0 && stub.Profile != nil {
		user.CreatedAt = stub.Profile.CreatedAt
	}
	user.UpdatedAt = nowMillis()

	stub.Profile = &user
	stub.UpdatedProfile = &user
	return nil
}

func (stub *StoreStub) TriggerAlert(ctx context.Context) error {
	if stub.AlertErr != nil {
		return stub.AlertErr
	}

	stub.TriggeredAlerts++
	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
