package api

import "context"

// DefaultEmergencyMessage is the canned danger message used until a user
// writes their own.
const DefaultEmergencyMessage = "I am in danger! Please send help."

// Identity is the authenticated principal returned by the auth gateway.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// User is a profile document. BirthDate/CreatedAt/UpdatedAt are epoch millis.
type User struct {
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

// EmergencyContact is a contact document owned by a user. Lower priority
// sorts first.
type EmergencyContact struct {
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

// AuthGateway is the remote auth service the session controllers talk to.
// Fallible calls return human-readable errors meant to surface as-is in
// controller state.
type AuthGateway interface {
	CurrentIdentity() *Identity
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string, seed User) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut()
}

// ContactStore is the remote document collection holding the current
// identity's emergency contacts.
type ContactStore interface {
	// ContactsByPriority returns the current identity's contacts ordered
	// ascending by priority.
	ContactsByPriority(ctx context.Context) ([]EmergencyContact, error)

	// AddContact creates a new contact owned by the current identity and
	// returns it with its server-assigned id populated.
	AddContact(ctx context.Context, contact EmergencyContact) (*EmergencyContact, error)

	// UpdateContact overwrites the full document for contact.ID. Cross-user
	// updates are rejected by the store.
	UpdateContact(ctx context.Context, contact EmergencyContact) error

	DeleteContact(ctx context.Context, id string) error
}

// ProfileStore is the remote document collection holding user profiles.
type ProfileStore interface {
	// CurrentProfile fetches the current identity's profile. If no document
	// exists yet, the store creates a default one (email from the identity,
	// timestamps set to now) and returns it as if fetched.
	CurrentProfile(ctx context.Context) (*User, error)

	// UpdateProfile updates the current identity's mutable profile fields.
	// A zero CreatedAt is a sentinel: the store must preserve the stored
	// value, never write the zero over it.
	UpdateProfile(ctx context.Context, user User) error
}

// AlertDispatcher triggers an SOS alert to the current identity's
// notify-enabled contacts.
type AlertDispatcher interface {
	TriggerAlert(ctx context.Context) error
}
