package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// responsePayload mirrors the ares server's response envelope.
type responsePayload struct {
	Errors  []string        `json:"errors"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type sessionData struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Client implements AuthGateway, ContactStore, ProfileStore & AlertDispatcher
// against an ares server. It holds the signed-in identity and its session
// token; controllers never see either directly.
type Client struct {
	http *resty.Client

	mu       sync.RWMutex
	identity *Identity
	token    string
}

func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// ---------------------------------------------------------------------------------//
// AuthGateway
// --------------------------------------------------------------------------------//

func (c *Client) CurrentIdentity() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.identity == nil {
		return nil
	}

	identity := *c.identity
	return &identity
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	session := sessionData{}
	err := c.post(ctx, "/v1/login", map[string]string{"email": email, "password": password}, &session)
	if err != nil {
		return nil, err
	}

	c.startSession(session)
	identity := session.User
	return &identity, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, seed User) (*Identity, error) {
	payload := map[string]interface{}{
		"email":        email,
		"password":     password,
		"full_name":    seed.FullName,
		"phone_number": seed.PhoneNumber,
		"birth_date":   seed.BirthDate,
		"address":      seed.Address,
	}

	session := sessionData{}
	err := c.post(ctx, "/v1/signup", payload, &session)
	if err != nil {
		return nil, err
	}

	c.startSession(session)
	identity := session.User
	return &identity, nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/password-reset", map[string]string{"email": email}, nil)
}

func (c *Client) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = nil
	c.token = ""
}

// ---------------------------------------------------------------------------------//
// ContactStore
// --------------------------------------------------------------------------------//

func (c *Client) ContactsByPriority(ctx context.Context) ([]EmergencyContact, error) {
	uid, err := c.currentUserID()
	if err != nil {
		return nil, err
	}

	contacts := []EmergencyContact{}
	err = c.get(ctx, fmt.Sprintf("/v1/users/%v/contacts", uid), &contacts)
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func (c *Client) AddContact(ctx context.Context, contact EmergencyContact) (*EmergencyContact, error) {
	uid, err := c.currentUserID()
	if err != nil {
		return nil, err
	}

	created := EmergencyContact{}
	err = c.post(ctx, fmt.Sprintf("/v1/users/%v/contacts", uid), contactFields(contact), &created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) UpdateContact(ctx context.Context, contact EmergencyContact) error {
	uid, err := c.currentUserID()
	if err != nil {
		return err
	}

	return c.put(ctx, fmt.Sprintf("/v1/users/%v/contacts/%v", uid, contact.ID), contactFields(contact))
}

func (c *Client) DeleteContact(ctx context.Context, id string) error {
	uid, err := c.currentUserID()
	if err != nil {
		return err
	}

	resp, err := c.authedRequest(ctx).Delete(fmt.Sprintf("/v1/users/%v/contacts/%v", uid, id))
	return c.resolve(resp, err, nil)
}

// ---------------------------------------------------------------------------------//
// ProfileStore
// --------------------------------------------------------------------------------//

func (c *Client) CurrentProfile(ctx context.Context) (*User, error) {
	uid, err := c.currentUserID()
	if err != nil {
		return nil, err
	}

	user := User{}
	err = c.get(ctx, fmt.Sprintf("/v1/users/%v/profile", uid), &user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, user User) error {
	uid, err := c.currentUserID()
	if err != nil {
		return err
	}

	return c.put(ctx, fmt.Sprintf("/v1/users/%v/profile", uid), user)
}

// ---------------------------------------------------------------------------------//
// AlertDispatcher
// --------------------------------------------------------------------------------//

func (c *Client) TriggerAlert(ctx context.Context) error {
	uid, err := c.currentUserID()
	if err != nil {
		return err
	}

	return c.post(ctx, fmt.Sprintf("/v1/users/%v/sos", uid), map[string]string{}, nil)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// contactFields strips ids & timestamps - the server owns those.
func contactFields(contact EmergencyContact) map[string]interface{} {
	return map[string]interface{}{
		"name":                contact.Name,
		"phone_number":        contact.PhoneNumber,
		"relationship":        contact.Relationship,
		"priority":            contact.Priority,
		"notify_on_emergency": contact.NotifyOnEmergency,
	}
}

func (c *Client) startSession(session sessionData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = session.Token
	c.identity = &session.User
}

func (c *Client) currentUserID() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.identity == nil {
		return "", errors.New("no authenticated user")
	}

	return c.identity.ID, nil
}

func (c *Client) authedRequest(ctx context.Context) *resty.Request {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	request := c.http.R().SetContext(ctx)
	if token != "" {
		request.SetHeader("Authorization", "Bearer "+token)
	}

	return request
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.authedRequest(ctx).Get(path)
	return c.resolve(resp, err, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	resp, err := c.authedRequest(ctx).SetBody(body).Post(path)
	return c.resolve(resp, err, out)
}

func (c *Client) put(ctx context.Context, path string, body interface{}) error {
	resp, err := c.authedRequest(ctx).SetBody(body).Put(path)
	return c.resolve(resp, err, nil)
}

// resolve turns a transport error or an error payload into a single
// human-readable error & unmarshals payload.Data into 'out' when asked to.
func (c *Client) resolve(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return errors.Wrap(err, "ares server is unreachable")
	}

	payload := responsePayload{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return errors.Wrapf(err, "unexpected response from ares server (status %v)", resp.StatusCode())
	}

	if resp.IsError() || (!payload.Success && len(payload.Errors) > 0) {
		if len(payload.Errors) > 0 {
			return errors.New(strings.Join(payload.Errors, ", "))
		}
		return errors.Errorf("request failed with status %v", resp.StatusCode())
	}

	if out != nil && len(payload.Data) > 0 {
		if err := json.Unmarshal(payload.Data, out); err != nil {
			return errors.Wrap(err, "unable to decode response data")
		}
	}

	return nil
}
