// Package creds holds the account credentials and token state.
//
// The password lives in the system keyring; everything else is a JSON
// blob persisted through the store boundary between runs.
package creds

import (
	"encoding/json"

	"github.com/google/uuid"
)

// BlobName is the store key for the persisted token state.
const BlobName = "tokens.json"

// Credentials is the process-wide credential state. AccessToken is empty
// until a login succeeds; DeviceToken and RefreshToken appear once a
// challenge-based login has completed.
type Credentials struct {
	Username     string `json:"username"`
	Password     string `json:"-"`
	DeviceToken  string `json:"device_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Saver persists named blobs.
type Saver interface {
	Load(name string) ([]byte, bool, error)
	Save(name string, data []byte) error
	Delete(name string) error
}

// Load reads the persisted token state. A missing blob returns empty
// credentials, not an error.
func Load(s Saver) (*Credentials, error) {
	c := &Credentials{}

	data, ok, err := s.Load(BlobName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return c, nil
	}

	if err := json.Unmarshal(data, c); err != nil {
		// Corrupted blob: start empty rather than locking the user out.
		return &Credentials{}, nil
	}
	return c, nil
}

// Save writes the token state blob.
func Save(s Saver, c *Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Save(BlobName, data)
}

// Clear removes the persisted token state.
func Clear(s Saver) error {
	return s.Delete(BlobName)
}

// EnsureDeviceToken generates a device token if none is set and reports
// whether one was generated.
func (c *Credentials) EnsureDeviceToken() bool {
	if c.DeviceToken != "" {
		return false
	}
	c.DeviceToken = uuid.New().String()
	return true
}
