// ABOUTME: Saved login credentials so the CLI can restore a session between runs.
// ABOUTME: Stored next to config.json with owner-only permissions.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/harperreed/fitsync/internal/session"
)

// Credentials is the persisted form of a session.
type Credentials struct {
	Server string `json:"server,omitempty"`
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
	Email  string `json:"email,omitempty"`
}

// CredentialsPath returns the path to the credentials file.
func CredentialsPath() string {
	return filepath.Join(ConfigDir(), "credentials.json")
}

// LoadCredentials reads saved credentials. A missing file yields empty credentials.
func LoadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(CredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveCredentials persists credentials to disk.
func SaveCredentials(creds *Credentials) error {
	if err := os.MkdirAll(ConfigDir(), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(CredentialsPath(), data, 0600)
}

// ClearCredentials removes the credentials file.
func ClearCredentials() error {
	path := CredentialsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// IsComplete reports whether the credentials can restore a session.
func (c *Credentials) IsComplete() bool {
	return c.Token != "" && c.UserID > 0
}

// Restore saves complete credentials into sess. It reports whether it did.
func (c *Credentials) Restore(sess *session.Store) bool {
	if !c.IsComplete() {
		return false
	}
	return sess.Save(c.Token, c.UserID) == nil
}
