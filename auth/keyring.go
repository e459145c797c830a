// Package auth provides a high-level API for persisting and retrieving media server credentials from the system keyring.
package auth

import (
	"encoding/json"

	"github.com/vidra-cli/vidra/constant"
	"github.com/zalando/go-keyring"
)

// service is the keyring namespace under which all server tokens are stored.
const service = constant.Vidra

// SetToken persists the access token for a specific server and user to the system keyring.
func SetToken(server, user, token string) error {
	return keyring.Set(service, server+"/"+user, token)
}

// GetToken retrieves the access token for a specific server and user from the system keyring.
func GetToken(server, user string) (string, error) {
	return keyring.Get(service, server+"/"+user)
}

// DeleteToken removes the access token for a specific server and user from the system keyring.
func DeleteToken(server, user string) error {
	return keyring.Delete(service, server+"/"+user)
}

// Credentials is the authenticated identity stored per server and user.
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// SetCredentials persists the full authenticated identity to the system keyring.
func SetCredentials(server, user string, creds Credentials) error {
	encoded, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return SetToken(server, user, string(encoded))
}

// GetCredentials retrieves the authenticated identity from the system keyring.
func GetCredentials(server, user string) (Credentials, error) {
	raw, err := GetToken(server, user)
	if err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		// Legacy entries stored the bare token string.
		return Credentials{Token: raw}, nil
	}
	return creds, nil
}
