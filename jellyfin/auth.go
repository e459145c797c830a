// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"context"
	"fmt"
	"net/http"
)

// authenticateResult mirrors the server's authentication response payload.
type authenticateResult struct {
	AccessToken string `json:"AccessToken"`
	User        struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"User"`
}

// AuthenticateByName signs the user in with a username/password pair and
// stores the resulting access token and user identity on the client.
func (c *Client) AuthenticateByName(ctx context.Context, username, password string) error {
	body := map[string]string{
		"Username": username,
		"Pw":       password,
	}

	var result authenticateResult
	if err := c.do(ctx, http.MethodPost, "/Users/AuthenticateByName", nil, body, &result); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	if result.AccessToken == "" {
		return fmt.Errorf("authenticate: server returned an empty access token")
	}

	c.Token = result.AccessToken
	c.UserID = result.User.ID
	return nil
}

// Authenticated reports whether the client holds a usable access token.
func (c *Client) Authenticated() bool {
	return c.Token != "" && c.UserID != ""
}
