package jellyfin

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/auth"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/log"
)

// ErrNotLoggedIn means no server or stored credentials are configured.
var ErrNotLoggedIn = errors.New("not logged in, run `vidra login` first")

// FromConfig builds a client for the configured server, restoring stored
// credentials from the system keyring when present.
func FromConfig() (*Client, error) {
	serverURL := viper.GetString(key.ServerURL)
	if serverURL == "" {
		return nil, ErrNotLoggedIn
	}

	client, err := NewClient(serverURL)
	if err != nil {
		return nil, err
	}

	username := viper.GetString(key.ServerUsername)
	if username == "" {
		return client, nil
	}

	creds, err := auth.GetCredentials(serverURL, username)
	if err != nil {
		log.Warnf("no stored credentials for %s@%s: %v", username, serverURL, err)
		return client, nil
	}

	client.Token = creds.Token
	client.UserID = creds.UserID
	return client, nil
}
