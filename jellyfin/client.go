// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/vidra-cli/vidra/constant"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/network"
)

// Client communicates with a single Jellyfin-compatible server on behalf of one authenticated user.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	device   string
	deviceID string

	// Token is the access token obtained from authentication. Empty until sign-in.
	Token string

	// UserID identifies the authenticated user on the server. Empty until sign-in.
	UserID string
}

// NewClient constructs a client for the server at rawURL.
// The URL must be absolute; a trailing slash is normalized away.
func NewClient(rawURL string) (*Client, error) {
	rawURL = strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	if rawURL == "" {
		return nil, fmt.Errorf("server URL is empty")
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("server URL must be absolute: %s", rawURL)
	}

	device := viper.GetString(key.ServerDevice)
	if device == "" {
		device, _ = os.Hostname()
	}

	return &Client{
		baseURL:  base,
		http:     network.Client,
		device:   device,
		deviceID: uuid.NewString(),
	}, nil
}

// BaseURL returns the server's base URL.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// FullURL resolves a server-relative reference (path plus optional query) against the base URL.
func (c *Client) FullURL(ref string) (*url.URL, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty URL reference")
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse URL reference %q: %w", ref, err)
	}

	return c.baseURL.ResolveReference(parsed), nil
}

// authHeader composes the MediaBrowser authorization header expected by the server.
func (c *Client) authHeader() string {
	parts := []string{
		fmt.Sprintf("Client=%q", constant.ClientName),
		fmt.Sprintf("Device=%q", c.device),
		fmt.Sprintf("DeviceId=%q", c.deviceID),
		fmt.Sprintf("Version=%q", constant.Version),
	}
	if c.Token != "" {
		parts = append(parts, fmt.Sprintf("Token=%q", c.Token))
	}
	return "MediaBrowser " + strings.Join(parts, ", ")
}

// do executes a single JSON request against the server and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Authorization", c.authHeader())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s for %s %s", resp.Status, method, path)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
