// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"fmt"
	"net/url"
)

// VideoStreamURL constructs the static video-stream URL for an item rendition.
//
// The URL carries the play session identifier and the item etag so the server
// can correlate the request with its session bookkeeping, and embeds the access
// token as a query parameter because external player processes do not forward
// authorization headers.
func (c *Client) VideoStreamURL(itemID, mediaSourceID, playSessionID, etag string) (*url.URL, error) {
	if itemID == "" {
		return nil, fmt.Errorf("video stream URL: missing item id")
	}

	query := url.Values{}
	query.Set("static", "true")
	query.Set("mediaSourceId", mediaSourceID)
	query.Set("playSessionId", playSessionID)
	if etag != "" {
		query.Set("tag", etag)
	}
	if c.Token != "" {
		query.Set("api_key", c.Token)
	}

	streamURL, err := c.FullURL("/Videos/" + itemID + "/stream")
	if err != nil {
		return nil, err
	}
	streamURL.RawQuery = query.Encode()
	return streamURL, nil
}
