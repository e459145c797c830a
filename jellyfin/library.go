// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// itemsPage mirrors the server's paged item listing envelope.
type itemsPage struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

// Search queries the user's library for items matching the search term.
// Only playable and browsable kinds (movies, series, episodes) are requested.
func (c *Client) Search(ctx context.Context, term string) ([]Item, error) {
	query := url.Values{}
	query.Set("searchTerm", term)
	query.Set("recursive", "true")
	query.Set("includeItemTypes", strings.Join([]string{
		string(ItemMovie), string(ItemSeries), string(ItemEpisode),
	}, ","))
	query.Set("fields", "Overview,Etag,Chapters,MediaSources")

	var page itemsPage
	err := c.do(ctx, http.MethodGet, "/Users/"+c.UserID+"/Items", query, nil, &page)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return page.Items, nil
}

// Item retrieves a single library item with full playback metadata.
func (c *Client) Item(ctx context.Context, itemID string) (Item, error) {
	var item Item
	err := c.do(ctx, http.MethodGet, "/Users/"+c.UserID+"/Items/"+itemID, nil, nil, &item)
	if err != nil {
		return Item{}, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return item, nil
}

// Seasons lists the seasons of a series.
func (c *Client) Seasons(ctx context.Context, seriesID string) ([]Item, error) {
	query := url.Values{}
	query.Set("userId", c.UserID)

	var page itemsPage
	err := c.do(ctx, http.MethodGet, "/Shows/"+seriesID+"/Seasons", query, nil, &page)
	if err != nil {
		return nil, fmt.Errorf("get seasons of %s: %w", seriesID, err)
	}
	return page.Items, nil
}

// Episodes lists the episodes of a series, optionally restricted to one season.
func (c *Client) Episodes(ctx context.Context, seriesID, seasonID string) ([]Item, error) {
	query := url.Values{}
	query.Set("userId", c.UserID)
	query.Set("fields", "Overview,Etag,Chapters,MediaSources")
	if seasonID != "" {
		query.Set("seasonId", seasonID)
	}

	var page itemsPage
	err := c.do(ctx, http.MethodGet, "/Shows/"+seriesID+"/Episodes", query, nil, &page)
	if err != nil {
		return nil, fmt.Errorf("get episodes of %s: %w", seriesID, err)
	}
	return page.Items, nil
}

// playbackInfoResult mirrors the server's playback info response.
type playbackInfoResult struct {
	MediaSources  []MediaSource `json:"MediaSources"`
	PlaySessionID string        `json:"PlaySessionId"`
}

// PlaybackInfo asks the server which renditions of an item this client may play.
// The returned play session identifier correlates the attempt with server-side
// transcode bookkeeping and must accompany all stream requests and playstate reports.
func (c *Client) PlaybackInfo(ctx context.Context, itemID string) ([]MediaSource, string, error) {
	query := url.Values{}
	query.Set("userId", c.UserID)

	var result playbackInfoResult
	err := c.do(ctx, http.MethodPost, "/Items/"+itemID+"/PlaybackInfo", query, nil, &result)
	if err != nil {
		return nil, "", fmt.Errorf("playback info for %s: %w", itemID, err)
	}
	return result.MediaSources, result.PlaySessionID, nil
}
