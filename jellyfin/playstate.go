// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"context"
	"net/http"
)

// PlaystateReport identifies one playback attempt in playstate calls.
type PlaystateReport struct {
	ItemID        string
	MediaSourceID string
	PlaySessionID string
	PositionTicks int64
	IsPaused      bool
}

func (r PlaystateReport) body() map[string]any {
	return map[string]any{
		"ItemId":        r.ItemID,
		"MediaSourceId": r.MediaSourceID,
		"PlaySessionId": r.PlaySessionID,
		"PositionTicks": r.PositionTicks,
		"IsPaused":      r.IsPaused,
		"CanSeek":       true,
		"PlayMethod":    "DirectPlay",
	}
}

// ReportStart informs the server that playback of an item has begun.
func (c *Client) ReportStart(ctx context.Context, report PlaystateReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing", nil, report.body(), nil)
}

// ReportProgress informs the server of the current playback position.
// Callers are expected to invoke this on a timer; individual failures are
// cheap to skip since the next tick carries a fresher position anyway.
func (c *Client) ReportProgress(ctx context.Context, report PlaystateReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Progress", nil, report.body(), nil)
}

// ReportStopped informs the server that playback has ended at the given position.
func (c *Client) ReportStopped(ctx context.Context, report PlaystateReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Stopped", nil, report.body(), nil)
}

// TranscodingInfo describes the server-side transcode attached to a session.
type TranscodingInfo struct {
	VideoCodec                 string   `json:"VideoCodec"`
	AudioCodec                 string   `json:"AudioCodec"`
	Container                  string   `json:"Container"`
	Bitrate                    int64    `json:"Bitrate"`
	CompletionPercentage       float64  `json:"CompletionPercentage"`
	IsVideoDirect              bool     `json:"IsVideoDirect"`
	IsAudioDirect              bool     `json:"IsAudioDirect"`
	TranscodeReasons           []string `json:"TranscodeReasons"`
	HardwareAccelerationType   string   `json:"HardwareAccelerationType"`
	CurrentThrottleStateReason string   `json:"CurrentThrottleState"`
}

// Session is one active server session, used when polling transcode state.
type Session struct {
	ID              string           `json:"Id"`
	PlaySessionID   string           `json:"PlaySessionId"`
	TranscodingInfo *TranscodingInfo `json:"TranscodingInfo"`
}

// Sessions polls the server's active sessions. A failed poll is not fatal;
// callers skip it and retry on the next timer tick.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	err := c.do(ctx, http.MethodGet, "/Sessions", nil, nil, &sessions)
	return sessions, err
}
