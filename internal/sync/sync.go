// Package sync implements asynchronous background reconciliation of playstate reports that failed to reach the server.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/where"
)

// Report kinds understood by the reconciler.
const (
	KindProgress = "progress"
	KindStopped  = "stopped"
)

// FailedReport encapsulates a single playstate report for deferred delivery.
type FailedReport struct {
	Timestamp int64                    `json:"timestamp"`
	Kind      string                   `json:"kind"`
	Report    jellyfin.PlaystateReport `json:"report"`
}

func reportFile() string {
	return filepath.Join(where.Config(), "failed_reports.json")
}

// QueueFailure persists a failed playstate report to a local JSON-log for deferred reconciliation.
func QueueFailure(kind string, report jellyfin.PlaystateReport) error {
	f, err := filesystem.API().OpenFile(reportFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(FailedReport{
		Timestamp: time.Now().Unix(),
		Kind:      kind,
		Report:    report,
	})
}

// ReconcileFailures initializes an asynchronous background process to replay
// previously failed playstate reports. The failure log is truncated only when
// every queued report makes it through.
func ReconcileFailures() {
	go func() {
		path := reportFile()
		info, err := filesystem.API().Stat(path)
		if err != nil || info.Size() == 0 {
			return
		}

		content, err := filesystem.API().ReadFile(path)
		if err != nil {
			return
		}

		var reports []FailedReport
		decoder := json.NewDecoder(bytes.NewReader(content))
		for decoder.More() {
			var r FailedReport
			if err := decoder.Decode(&r); err == nil {
				reports = append(reports, r)
			}
		}

		if len(reports) == 0 {
			return
		}

		client, err := jellyfin.FromConfig()
		if err != nil {
			return
		}

		successCount := 0

		for i, r := range reports {
			// Incremental delay with randomized jitter to avoid hammering a
			// server that just came back.
			backoff := time.Duration((1<<i)*100)*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond
			time.Sleep(backoff)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			switch r.Kind {
			case KindStopped:
				err = client.ReportStopped(ctx, r.Report)
			default:
				err = client.ReportProgress(ctx, r.Report)
			}
			cancel()

			if err == nil {
				successCount++
			}
		}

		if successCount == len(reports) {
			_ = filesystem.API().Remove(path)
		}
	}()
}
