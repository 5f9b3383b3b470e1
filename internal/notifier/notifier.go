// internal/notifier/notifier.go

// Package notifier defines the interface for run-outcome notification.
package notifier

import "context"

// Run statuses carried in the payload.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Report is the structured payload delivered after a backup run.
type Report struct {
	RunID          string   `json:"run_id"`
	Status         string   `json:"status"`
	File           string   `json:"file"`
	SizeBytes      int64    `json:"size_bytes,omitempty"`
	UploadedTo     string   `json:"uploaded_to,omitempty"`
	Error          string   `json:"error,omitempty"`
	DeletedLocal   int      `json:"deleted_local,omitempty"`
	DeletedRemote  int      `json:"deleted_remote,omitempty"`
	RotationErrors []string `json:"rotation_errors,omitempty"`
}

// Notifier delivers run reports. Delivery failure is a core.ErrNotify;
// callers log it and move on, it never fails the run.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify delivers one report
	Notify(ctx context.Context, report Report) error
}
