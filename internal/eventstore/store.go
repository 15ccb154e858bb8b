// Package eventstore persists build history records so daemon mode can expose
// past build outcomes over its API.
package eventstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no record exists for the requested build ID.
var ErrNotFound = errors.New("build record not found")

// BuildRecord is one completed (or failed) build run.
type BuildRecord struct {
	ID       int64     `json:"id"`
	BuildID  string    `json:"build_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outcome  string    `json:"outcome"` // success|warning|failed|canceled
	Posts    int       `json:"posts"`
	Rendered int       `json:"rendered"`
	Skipped  int       `json:"skipped"`
	Report   []byte    `json:"-"` // full build report JSON
}

// Duration is the wall-clock build time.
func (r *BuildRecord) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Store persists and retrieves build records.
type Store interface {
	// Record appends one build run.
	Record(ctx context.Context, rec *BuildRecord) error

	// Get retrieves a single build by its build ID.
	Get(ctx context.Context, buildID string) (*BuildRecord, error)

	// ListRecent returns up to limit builds, newest first.
	ListRecent(ctx context.Context, limit int) ([]*BuildRecord, error)

	// Close releases resources.
	Close() error
}
