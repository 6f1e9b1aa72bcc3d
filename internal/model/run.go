// Package model defines the run-history domain types shared by the store
// and the CLI commands.
package model

import "time"

// RunStatus is the lifecycle state of a compute run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one invocation of the context computation.
type Run struct {
	ID            string    `json:"id"`
	PointsPath    string    `json:"points_path"`
	LocationsPath string    `json:"locations_path"`
	OutputPath    string    `json:"output_path"`
	Spec          string    `json:"spec"` // JSON-encoded neighborhood spec
	Points        int       `json:"points"`
	Locations     int       `json:"locations"`
	Status        RunStatus `json:"status"`
	Error         string    `json:"error,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
