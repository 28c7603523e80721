// Package storage keeps processed report artifacts on disk: the raw report
// a run ingested and the flat export it produced, grouped per property.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Artifact kinds.
const (
	KindReport = "report" // raw report text as received
	KindExport = "export" // transformed CSV output
)

// ArtifactInfo contains metadata about a stored artifact
type ArtifactInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	PropertyID int       `json:"property_id"`
	Size       int64     `json:"size"`
	Path       string    `json:"path"` // Internal storage path
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines the interface for artifact storage operations
type Store interface {
	// Save stores an artifact and returns its metadata
	Save(ctx context.Context, propertyID int, name string, kind string, r io.Reader) (*ArtifactInfo, error)

	// Open retrieves an artifact by its ID
	Open(ctx context.Context, propertyID int, artifactID uuid.UUID) (io.ReadCloser, *ArtifactInfo, error)

	// Delete removes an artifact by its ID
	Delete(ctx context.Context, propertyID int, artifactID uuid.UUID) error

	// List returns all artifacts for a property
	List(ctx context.Context, propertyID int) ([]*ArtifactInfo, error)

	// Info returns metadata for an artifact without opening it
	Info(ctx context.Context, propertyID int, artifactID uuid.UUID) (*ArtifactInfo, error)
}

// Config holds storage configuration
type Config struct {
	Dir string
}

// New creates a new Store backed by the local filesystem
func New(cfg *Config) (Store, error) {
	return NewLocalStore(cfg.Dir)
}
