package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore implements Store using the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new local filesystem store
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) propertyDir(propertyID int) string {
	return filepath.Join(s.basePath, fmt.Sprintf("property-%d", propertyID))
}

// Save stores an artifact and returns its metadata
func (s *LocalStore) Save(ctx context.Context, propertyID int, name string, kind string, r io.Reader) (*ArtifactInfo, error) {
	artifactID := uuid.New()

	dir := s.propertyDir(propertyID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create property directory: %w", err)
	}

	// Sanitize the name and prefix it with a slice of the ID for uniqueness
	safeName := sanitizeFilename(name)
	storedName := fmt.Sprintf("%s_%s", artifactID.String()[:8], safeName)
	path := filepath.Join(dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path) // Cleanup on error
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	info := &ArtifactInfo{
		ID:         artifactID,
		Name:       name,
		Kind:       kind,
		PropertyID: propertyID,
		Size:       size,
		Path:       storedName,
		CreatedAt:  time.Now(),
	}

	if err := s.saveMetadata(propertyID, artifactID, info); err != nil {
		os.Remove(path) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// Open retrieves an artifact by its ID
func (s *LocalStore) Open(ctx context.Context, propertyID int, artifactID uuid.UUID) (io.ReadCloser, *ArtifactInfo, error) {
	info, err := s.Info(ctx, propertyID, artifactID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.propertyDir(propertyID), info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	return f, info, nil
}

// Delete removes an artifact by its ID
func (s *LocalStore) Delete(ctx context.Context, propertyID int, artifactID uuid.UUID) error {
	info, err := s.Info(ctx, propertyID, artifactID)
	if err != nil {
		return err
	}

	path := filepath.Join(s.propertyDir(propertyID), info.Path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	metaPath := filepath.Join(s.propertyDir(propertyID), ".meta", artifactID.String()+".json")
	os.Remove(metaPath)

	return nil
}

// List returns all artifacts for a property
func (s *LocalStore) List(ctx context.Context, propertyID int) ([]*ArtifactInfo, error) {
	metaDir := filepath.Join(s.propertyDir(propertyID), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*ArtifactInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	artifacts := make([]*ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		info, err := s.Info(ctx, propertyID, id)
		if err != nil {
			continue
		}
		artifacts = append(artifacts, info)
	}

	return artifacts, nil
}

// Info returns metadata for an artifact without opening it
func (s *LocalStore) Info(ctx context.Context, propertyID int, artifactID uuid.UUID) (*ArtifactInfo, error) {
	metaPath := filepath.Join(s.propertyDir(propertyID), ".meta", artifactID.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact not found: %s", artifactID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info ArtifactInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

// saveMetadata saves artifact metadata to a JSON file
func (s *LocalStore) saveMetadata(propertyID int, artifactID uuid.UUID, info *ArtifactInfo) error {
	metaDir := filepath.Join(s.propertyDir(propertyID), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	metaPath := filepath.Join(metaDir, artifactID.String()+".json")
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
