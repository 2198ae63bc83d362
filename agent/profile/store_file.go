package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the profile as a JSON document. Saves write to a
// temporary file in the same directory and rename over the target, so a
// crash mid-write never leaves a torn record.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("profile: file path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (PatientProfile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return PatientProfile{}, ErrProfileNotFound
		}
		return PatientProfile{}, fmt.Errorf("profile: read %s: %w", s.path, err)
	}

	var p PatientProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return PatientProfile{}, fmt.Errorf("profile: decode %s: %w", s.path, err)
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	return p, nil
}

func (s *FileStore) Save(ctx context.Context, p PatientProfile) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("profile: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("profile: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profile: rename temp file: %w", err)
	}
	return nil
}
