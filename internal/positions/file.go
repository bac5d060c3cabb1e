package positions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
)

// FileStore persists positions as an indented JSON object keyed by code
// ⭐ 원자적 쓰기: <path>.tmp → fsync → rename
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore creates a file-backed store
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Path returns the state file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state file. A missing file is an empty portfolio.
func (s *FileStore) Load(ctx context.Context) (map[string]contracts.Position, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("path", s.path).Debug("No position file, starting empty")
		return make(map[string]contracts.Position), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnreadable, s.path, err)
	}

	raw := make(map[string]contracts.Position)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreUnreadable, s.path, err)
		}
	}

	positions := make(map[string]contracts.Position, len(raw))
	for code, p := range raw {
		np, err := normalize(code, p)
		if err != nil {
			return nil, err
		}
		positions[code] = np
	}

	s.logger.WithFields(map[string]interface{}{
		"path":  s.path,
		"count": len(positions),
	}).Debug("Positions loaded")

	return positions, nil
}

// Save writes the full position set or nothing
func (s *FileStore) Save(ctx context.Context, positions map[string]contracts.Position) error {
	if err := validateAll(positions); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}

	data, err := json.MarshalIndent(positions, "", "    ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":  s.path,
		"count": len(positions),
	}).Info("Positions saved")

	return nil
}

// writeAtomic writes data to a temporary sibling and renames it over path
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
