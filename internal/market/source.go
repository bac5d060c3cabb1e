package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
)

// ErrSnapshotUnavailable is returned when the snapshot could not be fetched or had no valid rows
var ErrSnapshotUnavailable = errors.New("market snapshot unavailable")

// Source provides the market snapshot for a trading date
type Source = contracts.SnapshotSource

// FileSource reads a provider JSON array from disk
type FileSource struct {
	path   string
	logger *logger.Logger
}

// NewFileSource creates a file snapshot source
func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{path: path, logger: log}
}

// Location returns the snapshot file path
func (s *FileSource) Location() string { return s.path }

// Fetch reads and normalises the file. The date is ignored.
func (s *FileSource) Fetch(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSnapshotUnavailable, s.path, err)
	}

	rows, err := DecodeRows(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotUnavailable, s.path, err)
	}

	return finish(s.logger, s.path, rows)
}

// DecodeRows decodes a JSON array of provider objects
// 객체가 아닌 원소는 nil 행으로 남겨 bad_field로 집계
func DecodeRows(r io.Reader) ([]Row, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot array: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()

		var row Row
		if err := dec.Decode(&row); err != nil {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// finish normalises rows and enforces the zero-valid-rows rule
func finish(log *logger.Logger, origin string, rows []Row) (*contracts.Snapshot, error) {
	snap := Normalize(rows)

	if snap.RejectedTotal() > 0 {
		fields := map[string]interface{}{
			"source":   origin,
			"rejected": snap.RejectedTotal(),
		}
		for _, reason := range snap.RejectReasons() {
			fields["reject_"+reason] = snap.Rejected[reason]
		}
		log.WithFields(fields).Debug("Snapshot rows rejected")
	}

	if snap.Len() == 0 {
		return nil, fmt.Errorf("%w: %s: 0 valid rows of %d", ErrSnapshotUnavailable, origin, len(rows))
	}

	log.WithFields(map[string]interface{}{
		"source":   origin,
		"records":  snap.Len(),
		"rejected": snap.RejectedTotal(),
	}).Info("Market snapshot loaded")

	return snap, nil
}

// NewSource picks the HTTP source for URLs and the file source otherwise
func NewSource(location string, client HTTPGetter, log *logger.Logger) Source {
	if IsURL(location) {
		return NewHTTPSource(location, client, log)
	}
	return NewFileSource(location, log)
}

// IsURL reports whether location is an http(s) URL
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
