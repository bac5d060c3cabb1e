package predictions

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
)

var (
	// ErrFeedNotFound is returned when the prediction file does not exist
	ErrFeedNotFound = errors.New("prediction feed not found")
	// ErrMalformedFeed is returned when the header lacks a required column
	ErrMalformedFeed = errors.New("prediction feed malformed")
	// ErrNoValidRows is returned when every row was rejected
	ErrNoValidRows = errors.New("prediction feed has no valid rows")
)

// 헤더 키 우선순위 (파싱 시 1회만 해석)
var (
	scoreKeys      = []string{"score", "pred", "prediction"}
	instrumentKeys = []string{"instrument", "code", "symbol", "instrument_id"}
)

// CSVSource loads the daily model score table (datetime,instrument,score)
type CSVSource struct {
	path   string
	logger *logger.Logger
}

// NewCSVSource creates a CSV prediction source
func NewCSVSource(path string, log *logger.Logger) *CSVSource {
	return &CSVSource{path: path, logger: log}
}

// Load opens the file and parses it
func (s *CSVSource) Load(ctx context.Context) (*contracts.PredictionTable, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open prediction feed: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":     s.path,
		"rows":     table.Len(),
		"rejected": table.Rejected,
	}).Info("Predictions loaded")

	return table, nil
}

// Parse reads a prediction CSV with a header row
func Parse(r io.Reader) (*contracts.PredictionTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedFeed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedFeed, err)
	}

	scoreCol := resolveColumn(header, scoreKeys)
	if scoreCol < 0 {
		return nil, fmt.Errorf("%w: no score column (want one of %v)", ErrMalformedFeed, scoreKeys)
	}
	codeCol := resolveColumn(header, instrumentKeys)
	if codeCol < 0 {
		return nil, fmt.Errorf("%w: no instrument column (want one of %v)", ErrMalformedFeed, instrumentKeys)
	}

	table := contracts.NewPredictionTable()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// 깨진 행만 제외
			table.Rejected++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}

		if codeCol >= len(row) || scoreCol >= len(row) {
			table.Rejected++
			continue
		}

		code := contracts.NormalizeCode(row[codeCol])
		if code == "" {
			table.Rejected++
			continue
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(row[scoreCol]), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			table.Rejected++
			continue
		}

		table.Add(code, score)
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("%w (%d rejected)", ErrNoValidRows, table.Rejected)
	}

	return table, nil
}

func resolveColumn(header []string, keys []string) int {
	for _, key := range keys {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), key) {
				return i
			}
		}
	}
	return -1
}
