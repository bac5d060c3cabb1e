package predictions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rebalancer/pkg/logger"
)

func TestParse(t *testing.T) {
	input := `datetime,instrument,score
2026-10-14,600519,0.82
2026-10-14,1,0.15
2026-10-14,300750,-0.3
`
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, 0, table.Rejected)

	score, ok := table.Get("000001")
	require.True(t, ok)
	assert.Equal(t, 0.15, score)

	// 입력 순서 유지
	records := table.Records()
	assert.Equal(t, "600519", records[0].Code)
	assert.Equal(t, "000001", records[1].Code)
	assert.Equal(t, "300750", records[2].Code)
}

func TestParse_FallbackHeaders(t *testing.T) {
	input := "code,pred\n600000,0.5\n"
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	score, ok := table.Get("600000")
	require.True(t, ok)
	assert.Equal(t, 0.5, score)
}

func TestParse_RejectsBadRows(t *testing.T) {
	input := `instrument,score
600519,abc
,0.3
600036,NaN
000002
600"002,0.5
600000,0.4
`
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 5, table.Rejected)
}

func TestParse_StrayQuoteSkipsOnlyThatRow(t *testing.T) {
	input := "datetime,instrument,score\n" +
		"2026-10-14,600001,0.5\n" +
		"2026-10-14,600\"002,0.4\n" +
		"2026-10-14,600003,0.3\n"

	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.Rejected)

	_, ok := table.Get("600003")
	assert.True(t, ok)
}

func TestParse_DuplicateLastWins(t *testing.T) {
	input := "instrument,score\n600519,0.1\n600000,0.2\n600519,0.9\n"
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	score, _ := table.Get("600519")
	assert.Equal(t, 0.9, score)
	assert.Equal(t, "600519", table.Records()[0].Code)
	assert.Equal(t, 2, table.Len())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrMalformedFeed},
		{"no score column", "instrument,value\n600519,1\n", ErrMalformedFeed},
		{"no instrument column", "ticker,score\n600519,1\n", ErrMalformedFeed},
		{"all rejected", "instrument,score\n600519,x\n", ErrNoValidRows},
		{"header only", "instrument,score\n", ErrNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCSVSource_Load(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewCSVSource(filepath.Join(dir, "missing.csv"), logger.Nop()).Load(ctx)
	assert.True(t, errors.Is(err, ErrFeedNotFound))

	path := filepath.Join(dir, "daily_scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffdatetime,instrument,score\n2026-10-14,600519,0.7\n"), 0o644))

	table, err := NewCSVSource(path, logger.Nop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}
