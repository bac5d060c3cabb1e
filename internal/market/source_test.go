package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/config"
	"github.com/wonny/rebalancer/pkg/httputil"
	"github.com/wonny/rebalancer/pkg/logger"
)

var tradeDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func testClient() *httputil.Client {
	cfg := &config.Config{
		Feeds: config.FeedConfig{
			SnapshotTimeout: 5 * time.Second,
			HTTPRatePerSec:  100,
		},
	}
	return httputil.New(cfg, logger.Nop()).DisableRetry()
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	data := `[
  {"代码": "600519", "名称": "贵州茅台", "最新价": 1688.0},
  {"代码": "600000", "最新价": "bad"}
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	snap, err := NewFileSource(path, logger.Nop()).Fetch(context.Background(), tradeDay)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 1, snap.Rejected[string(RejectBadPrice)])
}

func TestFileSource_Unavailable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewFileSource(filepath.Join(dir, "missing.json"), logger.Nop()).Fetch(ctx, tradeDay)
	assert.True(t, errors.Is(err, ErrSnapshotUnavailable))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[{"code": "600000"}]`), 0o644))
	_, err = NewFileSource(empty, logger.Nop()).Fetch(ctx, tradeDay)
	assert.True(t, errors.Is(err, ErrSnapshotUnavailable))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))
	_, err = NewFileSource(bad, logger.Nop()).Fetch(ctx, tradeDay)
	assert.True(t, errors.Is(err, ErrSnapshotUnavailable))
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"symbol": "000001", "name": "平安银行", "trade": 10.5, "changepct": 1.1}]`)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/spot/"+DatePlaceholder, testClient(), logger.Nop())
	snap, err := src.Fetch(context.Background(), tradeDay)
	require.NoError(t, err)

	assert.Equal(t, "/spot/2026-10-14", gotPath)
	rec, ok := snap.Get("000001")
	require.True(t, ok)
	assert.Equal(t, 10.5, rec.Price)
}

func TestHTTPSource_BreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, testClient(), logger.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := src.Fetch(ctx, tradeDay)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSnapshotUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, src.State())

	// 차단 중에는 요청하지 않음
	_, err := src.Fetch(ctx, tradeDay)
	assert.True(t, errors.Is(err, ErrSnapshotUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewSource(t *testing.T) {
	_, isHTTP := NewSource("https://example.com/spot", testClient(), logger.Nop()).(*HTTPSource)
	assert.True(t, isHTTP)

	_, isFile := NewSource("trade/snapshot.json", testClient(), logger.Nop()).(*FileSource)
	assert.True(t, isFile)
}

type countingSource struct {
	calls int
	snap  *contracts.Snapshot
	err   error
}

func (s *countingSource) Fetch(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	s.calls++
	return s.snap, s.err
}
