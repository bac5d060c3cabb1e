package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
)

// DatePlaceholder in the snapshot URL is replaced by the trading date (YYYY-MM-DD)
const DatePlaceholder = "{date}"

// HTTPGetter is the part of httputil.Client used here
type HTTPGetter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// HTTPSource fetches the provider JSON array over HTTP behind a circuit breaker
type HTTPSource struct {
	url     string
	client  HTTPGetter
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewHTTPSource creates an HTTP snapshot source
// 연속 3회 실패 시 60초간 차단
func NewHTTPSource(url string, client HTTPGetter, log *logger.Logger) *HTTPSource {
	st := gobreaker.Settings{Name: "market-snapshot"}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.WithFields(map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("Circuit breaker state changed")
	}

	return &HTTPSource{
		url:     url,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  log,
	}
}

// Fetch GETs the snapshot for date and normalises it
func (s *HTTPSource) Fetch(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	url := strings.ReplaceAll(s.url, DatePlaceholder, date.Format(contracts.DateLayout))

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.get(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotUnavailable, url, err)
	}

	return finish(s.logger, url, result.([]Row))
}

// Location returns the URL template
func (s *HTTPSource) Location() string { return s.url }

// State exposes the breaker state
func (s *HTTPSource) State() gobreaker.State {
	return s.breaker.State()
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]Row, error) {
	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return DecodeRows(resp.Body)
}
