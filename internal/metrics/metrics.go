package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Cycle results
const (
	ResultOK      = "ok"
	ResultDryRun  = "dry_run"
	ResultAborted = "aborted"
)

// Reject sources
const (
	SourceMarket      = "market"
	SourcePredictions = "predictions"
)

// Recorder holds the per-cycle Prometheus metrics
// ⭐ SSOT: 메트릭 정의는 여기서만. nil Recorder는 no-op
type Recorder struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	trades        *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	holdings      prometheus.Gauge
	unrealizedPnL prometheus.Gauge
	cycleDuration prometheus.Histogram

	pushURL string
	job     string
}

// New creates a recorder on a private registry. An empty pushURL disables Push.
func New(pushURL, job string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rebalancer_cycles_total",
				Help: "Total number of rebalance cycles by result",
			},
			[]string{"result"},
		),

		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rebalancer_trades_total",
				Help: "Total number of trade decisions by action",
			},
			[]string{"action"},
		),

		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rebalancer_rejected_rows_total",
				Help: "Total number of input rows rejected during normalisation",
			},
			[]string{"source"},
		),

		holdings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rebalancer_holdings",
				Help: "Number of positions held after the last cycle",
			},
		),

		unrealizedPnL: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rebalancer_unrealized_pnl",
				Help: "Unrealized P&L over positions evaluated in the last cycle",
			},
		),

		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rebalancer_cycle_duration_seconds",
				Help:    "Duration of a rebalance cycle in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		pushURL: pushURL,
		job:     job,
	}

	r.registry.MustRegister(
		r.cycles,
		r.trades,
		r.rejected,
		r.holdings,
		r.unrealizedPnL,
		r.cycleDuration,
	)

	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveCycle counts a cycle and its duration
func (r *Recorder) ObserveCycle(result string, duration time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(duration.Seconds())
}

// ObserveTrades adds n decisions of action
func (r *Recorder) ObserveTrades(action string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.trades.WithLabelValues(action).Add(float64(n))
}

// ObserveRejected adds n rejected rows from source
func (r *Recorder) ObserveRejected(source string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rejected.WithLabelValues(source).Add(float64(n))
}

// SetPortfolio sets the holdings and P&L gauges
func (r *Recorder) SetPortfolio(holdings int, unrealizedPnL float64) {
	if r == nil {
		return
	}
	r.holdings.Set(float64(holdings))
	r.unrealizedPnL.Set(unrealizedPnL)
}

// Push sends the registry to the Pushgateway (no-op without a URL)
func (r *Recorder) Push(ctx context.Context) error {
	if r == nil || r.pushURL == "" {
		return nil
	}
	job := r.job
	if job == "" {
		job = "rebalancer"
	}

	if err := push.New(r.pushURL, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
