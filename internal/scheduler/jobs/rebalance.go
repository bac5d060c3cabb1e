package jobs

import (
	"context"
	"time"

	"github.com/wonny/rebalancer/internal/engine"
	"github.com/wonny/rebalancer/pkg/logger"
)

// DefaultSchedule 평일 14:30:00 (장 마감 30분 전)
const DefaultSchedule = "0 30 14 * * MON-FRI"

// Cycler runs one rebalance cycle
type Cycler interface {
	RunCycle(ctx context.Context, today time.Time) (*engine.CycleResult, error)
}

// Resetter drops per-run cached state
type Resetter interface {
	Reset()
}

// RebalanceJob runs a single engine cycle per activation
type RebalanceJob struct {
	engine   Cycler
	cache    Resetter
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewRebalanceJob creates the job. cache may be nil.
func NewRebalanceJob(eng Cycler, cache Resetter, schedule string, log *logger.Logger) *RebalanceJob {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &RebalanceJob{
		engine:   eng,
		cache:    cache,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Schedule returns the cron schedule
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// Run executes one cycle with a fresh snapshot cache
func (j *RebalanceJob) Run(ctx context.Context) error {
	if j.cache != nil {
		j.cache.Reset()
	}

	result, err := j.engine.RunCycle(ctx, j.now())
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"bought":   len(result.Buys),
		"sold":     result.Sold(),
		"holdings": len(result.Positions),
	}).Info("Scheduled rebalance finished")

	return nil
}
