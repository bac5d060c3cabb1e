package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/exit"
	"github.com/wonny/rebalancer/internal/metrics"
	"github.com/wonny/rebalancer/internal/report"
	"github.com/wonny/rebalancer/internal/scoring"
	"github.com/wonny/rebalancer/internal/selection"
	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/logger"
)

// Deps are the collaborators of one engine
type Deps struct {
	Store       contracts.PositionStore
	Predictions contracts.PredictionSource
	Snapshots   contracts.SnapshotSource
	Reporter    *report.Reporter
	Metrics     *metrics.Recorder // optional
}

// Engine runs rebalance cycles
// ⭐ SSOT: load → fetch → exit → select → persist → report
type Engine struct {
	deps       Deps
	exit       *exit.Policy
	ranker     *selection.Ranker
	allocator  *selection.Allocator
	policyHash string
	logger     *logger.Logger

	// DryRun skips persisting positions
	DryRun bool
}

// CycleResult is the outcome of one cycle
type CycleResult struct {
	RunID      string    `json:"run_id"`
	Date       time.Time `json:"date"`
	DryRun     bool      `json:"dry_run"`
	PolicyHash string    `json:"policy_hash"`

	Decisions []contracts.HoldingDecision   `json:"decisions"`
	Capacity  int                           `json:"capacity"`
	Buys      []contracts.BuyOrder          `json:"buys"`
	Skipped   []contracts.SkippedCandidate  `json:"skipped"`
	Summary   contracts.AccountSummary      `json:"summary"`
	Positions map[string]contracts.Position `json:"positions"`

	RejectedMarketRows     int `json:"rejected_market_rows"`
	RejectedPredictionRows int `json:"rejected_prediction_rows"`

	Duration time.Duration `json:"duration"`
}

// Sold returns the number of positions closed this cycle
func (r *CycleResult) Sold() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Action == contracts.ActionSell {
			n++
		}
	}
	return n
}

// New creates an engine for policy
func New(deps Deps, policy *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	if deps.Store == nil || deps.Predictions == nil || deps.Snapshots == nil {
		return nil, errors.New("engine: store, predictions and snapshots are required")
	}
	if deps.Reporter == nil {
		return nil, errors.New("engine: reporter is required")
	}

	hash, err := strategyconfig.Hash(policy)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	scorer := scoring.NewScorer(policy)

	return &Engine{
		deps:       deps,
		exit:       exit.NewPolicy(policy, log),
		ranker:     selection.NewRanker(policy, scorer),
		allocator:  selection.NewAllocator(policy, log),
		policyHash: hash,
		logger:     log,
	}, nil
}

// RunCycle executes one full rebalance pass for today
// 주말 날짜는 직전 금요일로 보정
func (e *Engine) RunCycle(ctx context.Context, today time.Time) (*CycleResult, error) {
	start := time.Now()
	date := contracts.NewTradeDate(contracts.ResolveTradingDate(today)).Time

	result := &CycleResult{
		RunID:      uuid.NewString(),
		Date:       date,
		DryRun:     e.DryRun,
		PolicyHash: e.policyHash,
	}

	log := e.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"date":   date.Format(contracts.DateLayout),
	})
	log.WithFields(map[string]interface{}{
		"dry_run":     e.DryRun,
		"policy_hash": e.policyHash,
	}).Info("Cycle started")

	if err := e.run(ctx, date, result); err != nil {
		e.deps.Metrics.ObserveCycle(metrics.ResultAborted, time.Since(start))
		e.pushMetrics(ctx, log)
		log.WithError(err).Error("Cycle aborted")
		return nil, err
	}

	result.Duration = time.Since(start)

	outcome := metrics.ResultOK
	if e.DryRun {
		outcome = metrics.ResultDryRun
	}
	e.deps.Metrics.ObserveCycle(outcome, result.Duration)
	e.deps.Metrics.ObserveTrades(string(contracts.ActionBuy), len(result.Buys))
	e.deps.Metrics.ObserveTrades(string(contracts.ActionSell), result.Sold())
	e.deps.Metrics.ObserveTrades(string(contracts.ActionHold), len(result.Decisions)-result.Sold())
	e.deps.Metrics.ObserveRejected(metrics.SourceMarket, result.RejectedMarketRows)
	e.deps.Metrics.ObserveRejected(metrics.SourcePredictions, result.RejectedPredictionRows)
	e.deps.Metrics.SetPortfolio(len(result.Positions), result.Summary.UnrealizedPnL)
	e.pushMetrics(ctx, log)

	log.WithFields(map[string]interface{}{
		"sold":     result.Sold(),
		"bought":   len(result.Buys),
		"holdings": len(result.Positions),
		"pnl":      result.Summary.UnrealizedPnL,
		"duration": result.Duration.String(),
	}).Info("Cycle completed")

	return result, nil
}

func (e *Engine) run(ctx context.Context, date time.Time, result *CycleResult) error {
	// 1. 포지션 로드
	held, err := e.deps.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}

	// 2. 예측 점수
	preds, err := e.deps.Predictions.Load(ctx)
	if err != nil {
		return fmt.Errorf("load predictions: %w", err)
	}
	result.RejectedPredictionRows = preds.Rejected

	// 3. 시세 스냅샷
	snap, err := e.deps.Snapshots.Fetch(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	result.RejectedMarketRows = snap.RejectedTotal()
	if result.RejectedMarketRows > 0 {
		e.logger.WithField("rejected", result.RejectedMarketRows).Warn("Snapshot rows rejected")
	}

	// 4. 청산 판단
	exitResult := e.exit.Evaluate(held, snap, preds)
	result.Decisions = exitResult.Decisions
	result.Summary = exitResult.Summary

	// 5. 신규 편입
	ranked := e.ranker.Rank(exitResult.Remaining, snap, preds)
	alloc := e.allocator.Allocate(ranked, len(exitResult.Remaining))
	result.Capacity = alloc.Capacity
	result.Buys = alloc.Buys
	result.Skipped = alloc.Skipped
	result.Positions = selection.Open(exitResult.Remaining, alloc.Buys, date)

	// 6. 저장
	if e.DryRun {
		e.logger.Info("Dry run, positions not saved")
	} else if err := e.deps.Store.Save(ctx, result.Positions); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}

	// 7. 리포트
	r := e.deps.Reporter
	r.Header(result.RunID, date, e.DryRun)
	r.Holdings(result.Decisions)
	r.Selection(result.Capacity, result.Buys, result.Skipped)
	r.Summary(result.Summary)

	return nil
}

func (e *Engine) pushMetrics(ctx context.Context, log *logger.Logger) {
	if err := e.deps.Metrics.Push(ctx); err != nil {
		log.WithError(err).Warn("Metrics push failed")
	}
}
