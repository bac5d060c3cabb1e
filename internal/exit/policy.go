package exit

import (
	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/positions"
	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/logger"
)

// Policy decides HOLD/SELL for each held position
// ⭐ SSOT: 청산 규칙은 여기서만 (첫 매치 우선)
type Policy struct {
	cfg    strategyconfig.Exit
	logger *logger.Logger
}

// Result is the outcome of one exit pass
type Result struct {
	Decisions []contracts.HoldingDecision // code 오름차순
	Remaining map[string]contracts.Position
	Summary   contracts.AccountSummary
}

// NewPolicy creates the exit policy
func NewPolicy(policy *strategyconfig.Config, log *logger.Logger) *Policy {
	return &Policy{cfg: policy.Exit, logger: log}
}

// Evaluate runs the exit rules over every held position
// 입력 map은 변경하지 않음. P&L 집계는 매도 여부와 무관하게 전체 포지션 대상
func (p *Policy) Evaluate(held map[string]contracts.Position, snap *contracts.Snapshot, preds *contracts.PredictionTable) *Result {
	result := &Result{
		Decisions: make([]contracts.HoldingDecision, 0, len(held)),
		Remaining: make(map[string]contracts.Position, len(held)),
	}

	for _, code := range positions.SortedCodes(held) {
		pos := held[code]
		pos.Code = code

		decision := p.decide(&pos, snap, preds)

		result.Summary.Holdings++
		result.Summary.MarketValue += decision.MarketValue
		result.Summary.Cost += pos.CostValue()
		result.Summary.UnrealizedPnL += decision.Profit

		if decision.Action == contracts.ActionSell {
			p.logger.WithFields(map[string]interface{}{
				"code":       code,
				"reason":     string(decision.Reason),
				"profit_pct": decision.ProfitPct,
				"drawdown":   decision.Drawdown,
			}).Info("Exit triggered")
		} else {
			result.Remaining[code] = pos
		}

		result.Decisions = append(result.Decisions, decision)
	}

	return result
}

// decide updates the high-water mark of pos and applies the rules
func (p *Policy) decide(pos *contracts.Position, snap *contracts.Snapshot, preds *contracts.PredictionTable) contracts.HoldingDecision {
	// 시세 없으면 매수가 기준 (에러 아님)
	current := pos.CostBasis
	name := contracts.UnknownName
	rec, priceKnown := snap.Get(pos.Code)
	if priceKnown {
		current = rec.Price
		if rec.Name != "" {
			name = rec.Name
		}
	}

	// 1. 최고가 갱신
	pos.Observe(current)

	// 2. 수익률 / 고점 대비 하락률
	profitPct := 0.0
	if pos.CostBasis > 0 {
		profitPct = (current - pos.CostBasis) / pos.CostBasis
	}
	drawdown := 0.0
	if pos.MaxPrice > 0 {
		drawdown = (pos.MaxPrice - current) / pos.MaxPrice
	}

	score, hasPrediction := preds.Get(pos.Code)

	d := contracts.HoldingDecision{
		Code:           pos.Code,
		Name:           name,
		Action:         contracts.ActionHold,
		PriceKnown:     priceKnown,
		CurrentPrice:   current,
		CostBasis:      pos.CostBasis,
		Shares:         pos.Shares,
		MaxPrice:       pos.MaxPrice,
		MarketValue:    current * float64(pos.Shares),
		Profit:         (current - pos.CostBasis) * float64(pos.Shares),
		ProfitPct:      profitPct,
		Drawdown:       drawdown,
		PredictedScore: score,
		HasPrediction:  hasPrediction,
	}

	// 3. 첫 매치 우선
	switch {
	case profitPct < -p.cfg.StopLossPct:
		d.Reason = contracts.ExitReasonStopLoss
	case profitPct > p.cfg.TrailMinProfitPct && drawdown > p.cfg.TrailDrawdownPct:
		d.Reason = contracts.ExitReasonTrailingTakeProfit
	case hasPrediction && score < p.cfg.SignalExitBelow:
		d.Reason = contracts.ExitReasonSignalReversal
	case !hasPrediction && p.cfg.ExitOnMissingSignal:
		d.Reason = contracts.ExitReasonSignalMissing
	}
	if d.Reason != contracts.ExitReasonNone {
		d.Action = contracts.ActionSell
	}

	return d
}
