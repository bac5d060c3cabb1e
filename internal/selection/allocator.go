package selection

import (
	"math"
	"time"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/logger"
)

// Allocator fills free slots greedily with fixed cash per slot
type Allocator struct {
	portfolio strategyconfig.Portfolio
	lotSize   int
	logger    *logger.Logger
}

// Allocation is the outcome of one selection pass
type Allocation struct {
	Capacity int
	Buys     []contracts.BuyOrder
	Skipped  []contracts.SkippedCandidate
}

// NewAllocator creates an allocator
func NewAllocator(policy *strategyconfig.Config, log *logger.Logger) *Allocator {
	return &Allocator{
		portfolio: policy.Portfolio,
		lotSize:   contracts.LotSize,
		logger:    log,
	}
}

// Capacity returns the number of free slots for holdings
func (a *Allocator) Capacity(holdings int) int {
	n := a.portfolio.MaxPositions - holdings
	if n < 0 {
		return 0
	}
	return n
}

// Allocate walks ranked candidates until capacity is filled
// 잔여 예산 재분배 없음, 한 번 지나간 후보는 재검토하지 않음
func (a *Allocator) Allocate(ranked []contracts.Candidate, holdings int) *Allocation {
	alloc := &Allocation{
		Capacity: a.Capacity(holdings),
		Buys:     make([]contracts.BuyOrder, 0),
		Skipped:  make([]contracts.SkippedCandidate, 0),
	}

	for _, c := range ranked {
		if len(alloc.Buys) >= alloc.Capacity {
			break
		}

		if c.IsLimitUp {
			a.logger.WithFields(map[string]interface{}{
				"code":    c.Code,
				"pct_chg": c.PctChange,
			}).Info("Skipping limit-up candidate")
			alloc.Skipped = append(alloc.Skipped, contracts.SkippedCandidate{Candidate: c, Reason: contracts.SkipReasonLimitUp})
			continue
		}

		shares := LotShares(a.portfolio.CashPerSlot, c.Price, a.lotSize)
		if shares < a.lotSize {
			// 1手 미만은 슬롯 소모 없음
			a.logger.WithFields(map[string]interface{}{
				"code":  c.Code,
				"price": c.Price,
			}).Debug("Skipping candidate below one lot")
			alloc.Skipped = append(alloc.Skipped, contracts.SkippedCandidate{Candidate: c, Reason: contracts.SkipReasonLotSize})
			continue
		}

		alloc.Buys = append(alloc.Buys, contracts.BuyOrder{Candidate: c, Shares: shares})
	}

	return alloc
}

// LotShares returns floor(cash / price / lot) * lot
// 예: 20000 / 45 → 400, 20000 / 210 → 0
func LotShares(cash, price float64, lot int) int {
	if price <= 0 || lot <= 0 || cash <= 0 {
		return 0
	}
	lots := math.Floor(cash / price / float64(lot))
	return int(lots) * lot
}

// Open adds new positions for buys to held and returns the merged map
// cost = max_price = 매수가, entry_date = today
func Open(held map[string]contracts.Position, buys []contracts.BuyOrder, today time.Time) map[string]contracts.Position {
	next := make(map[string]contracts.Position, len(held)+len(buys))
	for code, p := range held {
		next[code] = p
	}
	for _, b := range buys {
		next[b.Code] = contracts.NewPosition(b.Code, b.Price, b.Shares, today)
	}
	return next
}
