package selection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/scoring"
	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/logger"
)

var today = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func newRanker(policy *strategyconfig.Config) *Ranker {
	return NewRanker(policy, scoring.NewScorer(policy))
}

func TestRank(t *testing.T) {
	policy := strategyconfig.Default()

	preds := contracts.NewPredictionTable()
	preds.Add("600001", 0.30) // 보너스 없음
	preds.Add("600002", 0.20) // +0.2 → 0.40
	preds.Add("600003", 0.05) // 최소 점수 미달
	preds.Add("600004", 0.40) // 동점, feed 순서상 뒤
	preds.Add("600005", 0.90) // 보유 중
	preds.Add("600006", 0.50) // 스냅샷 없음

	snap := contracts.NewSnapshot()
	for _, code := range []string{"600001", "600003", "600004", "600005"} {
		snap.Records[code] = contracts.MarketRecord{Code: code, Price: 10}
	}
	snap.Records["600002"] = contracts.MarketRecord{Code: "600002", Price: 10, Amplitude: 5}

	held := map[string]contracts.Position{"600005": {Code: "600005"}}

	ranked := newRanker(policy).Rank(held, snap, preds)
	codes := make([]string, 0, len(ranked))
	for _, c := range ranked {
		codes = append(codes, c.Code)
	}

	assert.Equal(t, []string{"600002", "600004", "600001"}, codes)
	assert.InDelta(t, 0.4, ranked[0].CompositeScore, 1e-9)
}

func TestLotShares(t *testing.T) {
	assert.Equal(t, 0, LotShares(20000, 210, 100))
	assert.Equal(t, 400, LotShares(20000, 45, 100))
	assert.Equal(t, 200, LotShares(20000, 100, 100))
	assert.Equal(t, 0, LotShares(20000, 0, 100))
	assert.Equal(t, 0, LotShares(20000, -5, 100))
}

func TestAllocate_Capacity(t *testing.T) {
	policy := strategyconfig.Default()
	alloc := NewAllocator(policy, logger.Nop())

	ranked := make([]contracts.Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		ranked = append(ranked, contracts.Candidate{Code: fmt.Sprintf("6000%02d", i), Price: 10, CompositeScore: 1})
	}

	tests := []struct {
		holdings int
		want     int
	}{
		{0, 10},
		{7, 3},
		{10, 0},
		{12, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("holdings=%d", tt.holdings), func(t *testing.T) {
			res := alloc.Allocate(ranked, tt.holdings)
			assert.Equal(t, tt.want, res.Capacity)
			assert.Len(t, res.Buys, tt.want)
			assert.LessOrEqual(t, tt.holdings+len(res.Buys), max(tt.holdings, policy.Portfolio.MaxPositions))
		})
	}
}

func TestAllocate_SkipsLimitUpAndSmallLots(t *testing.T) {
	policy := strategyconfig.Default()
	policy.Portfolio.MaxPositions = 2
	alloc := NewAllocator(policy, logger.Nop())

	ranked := []contracts.Candidate{
		{Code: "600001", Price: 10, IsLimitUp: true},
		{Code: "600002", Price: 210},
		{Code: "600003", Price: 45},
		{Code: "600004", Price: 20},
		{Code: "600005", Price: 10},
	}

	res := alloc.Allocate(ranked, 0)
	require.Len(t, res.Buys, 2)
	assert.Equal(t, "600003", res.Buys[0].Code)
	assert.Equal(t, 400, res.Buys[0].Shares)
	assert.Equal(t, "600004", res.Buys[1].Code)
	assert.Equal(t, 1000, res.Buys[1].Shares)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, contracts.SkipReasonLimitUp, res.Skipped[0].Reason)
	assert.Equal(t, contracts.SkipReasonLotSize, res.Skipped[1].Reason)

	for _, b := range res.Buys {
		assert.False(t, b.IsLimitUp)
		assert.Zero(t, b.Shares%contracts.LotSize)
	}
}

func TestOpen(t *testing.T) {
	held := map[string]contracts.Position{
		"000001": {Code: "000001", CostBasis: 10, Shares: 100, MaxPrice: 11},
	}
	buys := []contracts.BuyOrder{{Candidate: contracts.Candidate{Code: "600519", Price: 45}, Shares: 400}}

	next := Open(held, buys, today)
	require.Len(t, next, 2)
	assert.Len(t, held, 1)

	p := next["600519"]
	assert.Equal(t, 45.0, p.CostBasis)
	assert.Equal(t, 45.0, p.MaxPrice)
	assert.Equal(t, 400, p.Shares)
	assert.Equal(t, "2026-10-14", p.EntryDate.String())
	require.NoError(t, p.Validate())
}
