package selection

import (
	"sort"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/scoring"
	"github.com/wonny/rebalancer/internal/strategyconfig"
)

// Ranker builds and orders buy candidates
// ⭐ SSOT: 후보 필터링/정렬은 여기서만
type Ranker struct {
	screening strategyconfig.Screening
	scorer    *scoring.Scorer
}

// NewRanker creates a ranker
func NewRanker(policy *strategyconfig.Config, scorer *scoring.Scorer) *Ranker {
	return &Ranker{
		screening: policy.Screening,
		scorer:    scorer,
	}
}

// Rank returns candidates sorted by composite score, ties in feed order
// 보유 중, 최소 점수 미달, 스냅샷 부재 종목은 제외
func (r *Ranker) Rank(held map[string]contracts.Position, snap *contracts.Snapshot, preds *contracts.PredictionTable) []contracts.Candidate {
	candidates := make([]contracts.Candidate, 0)

	for _, pred := range preds.Records() {
		if _, isHeld := held[pred.Code]; isHeld {
			continue
		}
		if pred.Score < r.screening.MinPredictedScore {
			continue
		}
		rec, ok := snap.Get(pred.Code)
		if !ok {
			continue
		}

		candidates = append(candidates, r.scorer.Candidate(pred.Code, pred.Score, rec))
	}

	// Sort by composite score (descending), stable
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CompositeScore > candidates[j].CompositeScore
	})

	return candidates
}
