package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/strategyconfig"
)

// ModelPickTag is rendered when a candidate earned no technical bonus
const ModelPickTag = "model pick"

// Scorer computes composite scores and the limit-up flag
// ⭐ SSOT: 복합 점수 계산은 여기서만
type Scorer struct {
	cfg     strategyconfig.Scoring
	limitUp strategyconfig.LimitUp
}

// NewScorer creates a scorer from the policy
func NewScorer(policy *strategyconfig.Config) *Scorer {
	return &Scorer{
		cfg:     policy.Scoring,
		limitUp: policy.LimitUp,
	}
}

// Composite adds washout factor bonuses to the model score
// 보너스는 독립적으로 가산, 상한 없음
func (s *Scorer) Composite(predicted float64, rec contracts.MarketRecord) (float64, []string) {
	score := predicted
	reasons := make([]string, 0, 3)

	// 1. 适度换手: 거래가 활발하되 출하 수준은 아님
	if rec.Turnover >= s.cfg.TurnoverMin && rec.Turnover <= s.cfg.TurnoverMax {
		score += s.cfg.WashoutBonus
		reasons = append(reasons, fmt.Sprintf("moderate turnover (%s%%)", formatNum(rec.Turnover)))
	}

	// 2. 振幅: 세력 세탁 흔적
	if rec.Amplitude >= s.cfg.AmplitudeMin {
		score += s.cfg.WashoutBonus
		reasons = append(reasons, fmt.Sprintf("active volatility (%s%%)", formatNum(rec.Amplitude)))
	}

	// 3. 量比: 거래량 급증
	if rec.VolumeRatio > s.cfg.VolumeRatioMin {
		score += s.cfg.VolumeBonus
		reasons = append(reasons, fmt.Sprintf("volume spike (%s)", formatNum(rec.VolumeRatio)))
	}

	return score, reasons
}

// LimitUpThreshold returns the daily-limit percent change for an instrument
// 규칙 순서대로 첫 매치 적용
func (s *Scorer) LimitUpThreshold(code, name string) float64 {
	upperName := strings.ToUpper(name)
	for _, rule := range s.limitUp.Rules {
		for _, prefix := range rule.Prefixes {
			if strings.HasPrefix(code, prefix) {
				return rule.Threshold
			}
		}
		if rule.NameContains != "" && strings.Contains(upperName, strings.ToUpper(rule.NameContains)) {
			return rule.Threshold
		}
	}
	return s.limitUp.Default
}

// IsLimitUp reports whether pctChg has reached the limit. NaN is never limit-up.
func (s *Scorer) IsLimitUp(code, name string, pctChg float64) bool {
	if math.IsNaN(pctChg) {
		return false
	}
	return pctChg >= s.LimitUpThreshold(code, name)
}

// Candidate builds a scored candidate from a prediction and its market record
func (s *Scorer) Candidate(code string, predicted float64, rec contracts.MarketRecord) contracts.Candidate {
	composite, reasons := s.Composite(predicted, rec)
	return contracts.Candidate{
		Code:           code,
		Name:           rec.Name,
		Price:          rec.Price,
		PctChange:      rec.PctChange,
		PredictedScore: predicted,
		CompositeScore: composite,
		Reasons:        reasons,
		IsLimitUp:      s.IsLimitUp(code, rec.Name, rec.PctChange),
	}
}

// ReasonText joins reason tags for display
func ReasonText(reasons []string) string {
	if len(reasons) == 0 {
		return ModelPickTag
	}
	return strings.Join(reasons, ", ")
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
