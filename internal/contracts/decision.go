package contracts

// Action represents the action to take for a position
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ExitReason 청산 사유
type ExitReason string

const (
	ExitReasonNone               ExitReason = ""
	ExitReasonStopLoss           ExitReason = "stop-loss"            // 손절
	ExitReasonTrailingTakeProfit ExitReason = "trailing take-profit" // 이동 익절
	ExitReasonSignalReversal     ExitReason = "signal reversal"      // 모델 점수 음전환
	ExitReasonSignalMissing      ExitReason = "signal missing"       // 예측 누락 (옵션)
)

// UnknownName is used when a held instrument is absent from the snapshot
const UnknownName = "unknown"

// HoldingDecision is the exit policy verdict for one held position
// ⭐ SSOT: 보유 종목 판단 결과는 여기서만
type HoldingDecision struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Action         Action     `json:"action"`
	Reason         ExitReason `json:"reason,omitempty"`
	PriceKnown     bool       `json:"price_known"`
	CurrentPrice   float64    `json:"current_price"`
	CostBasis      float64    `json:"cost_basis"`
	Shares         int        `json:"shares"`
	MaxPrice       float64    `json:"max_price"`
	MarketValue    float64    `json:"market_value"`
	Profit         float64    `json:"profit"`
	ProfitPct      float64    `json:"profit_pct"`
	Drawdown       float64    `json:"drawdown"`
	PredictedScore float64    `json:"predicted_score"`
	HasPrediction  bool       `json:"has_prediction"`
}

// Candidate is a buy candidate during one selection pass
type Candidate struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	PctChange      float64  `json:"pct_chg"`
	PredictedScore float64  `json:"predicted_score"`
	CompositeScore float64  `json:"composite_score"`
	Reasons        []string `json:"reasons"`
	IsLimitUp      bool     `json:"is_limit_up"`
}

// BuyOrder is an accepted candidate sized into whole lots
type BuyOrder struct {
	Candidate
	Shares int `json:"shares"`
}

// SkipReason 후보 제외 사유
type SkipReason string

const (
	SkipReasonLimitUp SkipReason = "limit-up"
	SkipReasonLotSize SkipReason = "below one lot"
)

// SkippedCandidate records a ranked candidate that was passed over
type SkippedCandidate struct {
	Candidate
	Reason SkipReason `json:"reason"`
}

// AccountSummary aggregates P&L over every position evaluated in a cycle
type AccountSummary struct {
	Holdings      int     `json:"holdings"`
	MarketValue   float64 `json:"market_value"`
	Cost          float64 `json:"cost"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// ReturnPct returns unrealized P&L over cost (0 when cost is 0)
func (s AccountSummary) ReturnPct() float64 {
	if s.Cost <= 0 {
		return 0
	}
	return s.UnrealizedPnL / s.Cost
}
