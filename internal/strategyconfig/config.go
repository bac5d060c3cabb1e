package strategyconfig

// Config는 리밸런싱 정책의 전체 설정
// ⭐ SSOT: 정책 임계값은 여기서만
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Screening Screening `yaml:"screening" json:"screening"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Exit      Exit      `yaml:"exit" json:"exit"`
	LimitUp   LimitUp   `yaml:"limit_up" json:"limit_up"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Portfolio 슬롯/자금 배분
type Portfolio struct {
	MaxPositions int     `yaml:"max_positions" json:"max_positions"` // 최대 보유 종목 수
	CashPerSlot  float64 `yaml:"cash_per_slot" json:"cash_per_slot"` // 종목당 투입 금액
}

// Screening 신규 진입 후보 필터
type Screening struct {
	MinPredictedScore float64 `yaml:"min_predicted_score" json:"min_predicted_score"`
}

// Scoring 세력 세탁(washout) 팩터 보너스
type Scoring struct {
	TurnoverMin    float64 `yaml:"turnover_min" json:"turnover_min"`         // 换手率 하한 (%)
	TurnoverMax    float64 `yaml:"turnover_max" json:"turnover_max"`         // 换手率 상한 (%) - 너무 높으면 출하
	AmplitudeMin   float64 `yaml:"amplitude_min" json:"amplitude_min"`       // 振幅 하한 (%)
	VolumeRatioMin float64 `yaml:"volume_ratio_min" json:"volume_ratio_min"` // 量比 초과 기준
	WashoutBonus   float64 `yaml:"washout_bonus" json:"washout_bonus"`       // 换手/振幅 보너스
	VolumeBonus    float64 `yaml:"volume_bonus" json:"volume_bonus"`         // 量比 보너스
}

// Exit 청산 규칙 (비율, 0.05 = 5%)
type Exit struct {
	StopLossPct         float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TrailMinProfitPct   float64 `yaml:"trail_min_profit_pct" json:"trail_min_profit_pct"`
	TrailDrawdownPct    float64 `yaml:"trail_drawdown_pct" json:"trail_drawdown_pct"`
	SignalExitBelow     float64 `yaml:"signal_exit_below" json:"signal_exit_below"`
	ExitOnMissingSignal bool    `yaml:"exit_on_missing_signal" json:"exit_on_missing_signal"`
}

// LimitUp 상한가 판정 테이블 (first match wins)
type LimitUp struct {
	Default float64       `yaml:"default" json:"default"`
	Rules   []LimitUpRule `yaml:"rules" json:"rules"`
}

// LimitUpRule matches by code prefix or by name substring
type LimitUpRule struct {
	Name         string   `yaml:"name" json:"name"`
	Prefixes     []string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
	NameContains string   `yaml:"name_contains,omitempty" json:"name_contains,omitempty"`
	Threshold    float64  `yaml:"threshold" json:"threshold"`
}

// Default returns the built-in policy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "washout_v1",
			Version:    "1.0.0",
		},
		Portfolio: Portfolio{
			MaxPositions: 10,
			CashPerSlot:  20000,
		},
		Screening: Screening{
			MinPredictedScore: 0.1,
		},
		Scoring: Scoring{
			TurnoverMin:    3.0,
			TurnoverMax:    12.0,
			AmplitudeMin:   4.0,
			VolumeRatioMin: 1.2,
			WashoutBonus:   0.2,
			VolumeBonus:    0.1,
		},
		Exit: Exit{
			StopLossPct:         0.05,
			TrailMinProfitPct:   0.05,
			TrailDrawdownPct:    0.03,
			SignalExitBelow:     0,
			ExitOnMissingSignal: false,
		},
		LimitUp: LimitUp{
			Default: 9.8,
			Rules: []LimitUpRule{
				{Name: "beijing", Prefixes: []string{"8", "43", "92"}, Threshold: 29.0},
				{Name: "growth_board", Prefixes: []string{"300", "688"}, Threshold: 19.5},
				{Name: "risk_flagged", NameContains: "ST", Threshold: 4.8},
			},
		},
	}
}
