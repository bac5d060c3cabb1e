package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Portfolio ===
	if cfg.Portfolio.MaxPositions < 1 {
		return ValidationError{"portfolio.max_positions", "must be >= 1"}
	}
	if cfg.Portfolio.CashPerSlot <= 0 || !isFinite(cfg.Portfolio.CashPerSlot) {
		return ValidationError{"portfolio.cash_per_slot", "must be > 0"}
	}

	// === Screening ===
	if !isFinite(cfg.Screening.MinPredictedScore) {
		return ValidationError{"screening.min_predicted_score", "must be finite"}
	}

	// === Scoring ===
	s := cfg.Scoring
	if s.TurnoverMin < 0 || s.TurnoverMin > s.TurnoverMax {
		return ValidationError{"scoring.turnover_min", "must satisfy 0 <= turnover_min <= turnover_max"}
	}
	if s.AmplitudeMin < 0 {
		return ValidationError{"scoring.amplitude_min", "must be >= 0"}
	}
	if s.VolumeRatioMin < 0 {
		return ValidationError{"scoring.volume_ratio_min", "must be >= 0"}
	}
	if s.WashoutBonus < 0 || !isFinite(s.WashoutBonus) {
		return ValidationError{"scoring.washout_bonus", "must be >= 0"}
	}
	if s.VolumeBonus < 0 || !isFinite(s.VolumeBonus) {
		return ValidationError{"scoring.volume_bonus", "must be >= 0"}
	}

	// === Exit ===
	if err := validateFraction(cfg.Exit.StopLossPct, "exit.stop_loss_pct"); err != nil {
		return err
	}
	if err := validateFraction(cfg.Exit.TrailMinProfitPct, "exit.trail_min_profit_pct"); err != nil {
		return err
	}
	if err := validateFraction(cfg.Exit.TrailDrawdownPct, "exit.trail_drawdown_pct"); err != nil {
		return err
	}
	if !isFinite(cfg.Exit.SignalExitBelow) {
		return ValidationError{"exit.signal_exit_below", "must be finite"}
	}

	// === LimitUp ===
	if cfg.LimitUp.Default <= 0 {
		return ValidationError{"limit_up.default", "must be > 0"}
	}
	for i, rule := range cfg.LimitUp.Rules {
		field := fmt.Sprintf("limit_up.rules[%d]", i)
		if len(rule.Prefixes) == 0 && rule.NameContains == "" {
			return ValidationError{field, "must have prefixes or name_contains"}
		}
		if rule.Threshold <= 0 {
			return ValidationError{field + ".threshold", "must be > 0"}
		}
		for _, p := range rule.Prefixes {
			if p == "" {
				return ValidationError{field + ".prefixes", "must not contain empty prefix"}
			}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 신규 매수 직후 다음 사이클에 바로 청산될 수 있음
	if cfg.Screening.MinPredictedScore < cfg.Exit.SignalExitBelow {
		warnings = append(warnings, Warning{
			Code:    "ENTRY_BELOW_EXIT",
			Message: "min_predicted_score < signal_exit_below: 진입 직후 signal reversal 청산 가능",
		})
	}

	// 보너스가 모델 점수를 압도
	maxBonus := 2*cfg.Scoring.WashoutBonus + cfg.Scoring.VolumeBonus
	if maxBonus > 1.0 {
		warnings = append(warnings, Warning{
			Code:    "BONUS_DOMINATES",
			Message: fmt.Sprintf("max technical bonus %.2f > 1.0: 모델 점수보다 팩터가 우선", maxBonus),
		})
	}

	return warnings
}

// === Helper Functions ===

// validateFraction는 비율 값이 (0, 1) 범위인지 검증
func validateFraction(v float64, field string) error {
	if !isFinite(v) || v <= 0 || v >= 1 {
		return ValidationError{field, "must be in range (0, 1)"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
