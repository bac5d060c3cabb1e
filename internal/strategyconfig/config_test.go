package strategyconfig

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 10, cfg.Portfolio.MaxPositions)
	assert.Equal(t, 20000.0, cfg.Portfolio.CashPerSlot)
	assert.Equal(t, 0.1, cfg.Screening.MinPredictedScore)
	assert.Equal(t, 0.05, cfg.Exit.StopLossPct)
	assert.Equal(t, 0.05, cfg.Exit.TrailMinProfitPct)
	assert.Equal(t, 0.03, cfg.Exit.TrailDrawdownPct)
	assert.False(t, cfg.Exit.ExitOnMissingSignal)
	assert.Equal(t, 9.8, cfg.LimitUp.Default)
	require.Len(t, cfg.LimitUp.Rules, 3)
	assert.Equal(t, 29.0, cfg.LimitUp.Rules[0].Threshold)

	assert.Empty(t, Warn(cfg))
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	yamlData := `
meta:
  strategy_id: aggressive
portfolio:
  max_positions: 5
exit:
  exit_on_missing_signal: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "aggressive", cfg.Meta.StrategyID)
	assert.Equal(t, 5, cfg.Portfolio.MaxPositions)
	assert.True(t, cfg.Exit.ExitOnMissingSignal)

	// 파일에 없는 값은 기본값 유지
	assert.Equal(t, 20000.0, cfg.Portfolio.CashPerSlot)
	assert.Equal(t, 0.05, cfg.Exit.StopLossPct)
	assert.Len(t, cfg.LimitUp.Rules, 3)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Parse([]byte("portfolio:\n  max_postions: 3\n"))
	require.Error(t, err)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_LimitUpRules(t *testing.T) {
	cfg, err := Parse([]byte(`
limit_up:
  default: 10
  rules:
    - name: star
      prefixes: ["688"]
      threshold: 19.5
`))
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.LimitUp.Default)
	require.Len(t, cfg.LimitUp.Rules, 1)
	assert.Equal(t, []string{"688"}, cfg.LimitUp.Rules[0].Prefixes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"zero max positions", func(c *Config) { c.Portfolio.MaxPositions = 0 }, "portfolio.max_positions"},
		{"zero cash", func(c *Config) { c.Portfolio.CashPerSlot = 0 }, "portfolio.cash_per_slot"},
		{"nan min score", func(c *Config) { c.Screening.MinPredictedScore = math.NaN() }, "screening.min_predicted_score"},
		{"turnover inverted", func(c *Config) { c.Scoring.TurnoverMin = 15 }, "scoring.turnover_min"},
		{"negative bonus", func(c *Config) { c.Scoring.WashoutBonus = -0.1 }, "scoring.washout_bonus"},
		{"stop loss zero", func(c *Config) { c.Exit.StopLossPct = 0 }, "exit.stop_loss_pct"},
		{"drawdown one", func(c *Config) { c.Exit.TrailDrawdownPct = 1 }, "exit.trail_drawdown_pct"},
		{"limit default", func(c *Config) { c.LimitUp.Default = 0 }, "limit_up.default"},
		{"rule without matcher", func(c *Config) {
			c.LimitUp.Rules = []LimitUpRule{{Name: "x", Threshold: 5}}
		}, "limit_up.rules[0]"},
		{"rule zero threshold", func(c *Config) { c.LimitUp.Rules[1].Threshold = 0 }, "limit_up.rules[1].threshold"},
		{"rule empty prefix", func(c *Config) { c.LimitUp.Rules[0].Prefixes = []string{""} }, "limit_up.rules[0].prefixes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Screening.MinPredictedScore = -0.5
	cfg.Scoring.WashoutBonus = 0.6

	warnings := Warn(cfg)
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "ENTRY_BELOW_EXIT")
	assert.Contains(t, codes, "BONUS_DOMINATES")
}

func TestHash(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	// 동일 설정 → 동일 해시
	h2, _ := Hash(Default())
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Portfolio.MaxPositions = 9
	h3, _ := Hash(changed)
	assert.NotEqual(t, h1, h3)
}

func TestLoad_RepoPolicy(t *testing.T) {
	// 저장소 기본 정책 파일
	path := "../../config/policy.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	// 파일 = 내장 기본값
	fileHash, err := Hash(cfg)
	require.NoError(t, err)
	defaultHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, defaultHash, fileHash)
}
