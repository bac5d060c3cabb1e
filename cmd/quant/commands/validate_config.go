package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/rebalancer/internal/strategyconfig"
	"github.com/wonny/rebalancer/pkg/config"
)

// validateConfigCmd represents the validate-config command
var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "정책 YAML 검증 및 해시 출력",
	Long: `정책 파일을 strict 모드로 읽고 검증한 뒤 해시를 출력합니다.

- 알 수 없는 필드 → 실패
- 필수 제약 위반 → 실패
- 권장 위반 → 경고

Example:
  go run ./cmd/quant validate-config --policy config/policy.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateConfigCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := policyPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.PolicyPath
	}

	policy, err := strategyconfig.Load(path)
	if err != nil {
		return fmt.Errorf("❌ invalid policy: %w", err)
	}

	hash, err := strategyconfig.Hash(policy)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "(built-in default)"
	}

	PrintTitle("Policy Validation")
	PrintKeyValue("Source", source, 16)
	PrintKeyValue("Strategy", policy.Meta.StrategyID+" "+policy.Meta.Version, 16)
	PrintKeyValue("Hash", hash, 16)
	PrintSeparator()
	PrintKeyValue("Max positions", fmt.Sprintf("%d", policy.Portfolio.MaxPositions), 16)
	PrintKeyValue("Cash per slot", fmt.Sprintf("%.0f", policy.Portfolio.CashPerSlot), 16)
	PrintKeyValue("Min score", fmt.Sprintf("%.2f", policy.Screening.MinPredictedScore), 16)
	PrintKeyValue("Stop loss", fmt.Sprintf("%.1f%%", policy.Exit.StopLossPct*100), 16)
	PrintKeyValue("Trailing", fmt.Sprintf("profit > %.1f%%, drawdown > %.1f%%",
		policy.Exit.TrailMinProfitPct*100, policy.Exit.TrailDrawdownPct*100), 16)
	PrintKeyValue("Limit-up rules", fmt.Sprintf("%d (default %.1f%%)", len(policy.LimitUp.Rules), policy.LimitUp.Default), 16)
	PrintSeparator()

	warnings := strategyconfig.Warn(policy)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	if len(warnings) == 0 {
		PrintSuccess("Policy is valid")
	} else {
		PrintSuccess(fmt.Sprintf("Policy is valid (%d warnings)", len(warnings)))
	}

	return nil
}
