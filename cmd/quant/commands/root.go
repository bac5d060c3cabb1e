package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Washout Rebalancer - 일간 룰 기반 리밸런싱 엔진",
	Long: `Washout Rebalancer Unified CLI

모델 예측 점수 + 실시간 시세 스냅샷으로 보유 종목 청산과 신규 편입을 결정합니다.
한 번의 실행 = 한 사이클 (load → fetch → exit → select → persist → report).

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant run --dry-run
  go run ./cmd/quant run --snapshot trade/snapshot.json --date 2026-10-14
  go run ./cmd/quant positions
  go run ./cmd/quant schedule
  go run ./cmd/quant validate-config --policy config/policy.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "policy YAML (default: POLICY_PATH or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
