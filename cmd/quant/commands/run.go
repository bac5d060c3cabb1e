package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rebalancer/internal/contracts"
)

var (
	runDryRun      bool
	runPredictions string
	runPositions   string
	runSnapshot    string
	runDate        string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "리밸런싱 사이클 1회 실행",
	Long: `리밸런싱 사이클을 한 번 실행합니다.

이 명령어는:
- 보유 포지션 로드 (POSITION_STORE)
- 예측 점수 CSV + 시세 스냅샷 로드
- 손절 / 이동 익절 / 신호 반전 청산
- 복합 점수 기준 신규 편입 (상한가 제외, 1手 단위)
- 포지션 저장 후 리포트 출력

Example:
  go run ./cmd/quant run
  go run ./cmd/quant run --dry-run
  go run ./cmd/quant run --snapshot https://example.com/spot/{date} --date 2026-10-14`,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "evaluate without saving positions")
	runCmd.Flags().StringVar(&runPredictions, "predictions", "", "prediction CSV (default: PREDICTIONS_PATH)")
	runCmd.Flags().StringVar(&runPositions, "positions", "", "positions JSON file (forces the file store)")
	runCmd.Flags().StringVar(&runSnapshot, "snapshot", "", "market snapshot file path or http(s) URL")
	runCmd.Flags().StringVar(&runDate, "date", "", "trading date YYYY-MM-DD (default: today, weekends → Friday)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	today := time.Now()
	if runDate != "" {
		d, err := contracts.ParseTradeDate(runDate)
		if err != nil {
			return err
		}
		today = d.Time
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, overrides{
		predictionsPath: runPredictions,
		positionsPath:   runPositions,
		snapshot:        runSnapshot,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	eng, err := a.buildEngine(ctx)
	if err != nil {
		return err
	}
	eng.DryRun = runDryRun

	result, err := eng.RunCycle(ctx, today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Cycle aborted: %v\n", err)
		return err
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Cycle %s completed in %.2fs (sold %d, bought %d, holdings %d)",
		result.RunID, result.Duration.Seconds(), result.Sold(), len(result.Buys), len(result.Positions)))
	if result.DryRun {
		PrintInfo("Dry run: positions were not saved")
	}
	if result.RejectedMarketRows > 0 || result.RejectedPredictionRows > 0 {
		PrintWarning(fmt.Sprintf("Rejected rows: market %d, predictions %d",
			result.RejectedMarketRows, result.RejectedPredictionRows))
	}

	return nil
}
