package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/rebalancer/internal/scheduler"
	"github.com/wonny/rebalancer/internal/scheduler/jobs"
)

var scheduleRunNow bool

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "스케줄러 시작 (SCHEDULE_CRON)",
	Long: `SCHEDULE_CRON 주기로 리밸런싱 사이클을 반복 실행합니다.

- 기본: 평일 14:30:00 ("0 30 14 * * MON-FRI", 초 단위 필드 포함)
- 이전 사이클이 끝나지 않았으면 이번 실행은 건너뜀
- 사이클마다 스냅샷 캐시 초기화

스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/quant schedule
  go run ./cmd/quant schedule --now`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "now", false, "run one cycle immediately after start")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, overrides{})
	if err != nil {
		return err
	}
	defer a.Close()

	eng, err := a.buildEngine(ctx)
	if err != nil {
		return err
	}

	sched := scheduler.New(a.log)
	job := jobs.NewRebalanceJob(eng, a.cache, a.cfg.ScheduleCron, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	// Start scheduler
	sched.Start()

	PrintTitle("Washout Rebalancer Scheduler")
	PrintKeyValue("Schedule", job.Schedule(), 10)
	PrintKeyValue("Next run", sched.NextRun().Format("2006-01-02 15:04:05"), 10)
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.GetAllJobs())
	fmt.Println("\nPress Ctrl+C to stop")

	if scheduleRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println()
	sched.Stop()

	stats := sched.GetJobStats()[job.Name()]
	PrintSuccess(fmt.Sprintf("Scheduler stopped (%d runs, %d failed)", stats.TotalRuns, stats.FailureCount))
	return nil
}
