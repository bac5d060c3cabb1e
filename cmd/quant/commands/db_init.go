package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rebalancer/internal/positions"
	"github.com/wonny/rebalancer/pkg/config"
	"github.com/wonny/rebalancer/pkg/database"
	"github.com/wonny/rebalancer/pkg/logger"
)

// dbInitCmd represents the db-init command
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "PostgreSQL 연결 확인 및 포지션 테이블 생성",
	Long: `데이터베이스 연결을 테스트하고 trading.positions 테이블을 생성합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- 데이터베이스 연결 생성 + Ping
- trading 스키마 / positions 테이블 생성 (이미 있으면 유지)
- Connection Pool 통계 표시

Example:
  go run ./cmd/quant db-init`,
	RunE: runDBInit,
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}

func runDBInit(cmd *cobra.Command, args []string) error {
	PrintTitle("Database Init")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("❌ DATABASE_URL is not set")
	}
	PrintKeyValue("ENV", cfg.Env, 12)
	PrintKeyValue("Database", maskPassword(cfg.Database.URL), 12)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	PrintSuccess("Database connection established")

	store := positions.NewPostgresStore(db.Pool, logger.New(cfg))
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	PrintSuccess("Schema trading.positions ready")

	held, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	stats := db.Pool.Stat()
	PrintSeparator()
	PrintKeyValue("Positions", fmt.Sprintf("%d", len(held)), 12)
	PrintKeyValue("Total conns", fmt.Sprintf("%d", stats.TotalConns()), 12)
	PrintKeyValue("Idle conns", fmt.Sprintf("%d", stats.IdleConns()), 12)
	PrintKeyValue("Max conns", fmt.Sprintf("%d", stats.MaxConns()), 12)

	return nil
}
