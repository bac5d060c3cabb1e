package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/rebalancer/internal/report"
)

var (
	positionsFile string
	positionsJSON bool
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "보유 포지션 조회",
	Long: `현재 저장된 보유 포지션을 출력합니다.

Example:
  go run ./cmd/quant positions
  go run ./cmd/quant positions --json`,
	RunE: listPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)

	positionsCmd.Flags().StringVar(&positionsFile, "positions", "", "positions JSON file (forces the file store)")
	positionsCmd.Flags().BoolVar(&positionsJSON, "json", false, "print as JSON")
}

func listPositions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, overrides{positionsPath: positionsFile})
	if err != nil {
		return err
	}
	defer a.Close()

	held, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	if positionsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(held)
	}

	report.New(os.Stdout).Positions(held)
	return nil
}
