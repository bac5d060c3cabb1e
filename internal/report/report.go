package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/internal/positions"
	"github.com/wonny/rebalancer/internal/scoring"
)

const (
	doubleLine = "════════════════════════════════════════════════════════════"
	singleLine = "────────────────────────────────────────────────────────────"
)

// Reporter renders cycle output as human-readable lines
// ⭐ stdout 전용 (로그는 stderr)
type Reporter struct {
	out io.Writer
}

// New creates a reporter writing to out
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Header prints the cycle banner
func (r *Reporter) Header(runID string, date time.Time, dryRun bool) {
	mode := "LIVE"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintln(r.out, doubleLine)
	fmt.Fprintf(r.out, "  Rebalance cycle %s [%s]\n", date.Format(contracts.DateLayout), mode)
	fmt.Fprintf(r.out, "  Run ID : %s\n", runID)
	fmt.Fprintln(r.out, doubleLine)
}

// Holdings prints one line per evaluated position
func (r *Reporter) Holdings(decisions []contracts.HoldingDecision) {
	r.section("Holdings scan")
	if len(decisions) == 0 {
		fmt.Fprintln(r.out, "(no holdings)")
		return
	}
	for _, d := range decisions {
		fmt.Fprintln(r.out, HoldingLine(d))
	}
}

// HoldingLine formats STATUS code name | pnl (pct) | score | ACTION reason
func HoldingLine(d contracts.HoldingDecision) string {
	status := "PROFIT"
	if d.Profit < 0 {
		status = "LOSS"
	}

	score := "n/a"
	if d.HasPrediction {
		score = fmt.Sprintf("%.2f", d.PredictedScore)
	}

	action := string(d.Action)
	if d.Reason != contracts.ExitReasonNone {
		action += " " + string(d.Reason)
	}

	return fmt.Sprintf("%-6s %s %-8s | pnl %+10.2f (%+.2f%%) | score %5s | %s",
		status, d.Code, d.Name, d.Profit, d.ProfitPct*100, score, action)
}

// Selection prints skipped candidates and planned buys
func (r *Reporter) Selection(capacity int, buys []contracts.BuyOrder, skipped []contracts.SkippedCandidate) {
	r.section(fmt.Sprintf("Selection (%d free slots)", capacity))

	for _, s := range skipped {
		fmt.Fprintf(r.out, "SKIP   %s %s: %s (%+.2f%%)\n", s.Code, s.Name, s.Reason, s.PctChange)
	}
	for _, b := range buys {
		fmt.Fprintf(r.out, "BUY    %s %s: price %.2f x %d | composite %.4f (model %.2f)\n",
			b.Code, b.Name, b.Price, b.Shares, b.CompositeScore, b.PredictedScore)
		fmt.Fprintf(r.out, "       reasons: %s\n", scoring.ReasonText(b.Reasons))
	}
	if len(buys) == 0 {
		fmt.Fprintln(r.out, "(no buys)")
	}
}

// Summary prints the account dashboard
func (r *Reporter) Summary(s contracts.AccountSummary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, doubleLine)
	fmt.Fprintf(r.out, "Account | holdings %d | market value %.0f | cost %.0f | pnl %+.0f (%+.2f%%)\n",
		s.Holdings, s.MarketValue, s.Cost, s.UnrealizedPnL, s.ReturnPct()*100)
	fmt.Fprintln(r.out, doubleLine)
}

// Positions prints the stored positions in code order
func (r *Reporter) Positions(held map[string]contracts.Position) {
	fmt.Fprintln(r.out, singleLine)
	fmt.Fprintf(r.out, "%-8s %10s %8s %10s %12s\n", "CODE", "COST", "SHARES", "MAX", "ENTRY")
	fmt.Fprintln(r.out, singleLine)

	total := 0.0
	for _, code := range positions.SortedCodes(held) {
		p := held[code]
		fmt.Fprintf(r.out, "%-8s %10.2f %8d %10.2f %12s\n", code, p.CostBasis, p.Shares, p.MaxPrice, p.EntryDate.String())
		total += p.CostValue()
	}

	fmt.Fprintln(r.out, singleLine)
	fmt.Fprintf(r.out, "%d positions, cost %.2f\n", len(held), total)
}

func (r *Reporter) section(title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, strings.Repeat("=", 60))
	fmt.Fprintln(r.out, title)
	fmt.Fprintln(r.out, strings.Repeat("=", 60))
}
