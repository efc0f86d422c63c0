// Package report renders daily analyses and performance statistics as plain
// text for the terminal and the daily email.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rustyeddy/goldmacro/engine"
	"github.com/rustyeddy/goldmacro/ledger"
)

// Subject builds the daily email subject line.
func Subject(prefix string, da *engine.DailyAnalysis) string {
	if prefix == "" {
		prefix = "Gold Signal"
	}
	return fmt.Sprintf("%s - %s - %s", prefix, da.Time.Format("2006-01-02"), da.Signal)
}

// DailyBody renders the daily analysis as the plain-text email body.
func DailyBody(da *engine.DailyAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DAILY GOLD MACRO ANALYSIS\n%s\n\n", da.Time.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "SIGNAL: %s\n", da.Signal)
	fmt.Fprintf(&b, "Bias: %s\n", da.BiasText)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", da.Assessment.Confidence*100)
	fmt.Fprintf(&b, "Risk Level: %s\n", da.Assessment.Risk)
	if da.Assessment.Degraded {
		b.WriteString("NOTE: assessment degraded, one or more indicators were unavailable\n")
	}
	if len(da.Assessment.StaleInputs) > 0 {
		fmt.Fprintf(&b, "NOTE: stale inputs: %s\n", strings.Join(da.Assessment.StaleInputs, ", "))
	}

	b.WriteString("\nMACRO ENVIRONMENT\n")
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Indicator", "Value", "Score", "Weight"})
	for _, c := range da.Assessment.Components {
		mark := ""
		if c.Extrapolated {
			mark = " *"
		}
		t.AppendRow(table.Row{c.Name, fmt.Sprintf("%.2f", c.RawValue),
			fmt.Sprintf("%+.2f%s", c.Score, mark), fmt.Sprintf("%.0f%%", c.Weight*100)})
	}
	t.AppendFooter(table.Row{"composite", "", fmt.Sprintf("%+.3f", da.Assessment.Composite), ""})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if da.FedStance != "" {
		fmt.Fprintf(&b, "\nFed stance: %s | DXY stance: %s\n", da.FedStance, da.DXYStance)
	}

	if da.Sizing != nil {
		b.WriteString("\nPOSITION SIZING\n")
		fmt.Fprintf(&b, "Base risk:     %.2f%%\n", da.Sizing.BaseRiskPct*100)
		fmt.Fprintf(&b, "Adjusted risk: %.3f%%\n", da.Sizing.AdjustedRiskPct*100)
		fmt.Fprintf(&b, "Quantity:      %.2f units\n", da.Sizing.Quantity)
		fmt.Fprintf(&b, "Stop distance: %.2f\n", da.Sizing.StopDistance)
		fmt.Fprintf(&b, "Rationale:     %s\n", da.Sizing.Rationale)
	}

	fmt.Fprintf(&b, "\nANALYSIS\n%s\n", da.Reasoning)
	fmt.Fprintf(&b, "\n---\nGenerated: %s\n", da.Time.Format(time.RFC3339))
	return b.String()
}

// Performance renders the statistics snapshot as a table plus an account
// summary, matching the CLI stats view.
func Performance(p ledger.Performance) string {
	var b strings.Builder

	b.WriteString("TRADING PERFORMANCE REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	acct := table.NewWriter()
	acct.AppendRows([]table.Row{
		{"Initial Capital", money(p.InitialCapital)},
		{"Current Balance", money(p.CurrentBalance)},
		{"Peak Balance", money(p.PeakBalance)},
		{"Total Return", fmt.Sprintf("%+.1f%%", p.TotalReturnPct)},
		{"Max Drawdown", fmt.Sprintf("%.1f%%", p.MaxDrawdownPct)},
	})
	b.WriteString(acct.Render())
	b.WriteString("\n\n")

	trades := table.NewWriter()
	trades.AppendRows([]table.Row{
		{"Total Trades", p.TradeCount},
		{"Winning Trades", p.Wins},
		{"Losing Trades", p.Losses},
		{"Win Rate", fmt.Sprintf("%.1f%%", p.WinRate*100)},
		{"Total P&L", money(p.TotalPnl)},
		{"Largest Win", money(p.LargestWin)},
		{"Largest Loss", money(p.LargestLoss)},
	})
	b.WriteString(trades.Render())
	b.WriteString("\n")
	return b.String()
}

// Trades renders recent trades newest first.
func Trades(trades []ledger.Trade) string {
	if len(trades) == 0 {
		return "No trades recorded yet.\n"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Signal", "Entry", "Exit", "Qty", "P&L", "Balance", "Closed"})
	for _, tr := range trades {
		t.AppendRow(table.Row{
			shortID(tr.ID),
			tr.Signal,
			fmt.Sprintf("%.2f", tr.EntryPrice),
			fmt.Sprintf("%.2f", tr.ExitPrice),
			fmt.Sprintf("%.2f", tr.Quantity),
			fmt.Sprintf("%+.2f", tr.RealizedPnl),
			fmt.Sprintf("%.2f", tr.BalanceAfter),
			tr.ClosedAt.Format("2006-01-02"),
		})
	}
	return t.Render() + "\n"
}

// History renders the balance history in append order.
func History(entries []ledger.BalanceEntry) string {
	if len(entries) == 0 {
		return "No balance history.\n"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Seq", "Time", "Delta", "Balance", "Reason", "Note"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Seq,
			e.Time.Format("2006-01-02 15:04"),
			fmt.Sprintf("%+.2f", e.Delta),
			fmt.Sprintf("%.2f", e.Balance),
			e.Reason,
			e.Note,
		})
	}
	return t.Render() + "\n"
}

// ErrorBody builds the failure-notification email body.
func ErrorBody(runErr error) string {
	return fmt.Sprintf("The daily analysis failed with error:\n\n%v\n\nPlease check the system.\n", runErr)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
