package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/quantfold/signalcore/internal/engine"
	"github.com/quantfold/signalcore/internal/modules/validation"
)

// renderDecisions prints the decision table for this run.
func renderDecisions(out io.Writer, decisions []engine.Decision) {
	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].Symbol < decisions[j].Symbol
	})

	fmt.Fprintf(out, "\n%d symbols evaluated\n", len(decisions))

	table := tablewriter.NewWriter(out)
	table.Header("Symbol", "Date", "Signal", "Conf", "Regime", "Size%", "Stop", "Reason")

	for _, d := range decisions {
		stop := "-"
		if d.Plan.StopLoss != nil {
			stop = fmt.Sprintf("%.2f", *d.Plan.StopLoss)
		}
		reason := ""
		if len(d.Result.Reasoning) > 0 {
			reason = d.Result.Reasoning[0]
		}

		table.Append(
			d.Symbol,
			d.Date.Format("2006-01-02"),
			string(d.Result.Signal),
			fmt.Sprintf("%.2f", d.Result.Confidence),
			string(d.Regime),
			fmt.Sprintf("%.1f", d.Plan.PositionSizePct*100),
			stop,
			reason,
		)
	}

	table.Render()
}

// renderQualityReport prints the forward-return quality aggregates.
func renderQualityReport(out io.Writer, report validation.QualityReport) {
	fmt.Fprintf(out, "\nForward-return validation (session %s): %d signals, %d scored, %d excluded (<7 forward bars), %d holds\n",
		report.SessionID, report.TotalSignals, report.Scored, report.Excluded, report.Holds)

	if report.Scored == 0 {
		return
	}

	renderGroupStats(out, "By signal type", report.BySignalType)
	renderGroupStats(out, "By regime", report.ByRegime)
}

func renderGroupStats(out io.Writer, title string, groups map[string]validation.GroupStats) {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "\n%s:\n", title)

	table := tablewriter.NewWriter(out)
	table.Header("Group", "Count", "Win rate", "Avg win", "Avg loss", "Expectancy")

	for _, key := range keys {
		s := groups[key]
		table.Append(
			key,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.1f%%", s.WinRate*100),
			fmt.Sprintf("%.2f%%", s.AvgWin*100),
			fmt.Sprintf("%.2f%%", s.AvgLoss*100),
			fmt.Sprintf("%.3f", s.Expectancy),
		)
	}

	table.Render()
}
