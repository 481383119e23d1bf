package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
)

// PrintCostSummary renders the AI spend of today and this month.
func PrintCostSummary(w io.Writer, summary *cost.Summary) {
	if summary == nil {
		return
	}
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	_, _ = cyan.Fprintf(w, "\n%s AI usage\n", StatsEmoji)
	_, _ = fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━")

	PrintKeyValue(w, "calls today", fmt.Sprintf("%d", summary.CallsToday))
	PrintKeyValue(w, "cache hits today", green.Sprintf("%d", summary.CacheHits))
	PrintKeyValue(w, "today", yellow.Sprintf("$%.4f USD", summary.DailyTotal))
	PrintKeyValue(w, "this month", yellow.Sprintf("$%.4f USD", summary.MonthlyTotal))

	if summary.BudgetDaily > 0 {
		budget := fmt.Sprintf("$%.2f USD (%.1f%% used)", summary.BudgetDaily, summary.PercentUsed)
		if summary.PercentUsed >= 80 {
			budget = Warning.Sprint(budget)
		}
		PrintKeyValue(w, "daily budget", budget)
	}

	if len(summary.ByModel) > 0 {
		modelNames := make([]string, 0, len(summary.ByModel))
		for name := range summary.ByModel {
			modelNames = append(modelNames, name)
		}
		sort.Strings(modelNames)

		_, _ = fmt.Fprintln(w)
		for _, name := range modelNames {
			PrintKeyValue(w, name, fmt.Sprintf("$%.4f USD", summary.ByModel[name]))
		}
	}
	_, _ = fmt.Fprintln(w)
}
