package smoke

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Summarize renders the outcome table for one suite and reports
// whether every scenario passed.
func Summarize(outcomes []CheckOutcome) (string, bool) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Scenario", "Status", "Detail"})

	passed := 0
	for _, outcome := range outcomes {
		detail := ""
		if outcome.Status == StatusFail {
			detail = outcome.Detail
		} else {
			passed++
		}
		tw.AppendRow(table.Row{outcome.Name, string(outcome.Status), detail})
	}

	var sb strings.Builder
	sb.WriteString("\n📋 Summary:\n")
	sb.WriteString(tw.Render())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("📊 %d/%d scenarios passed\n", passed, len(outcomes)))

	ok := passed == len(outcomes)
	if ok {
		sb.WriteString("🎉 All scenarios passed!\n")
	} else {
		sb.WriteString("💔 Some scenarios failed\n")
	}
	return sb.String(), ok
}
