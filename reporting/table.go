package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-harness/runner"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

// TableReporter renders a finished run as a table of tests.
type TableReporter struct {
	out   io.Writer
	title string
	style bool
}

// NewTableReporter creates a table reporter writing to out. With style set the
// table is colored by the overall run status.
func NewTableReporter(out io.Writer, title string, style bool) *TableReporter {
	return &TableReporter{out: out, title: title, style: style}
}

// Render writes the table for result and returns the rendered text.
func (tr *TableReporter) Render(result *runner.RunnerResult) string {
	t := table.NewWriter()
	if tr.out != nil {
		t.SetOutputMirror(tr.out)
	}
	t.SetTitle(fmt.Sprintf("%s (%s)", tr.title, formatDuration(result.Duration)))

	t.AppendHeader(table.Row{"#", "Test", "Duration", "Status", "Location", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, test := range result.Tests {
		t.AppendRow(table.Row{
			test.Index + 1,
			test.Name,
			formatDuration(test.Duration),
			getResultString(test.Status),
			test.Location,
			test.Message,
		})
	}

	if tr.style {
		if result.Status == types.TestStatusPass {
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		} else {
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d passed, %d failed", result.Stats.Passed, result.Stats.Failed),
		formatDuration(result.Duration),
		getResultString(result.Status),
		"",
		"",
	})

	return t.Render()
}

func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
