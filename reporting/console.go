package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-harness/runner"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

const summaryRule = "========== TEST SUMMARY =========="

var (
	colorHeader = text.Colors{text.Bold, text.FgHiCyan}
	colorPass   = text.Colors{text.Bold, text.FgHiGreen}
	colorFail   = text.Colors{text.Bold, text.FgHiRed}
	colorLabel  = text.Colors{text.Bold}
)

// Console prints run events as lines of text, one line per test in
// registration order, followed by a summary and a banner.
type Console struct {
	out   io.Writer
	color bool
}

var _ runner.Reporter = (*Console)(nil)

// NewConsole creates a console reporter writing to out. With color set the
// markers, header, summary and banner carry ANSI colors.
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) paint(colors text.Colors, s string) string {
	if !c.color {
		return s
	}
	return colors.Sprint(s)
}

func (c *Console) RunStarted(label string, total int) {
	fmt.Fprintln(c.out, c.paint(colorHeader, fmt.Sprintf("Running %d tests from %s:", total, label)))
}

func (c *Console) TestPassed(result *types.TestResult) {
	fmt.Fprintf(c.out, "%s %s\n", c.paint(colorPass, "[PASS]"), result.Name)
}

func (c *Console) TestFailed(result *types.TestResult) {
	fmt.Fprintf(c.out, "%s %s %s: %s\n", c.paint(colorFail, "[FAIL]"), result.Name, result.Location, result.Message)
}

func (c *Console) RunCompleted(result *runner.RunnerResult) {
	fmt.Fprintln(c.out, c.paint(colorHeader, summaryRule))
	fmt.Fprintf(c.out, "%s %d | %s %d | %s %d\n",
		c.paint(colorLabel, "Total:"), result.Stats.Total,
		c.paint(colorLabel, "Passed:"), result.Stats.Passed,
		c.paint(colorLabel, "Failed:"), result.Stats.Failed)
	if result.Stats.Failed > 0 {
		fmt.Fprintln(c.out, c.paint(colorFail, "Some tests failed!"))
	} else {
		fmt.Fprintln(c.out, c.paint(colorPass, "All tests passed!"))
	}
	fmt.Fprintln(c.out)
}
