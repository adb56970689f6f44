package reporting

import (
	"github.com/ethereum-optimism/infra/op-harness/runner"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

// Multi forwards every event to each reporter in order.
type Multi []runner.Reporter

func (m Multi) RunStarted(label string, total int) {
	for _, r := range m {
		r.RunStarted(label, total)
	}
}

func (m Multi) TestPassed(result *types.TestResult) {
	for _, r := range m {
		r.TestPassed(result)
	}
}

func (m Multi) TestFailed(result *types.TestResult) {
	for _, r := range m {
		r.TestFailed(result)
	}
}

func (m Multi) RunCompleted(result *runner.RunnerResult) {
	for _, r := range m {
		r.RunCompleted(result)
	}
}
