package runner

import "github.com/ethereum-optimism/infra/op-harness/types"

// Reporter receives run events in the order they happen.
type Reporter interface {
	RunStarted(label string, total int)
	TestPassed(result *types.TestResult)
	TestFailed(result *types.TestResult)
	RunCompleted(result *RunnerResult)
}

type noopReporter struct{}

func (noopReporter) RunStarted(string, int) {}
func (noopReporter) TestPassed(*types.TestResult) {}
func (noopReporter) TestFailed(*types.TestResult) {}
func (noopReporter) RunCompleted(*RunnerResult) {}

// NoopReporter discards all events.
var NoopReporter Reporter = noopReporter{}
