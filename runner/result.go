package runner

import (
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/op-harness/types"
)

// RunnerResult captures the complete results of one run invocation
type RunnerResult struct {
	RunID    string
	Label    string
	Tests    []*types.TestResult // In registration order
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
}

// ResultStats tracks test statistics for a run
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
}

// Failures returns the results of failed tests in registration order.
func (r *RunnerResult) Failures() []*types.TestResult {
	var failed []*types.TestResult
	for _, test := range r.Tests {
		if !test.Passed() {
			failed = append(failed, test)
		}
	}
	return failed
}

// String returns a one-line summary of the run.
func (r *RunnerResult) String() string {
	return fmt.Sprintf("RunnerResult{RunID: %s, Label: %s, Status: %s, Total: %d, Passed: %d, Failed: %d, Duration: %s}",
		r.RunID, r.Label, r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Duration)
}

func determineRunnerStatus(stats ResultStats) types.TestStatus {
	if stats.Failed > 0 {
		return types.TestStatusFail
	}
	return types.TestStatusPass
}
