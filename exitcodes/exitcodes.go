// Package exitcodes defines the process exit statuses used by op-harness.
package exitcodes

import "github.com/ethereum-optimism/infra/op-harness/types"

// Exit code constants used by op-harness binaries:
//
// * Success (0): every registered test passed
// * TestFailure (1): one or more tests failed, including contained faults
// * RuntimeErr (2): the run could not complete (bad configuration, registry
// capacity exceeded, interrupted run)
const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors
)

// FromStatus maps the overall status of a run to its exit code.
func FromStatus(status types.TestStatus) int {
	if status == types.TestStatusPass {
		return Success
	}
	return TestFailure
}
