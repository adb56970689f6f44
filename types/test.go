package types

import (
	"fmt"
	"time"
)

// TestStatus represents the possible outcomes of a test execution
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
)

// Location identifies a source position, usually the call site of a failing assertion.
type Location struct {
	File string
	Line int
}

// String renders the location as file:line.
func (l Location) String() string {
	if l.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// TestResult captures the outcome of a single test run
type TestResult struct {
	Name     string
	Index    int // Position of the test in registration order
	Status   TestStatus
	Message  string        // Failure message, empty for passing tests
	Location string        // Assertion location, or the run label for contained faults
	Fault    bool          // Whether the failure was a contained fault
	Duration time.Duration // Track test execution time
}

// Passed reports whether the test passed.
func (r *TestResult) Passed() bool {
	return r.Status == TestStatusPass
}
