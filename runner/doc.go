// Package runner provides the sequential test execution engine.
//
// The main components are:
//   - Entry / Source: the ordered list of tests consumed once per run
//   - T: the handle passed to each test body, carrying the failure reporting primitive
//   - TestRunner: drives setup/teardown hooks, executes each body under the fault
//     guard and aggregates outcomes into a RunnerResult
//   - Reporter: receives per-test and summary events as they happen
//
// Tests never run concurrently. Each body executes on its own goroutine so a
// contained fault or an early stop ends only that goroutine, but the engine
// blocks until the body has finished before doing anything else.
package runner
