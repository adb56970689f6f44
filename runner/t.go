package runner

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-harness/types"
)

// runState holds the counters of one run invocation. It is only touched by the
// engine goroutine and the goroutine of the test currently executing, never
// concurrently.
type runState struct {
	passed int
	failed int
}

// T is passed to every test body. It is only valid while that body runs and
// must only be used from the goroutine the body was started on.
type T struct {
	name     string
	state    *runState
	reporter Reporter
	log      log.Logger
	result   *types.TestResult
	failed   bool
	// deferred holds a failure reported while the body was unwinding a panic.
	deferred *failure
}

type failure struct {
	message  string
	location string
}

// Name returns the name the test was registered under.
func (t *T) Name() string {
	return t.name
}

// Failed reports whether a failure has been recorded for this test.
func (t *T) Failed() bool {
	return t.failed
}

// Fail records a failure at loc, reports it and stops the test. Deferred calls
// of the test body still run. A test is counted as failed at most once.
//
// Called from a deferred function while the body is panicking, Fail returns
// without stopping the test so the panic keeps unwinding. The failure is only
// recorded if the panic is recovered inside the body.
func (t *T) Fail(message string, loc types.Location) {
	if unwindingPanic() {
		t.log.Debug("Failure while unwinding a panic", "test", t.name, "message", message)
		if t.deferred == nil {
			t.deferred = &failure{message: message, location: loc.String()}
		}
		return
	}
	if t.deferred != nil {
		t.record(t.deferred.message, t.deferred.location, false)
	}
	t.record(message, loc.String(), false)
	runtime.Goexit()
}

// Failf is Fail with a formatted message, located at the caller.
func (t *T) Failf(format string, args ...any) {
	t.Fail(fmt.Sprintf(format, args...), Caller(1))
}

// Log emits a debug log line attributed to the test.
func (t *T) Log(msg string, ctx ...any) {
	t.log.Debug(msg, append([]any{"test", t.name}, ctx...)...)
}

// Logf emits a formatted debug log line attributed to the test.
func (t *T) Logf(format string, args ...any) {
	t.log.Debug(fmt.Sprintf(format, args...), "test", t.name)
}

func (t *T) record(message, location string, fault bool) {
	if t.failed {
		t.log.Debug("Ignoring additional failure", "test", t.name, "message", message)
		return
	}
	t.failed = true
	t.state.failed++
	t.result.Status = types.TestStatusFail
	t.result.Message = message
	t.result.Location = location
	t.result.Fault = fault
	t.reporter.TestFailed(t.result)
}

// unwindingPanic reports whether the calling goroutine is running deferred
// calls of a panic.
func unwindingPanic() bool {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == "runtime.gopanic" {
			return true
		}
		if !more {
			return false
		}
	}
}

// Caller returns the location of the function skip frames above the caller of
// Caller. Caller(0) is the line that called it.
func Caller(skip int) types.Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return types.Location{}
	}
	return types.Location{File: filepath.Base(file), Line: line}
}
