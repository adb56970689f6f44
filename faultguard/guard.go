// Package faultguard contains fatal faults raised by a single test body so the
// run can record them as that test's failure and move on.
//
// Every body executes on its own goroutine. The guard waits on that goroutine's
// completion channel, which is the resumption point for the run: whether the
// body returns, stops through runtime.Goexit, or panics, control comes back to
// the caller of Run. With containment enabled the worker converts memory faults
// into panics with debug.SetPanicOnFault and recovers them. With containment
// disabled nothing is recovered and a fault terminates the process.
package faultguard

import (
	"errors"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

// ErrGuardBusy is returned when Run is entered while another body is still
// executing under the same guard. Only one resumption point is tracked.
var ErrGuardBusy = errors.New("fault guard is already running a test body")

// Outcome describes how a guarded body finished. Exactly one of Completed,
// Exited or a non-nil Panic holds.
type Outcome struct {
	Completed bool   // The body returned normally
	Exited    bool   // The body stopped through runtime.Goexit
	Panic     any    // Recovered panic value, if the body panicked
	Fault     bool   // Whether Panic was an invalid memory access
	Stack     []byte // Stack of the worker at the time of the panic
}

// Contained reports whether the guard recovered a panic or fault.
func (o Outcome) Contained() bool {
	return o.Panic != nil
}

// Guard runs test bodies in isolated goroutines.
type Guard struct {
	enabled bool
	busy    atomic.Bool
}

// New creates a guard. Containment is only active if requested and compiled in.
func New(enabled bool) *Guard {
	return &Guard{enabled: enabled && Enabled}
}

// Enabled reports whether this guard recovers faults.
func (g *Guard) Enabled() bool {
	return g.enabled
}

// Run executes body and blocks until it finishes.
func (g *Guard) Run(body func()) (Outcome, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrGuardBusy
	}
	defer g.busy.Store(false)

	var out Outcome
	resume := make(chan struct{})

	go func() {
		defer close(resume)
		if g.enabled {
			debug.SetPanicOnFault(true)
			defer func() {
				if r := recover(); r != nil {
					out.Panic = r
					out.Fault = IsMemoryFault(r)
					out.Stack = debug.Stack()
				}
			}()
		}
		body()
		out.Completed = true
	}()

	<-resume
	if !out.Completed && out.Panic == nil {
		out.Exited = true
	}
	return out, nil
}

// IsMemoryFault reports whether a recovered panic value is an invalid memory
// access: a nil dereference, or a fault surfaced by debug.SetPanicOnFault.
func IsMemoryFault(v any) bool {
	err, ok := v.(runtime.Error)
	if !ok {
		return false
	}
	if _, ok := err.(interface{ Addr() uintptr }); ok {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid memory address") ||
		strings.Contains(msg, "nil pointer dereference") ||
		strings.Contains(msg, "unexpected fault address")
}
