package harness

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-harness/exitcodes"
	"github.com/ethereum-optimism/infra/op-harness/reporting"
	"github.com/ethereum-optimism/infra/op-harness/runner"
)

type (
	T        = runner.T
	TestFunc = runner.TestFunc
	Entry    = runner.Entry
)

type runOptions struct {
	out      io.Writer
	color    bool
	log      log.Logger
	setUp    func()
	tearDown func()
	noFault  bool
}

// RunOption configures RunTests.
type RunOption func(*runOptions)

// WithOutput sets the destination of the console report. Defaults to stdout.
func WithOutput(w io.Writer) RunOption {
	return func(o *runOptions) { o.out = w }
}

func WithColor(color bool) RunOption {
	return func(o *runOptions) { o.color = color }
}

func WithLogger(l log.Logger) RunOption {
	return func(o *runOptions) { o.log = l }
}

// WithSetUp registers a hook that runs before every test.
func WithSetUp(fn func()) RunOption {
	return func(o *runOptions) { o.setUp = fn }
}

// WithTearDown registers a hook that runs after every test.
func WithTearDown(fn func()) RunOption {
	return func(o *runOptions) { o.tearDown = fn }
}

// WithoutFaultContainment lets a fault in a test terminate the process.
func WithoutFaultContainment() RunOption {
	return func(o *runOptions) { o.noFault = true }
}

// RunTests runs every test of src in order, prints the report and returns the
// process exit code. An empty label is replaced by the caller's file name.
func RunTests(ctx context.Context, label string, src runner.Source, opts ...RunOption) int {
	if label == "" {
		label = CallerLabel(1)
	}
	o := &runOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = log.Root()
	}

	r, err := runner.NewTestRunner(runner.Config{
		Source:                  src,
		Reporter:                reporting.NewConsole(o.out, o.color),
		Log:                     o.log,
		SetUp:                   o.setUp,
		TearDown:                o.tearDown,
		DisableFaultContainment: o.noFault,
	})
	if err != nil {
		o.log.Error("Failed to create test runner", "err", err)
		return exitcodes.RuntimeErr
	}

	result, err := r.RunTests(ctx, label)
	if err != nil {
		o.log.Error("Test run did not complete", "err", err)
		return exitcodes.RuntimeErr
	}
	return exitcodes.FromStatus(result.Status)
}

// CallerLabel returns the file name of the function skip frames above the
// caller, or DefaultLabel when it cannot be determined.
func CallerLabel(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return DefaultLabel
	}
	return filepath.Base(file)
}
