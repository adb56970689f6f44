package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-harness/exitcodes"
	"github.com/ethereum-optimism/infra/op-harness/metrics"
	"github.com/ethereum-optimism/infra/op-harness/registry"
	"github.com/ethereum-optimism/infra/op-harness/reporting"
	"github.com/ethereum-optimism/infra/op-harness/runner"
	"github.com/ethereum-optimism/infra/op-harness/service"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

// DefaultLabel names the suite in the report when neither the suite nor the
// configuration provide one.
const DefaultLabel = "op-harness"

// Suite is a set of tests compiled into a binary together with its hooks.
type Suite struct {
	// Label names the test source in the report, usually its file name.
	Label string
	// Register adds the tests in run order. Registering past the configured
	// capacity terminates the process.
	Register func(r *registry.Registry)
	SetUp    func()
	TearDown func()
}

// Harness implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Harness{}

// Harness runs a suite once and reports the outcome.
type Harness struct {
	config   *Config
	version  string
	label    string
	registry *registry.Registry
	runner   runner.TestRunner
	sink     *reporting.SummaryFileSink
	service  *service.Service
	result   *runner.RunnerResult

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, suite Suite, shutdownCallback func(error)) (*Harness, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if suite.Register == nil {
		return nil, errors.New("suite has no tests to register")
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	config.Log.Debug("Creating harness with config",
		"maxTests", config.MaxTests,
		"faultContainment", config.FaultContainment,
		"logDir", config.LogDir,
		"resultsTable", config.ResultsTable)

	reg := registry.New(config.MaxTests,
		registry.WithLogger(config.Log),
		registry.WithFatalOutput(config.Out))
	suite.Register(reg)
	config.Log.Info("Registered tests", "count", reg.Len(), "capacity", reg.Capacity())

	var sink *reporting.SummaryFileSink
	var out io.Writer = config.Out
	if config.LogDir != "" {
		sink = reporting.NewSummaryFileSink(config.LogDir)
		out = sink.Tee(out)
	}

	promRegistry := opmetrics.NewRegistry()
	testRunner, err := runner.NewTestRunner(runner.Config{
		Source:                  reg,
		Reporter:                reporting.NewConsole(out, config.Color),
		Log:                     config.Log,
		Metrics:                 metrics.NewMetrics(opmetrics.With(promRegistry)),
		SetUp:                   suite.SetUp,
		TearDown:                suite.TearDown,
		DisableFaultContainment: !config.FaultContainment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test runner: %w", err)
	}

	return &Harness{
		config:           config,
		version:          version,
		label:            pickLabel(config.Label, suite.Label),
		registry:         reg,
		runner:           testRunner,
		sink:             sink,
		service:          newService(config, promRegistry),
		shutdownCallback: shutdownCallback,
	}, nil
}

func newService(config *Config, promRegistry *prometheus.Registry) *service.Service {
	return service.New(config.Log, service.Config{
		HealthzAddr: config.HealthzAddr,
		Metrics:     config.Metrics,
	}, promRegistry)
}

func pickLabel(labels ...string) string {
	for _, l := range labels {
		if l != "" {
			return l
		}
	}
	return DefaultLabel
}

// Start runs the suite once.
// Start implements the cliapp.Lifecycle interface.
func (h *Harness) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			h.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	h.running.Store(true)
	h.config.Log.Info("Starting op-harness", "version", h.version, "label", h.label)

	if err := h.service.Start(ctx); err != nil {
		h.running.Store(false)
		return NewRuntimeError(err)
	}

	if err := h.runTests(ctx); err != nil {
		h.config.Log.Error("Runtime error running tests", "error", err)
		return errors.Join(err, h.Stop(context.Background()))
	}

	if h.result.Status == types.TestStatusFail {
		h.config.Log.Warn("Test run completed with failures, returning exit code 1")
		return errors.Join(NewTestFailureError(h.result.String()), h.Stop(context.Background()))
	}

	go func() {
		h.shutdownCallback(nil)
	}()
	return nil
}

// runTests runs all tests and processes the results
func (h *Harness) runTests(ctx context.Context) error {
	result, err := h.runner.RunTests(ctx, h.label)
	if err != nil {
		return NewRuntimeError(err)
	}
	h.result = result

	if h.config.ResultsTable {
		reporting.NewTableReporter(h.config.Out, "Test Results", h.config.Color).Render(result)
	}
	if h.sink != nil {
		path, err := h.sink.Complete(result.RunID)
		if err != nil {
			return NewRuntimeError(err)
		}
		h.config.Log.Info("Wrote run summary", "path", path)
	}
	h.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// Result returns the outcome of the last run, or nil before Start.
func (h *Harness) Result() *runner.RunnerResult {
	return h.result
}

// Stop stops the auxiliary servers.
// Stop implements the cliapp.Lifecycle interface.
func (h *Harness) Stop(ctx context.Context) error {
	h.config.Log.Info("Stopping op-harness")
	if !h.running.Swap(false) {
		h.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	return h.service.Shutdown(ctx)
}

// Stopped returns true if the harness is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (h *Harness) Stopped() bool {
	return !h.running.Load()
}
