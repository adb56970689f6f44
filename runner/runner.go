package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-harness/faultguard"
	"github.com/ethereum-optimism/infra/op-harness/metrics"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

const (
	// SegfaultMessage is the failure message of a test that hit an invalid memory access.
	SegfaultMessage = "Caught SEGFAULT!"
	// EarlyExitMessage is the failure message of a test that stopped without reporting why.
	EarlyExitMessage = "test exited early"
)

// ErrNoSource is returned by NewTestRunner when no test source is configured.
var ErrNoSource = errors.New("test source is required")

// TestRunner defines the interface for running registered tests
type TestRunner interface {
	RunTests(ctx context.Context, label string) (*RunnerResult, error)
}

// runner struct implements TestRunner interface
type runner struct {
	source   Source
	reporter Reporter
	log      log.Logger
	metrics  metrics.Metricer
	guard    *faultguard.Guard
	setUp    func()
	tearDown func()
	tracer   trace.Tracer
}

// Config holds configuration for creating a new runner
type Config struct {
	Source   Source
	Reporter Reporter
	Log      log.Logger
	Metrics  metrics.Metricer
	// SetUp and TearDown run around every test on the engine goroutine. Faults
	// raised in them are not contained.
	SetUp    func()
	TearDown func()
	// DisableFaultContainment lets faults in test bodies terminate the process.
	DisableFaultContainment bool
}

// NewTestRunner creates a new test runner instance
func NewTestRunner(cfg Config) (TestRunner, error) {
	if cfg.Source == nil {
		return nil, ErrNoSource
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Reporter == nil {
		cfg.Reporter = NoopReporter
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoopMetrics
	}

	guard := faultguard.New(!cfg.DisableFaultContainment)
	if !cfg.DisableFaultContainment && !guard.Enabled() {
		cfg.Log.Warn("Fault containment requested but compiled out")
	}
	cfg.Log.Debug("NewTestRunner()", "faultContainment", guard.Enabled(),
		"setUp", cfg.SetUp != nil, "tearDown", cfg.TearDown != nil)

	return &runner{
		source:   cfg.Source,
		reporter: cfg.Reporter,
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		guard:    guard,
		setUp:    cfg.SetUp,
		tearDown: cfg.TearDown,
		tracer:   otel.Tracer("test runner"),
	}, nil
}

// RunTests implements the TestRunner interface. Every invocation starts from
// fresh counters.
func (r *runner) RunTests(ctx context.Context, label string) (*RunnerResult, error) {
	entries := r.source.Entries()
	start := time.Now()
	result := &RunnerResult{
		RunID: uuid.New().String(),
		Label: label,
		Tests: make([]*types.TestResult, 0, len(entries)),
		Stats: ResultStats{StartTime: start},
	}
	state := &runState{}

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("run %s", label))
	defer span.End()

	r.log.Info("Running tests", "run_id", result.RunID, "label", label, "tests", len(entries))
	r.reporter.RunStarted(label, len(entries))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Run interrupted", "run_id", result.RunID, "completed", i, "remaining", len(entries)-i)
			r.metrics.RecordErrorDetails("run interrupted", err)
			return nil, fmt.Errorf("run interrupted before test %s: %w", entry.Name, err)
		}
		result.Tests = append(result.Tests, r.runTest(ctx, state, label, i, entry))
	}

	result.Stats.Total = len(result.Tests)
	result.Stats.Passed = state.passed
	result.Stats.Failed = state.failed
	result.Stats.EndTime = time.Now()
	result.Duration = time.Since(start)
	result.Status = determineRunnerStatus(result.Stats)
	if result.Status != types.TestStatusPass {
		span.SetStatus(codes.Error, "tests failed")
	}

	r.reporter.RunCompleted(result)
	r.metrics.RecordRun(label, result.Status, result.Stats.Total, result.Stats.Passed, result.Stats.Failed, result.Duration)
	r.log.Info("Run completed", "run_id", result.RunID, "status", result.Status,
		"passed", result.Stats.Passed, "failed", result.Stats.Failed)
	return result, nil
}

// runTest executes one entry: setup hook, guarded body, outcome accounting,
// teardown hook.
func (r *runner) runTest(ctx context.Context, state *runState, label string, index int, entry Entry) *types.TestResult {
	if r.setUp != nil {
		r.setUp()
	}

	failedBefore := state.failed
	res := &types.TestResult{Name: entry.Name, Index: index}
	t := &T{
		name:     entry.Name,
		state:    state,
		reporter: r.reporter,
		log:      r.log,
		result:   res,
	}

	_, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", entry.Name))
	span.SetAttributes(attribute.Int("index", index))

	start := time.Now()
	outcome, err := r.guard.Run(func() { entry.Body(t) })
	res.Duration = time.Since(start)

	switch {
	case err != nil:
		// Reached when a test body re-enters the runner.
		r.log.Error("Fault guard refused test", "test", entry.Name, "err", err)
		t.record(err.Error(), label, false)
	case outcome.Contained():
		if outcome.Fault {
			r.log.Error("Contained fault in test", "test", entry.Name, "fault", outcome.Panic)
			t.record(SegfaultMessage, label, true)
		} else {
			r.log.Error("Contained panic in test", "test", entry.Name, "panic", outcome.Panic)
			t.record(fmt.Sprintf("Caught panic: %v", outcome.Panic), label, true)
		}
		r.log.Debug("Stack of contained panic", "test", entry.Name, "stack", string(outcome.Stack))
	case t.deferred != nil && !t.failed:
		t.record(t.deferred.message, t.deferred.location, false)
	case outcome.Exited && !t.failed:
		t.record(EarlyExitMessage, label, false)
	}

	if outcome.Completed && state.failed == failedBefore {
		state.passed++
		res.Status = types.TestStatusPass
		r.reporter.TestPassed(res)
	}

	if res.Status != types.TestStatusPass {
		span.SetStatus(codes.Error, res.Message)
	}
	span.End()
	r.metrics.RecordTest(entry.Name, res.Status, res.Fault, res.Duration)
	r.log.Debug("Test completed", "test", entry.Name, "status", res.Status, "duration", res.Duration)

	if r.tearDown != nil {
		r.tearDown()
	}
	return res
}
