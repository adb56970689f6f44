package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-harness/types"
)

const (
	MetricsNamespace = "harness"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

// Metricer records test and run outcomes.
type Metricer interface {
	RecordTest(name string, status types.TestStatus, fault bool, duration time.Duration)
	RecordRun(label string, status types.TestStatus, total, passed, failed int, duration time.Duration)
	RecordError(label string)
	RecordErrorDetails(label string, err error)
}

// Metrics is the prometheus backed Metricer.
type Metrics struct {
	errorsTotal   *prometheus.CounterVec
	testsTotal    *prometheus.CounterVec
	faultsTotal   *prometheus.CounterVec
	testDuration  *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	runTestsTotal *prometheus.GaugeVec
	runPassed     *prometheus.GaugeVec
	runFailed     *prometheus.GaugeVec
	runDuration   *prometheus.GaugeVec
}

var _ Metricer = (*Metrics)(nil)

// NewMetrics creates the harness metrics on the given factory.
func NewMetrics(factory opmetrics.Factory) *Metrics {
	return &Metrics{
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "errors_total",
			Help:      "Count of errors",
		}, []string{
			"error",
		}),
		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "tests_total",
			Help:      "Count of executed tests by result",
		}, []string{
			"name",
			"result",
		}),
		faultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "contained_faults_total",
			Help:      "Count of faults contained by the fault guard",
		}, []string{
			"name",
		}),
		testDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "test_duration_seconds",
			Help:      "Duration of individual tests",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{
			"result",
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_total",
			Help:      "Count of run invocations by result",
		}, []string{
			"label",
			"result",
		}),
		runTestsTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_tests",
			Help:      "Number of tests executed by the last run",
		}, []string{
			"label",
		}),
		runPassed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_tests_passed",
			Help:      "Number of passed tests in the last run",
		}, []string{
			"label",
		}),
		runFailed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_tests_failed",
			Help:      "Number of failed tests in the last run",
		}, []string{
			"label",
		}),
		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}, []string{
			"label",
		}),
	}
}

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func (m *Metrics) RecordError(label string) {
	m.errorsTotal.WithLabelValues(label).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func (m *Metrics) RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	m.RecordError(fmt.Sprintf("%s.%s", label, errToLabel(err)))
}

func (m *Metrics) RecordTest(name string, status types.TestStatus, fault bool, duration time.Duration) {
	m.testsTotal.WithLabelValues(name, string(status)).Inc()
	m.testDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
	if fault {
		m.faultsTotal.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) RecordRun(label string, status types.TestStatus, total, passed, failed int, duration time.Duration) {
	m.runsTotal.WithLabelValues(label, string(status)).Inc()
	m.runTestsTotal.WithLabelValues(label).Set(float64(total))
	m.runPassed.WithLabelValues(label).Set(float64(passed))
	m.runFailed.WithLabelValues(label).Set(float64(failed))
	m.runDuration.WithLabelValues(label).Set(duration.Seconds())
}

type noopMetrics struct{}

func (noopMetrics) RecordTest(string, types.TestStatus, bool, time.Duration) {}
func (noopMetrics) RecordRun(string, types.TestStatus, int, int, int, time.Duration) {}
func (noopMetrics) RecordError(string) {}
func (noopMetrics) RecordErrorDetails(string, error) {}

// NoopMetrics discards all measurements.
var NoopMetrics Metricer = noopMetrics{}
