package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/optimism/op-service/testlog"

	"github.com/ethereum-optimism/infra/op-harness/check"
	"github.com/ethereum-optimism/infra/op-harness/registry"
	"github.com/ethereum-optimism/infra/op-harness/reporting"
	"github.com/ethereum-optimism/infra/op-harness/types"
)

func testConfig(t *testing.T, out *bytes.Buffer) *Config {
	return &Config{
		MaxTests:         registry.DefaultCapacity,
		FaultContainment: true,
		Out:              out,
		Log:              testlog.Logger(t, log.LevelInfo),
	}
}

func passingSuite(label string) Suite {
	return Suite{
		Label: label,
		Register: func(r *registry.Registry) {
			r.MustRegister("First", func(t *T) { check.True(t, true) })
			r.MustRegister("Second", func(t *T) { check.EqualInt(t, 4, 2+2) })
		},
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), nil, "test", passingSuite("x.go"), func(error) {})
	require.Error(t, err)

	_, err = New(context.Background(), testConfig(t, &bytes.Buffer{}), "test", Suite{}, func(error) {})
	require.Error(t, err)
}

func TestStart_AllPassed(t *testing.T) {
	var out bytes.Buffer
	shutdown := make(chan error, 1)
	h, err := New(context.Background(), testConfig(t, &out), "test", passingSuite("suite.go"), func(err error) {
		shutdown <- err
	})
	require.NoError(t, err)

	require.NoError(t, h.Start(context.Background()))
	assert.False(t, h.Stopped())

	select {
	case err := <-shutdown:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown callback was not called")
	}

	require.NotNil(t, h.Result())
	assert.Equal(t, types.TestStatusPass, h.Result().Status)
	assert.Contains(t, out.String(), "Running 2 tests from suite.go:")
	assert.Contains(t, out.String(), "All tests passed!")

	require.NoError(t, h.Stop(context.Background()))
	assert.True(t, h.Stopped())
	require.NoError(t, h.Stop(context.Background()))
}

func TestStart_Failures(t *testing.T) {
	requireContainment(t)
	var out bytes.Buffer
	h, err := New(context.Background(), testConfig(t, &out), "test", Suite{Label: "scenario.go", Register: scenarioSuite}, func(error) {
		t.Error("shutdown callback must not be called on failure")
	})
	require.NoError(t, err)

	err = h.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, out.String(), "Total: 3 | Passed: 1 | Failed: 2")
	assert.Contains(t, out.String(), "Some tests failed!")
	require.NoError(t, h.Stop(context.Background()))
}

func TestStart_Cancelled(t *testing.T) {
	h, err := New(context.Background(), testConfig(t, &bytes.Buffer{}), "test", passingSuite("suite.go"), func(error) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = h.Start(ctx)
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStart_LabelOverride(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(t, &out)
	cfg.Label = "override.go"
	h, err := New(context.Background(), cfg, "test", passingSuite("suite.go"), func(error) {})
	require.NoError(t, err)
	require.NoError(t, h.Start(context.Background()))
	assert.Contains(t, out.String(), "Running 2 tests from override.go:")
}

func TestStart_ResultsTableAndSummaryFile(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(t, &out)
	cfg.ResultsTable = true
	cfg.LogDir = t.TempDir()

	h, err := New(context.Background(), cfg, "test", passingSuite(""), func(error) {})
	require.NoError(t, err)
	require.NoError(t, h.Start(context.Background()))

	assert.Contains(t, out.String(), "Test Results")
	assert.Contains(t, out.String(), "TOTAL")

	path := filepath.Join(cfg.LogDir, "testrun-"+h.Result().RunID, reporting.SummaryFileName)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Running 2 tests from "+DefaultLabel+":")
	assert.Contains(t, string(content), "Total: 2 | Passed: 2 | Failed: 0")
	assert.NotContains(t, string(content), "TOTAL")
}

func TestStart_Healthz(t *testing.T) {
	cfg := testConfig(t, &bytes.Buffer{})
	cfg.HealthzAddr = "127.0.0.1:0"
	h, err := New(context.Background(), cfg, "test", passingSuite("suite.go"), func(error) {})
	require.NoError(t, err)
	require.NoError(t, h.Start(context.Background()))
	require.NotNil(t, h.service.Healthz.Addr())
	require.NoError(t, h.Stop(context.Background()))
}

func TestStart_CapacityFromConfig(t *testing.T) {
	cfg := testConfig(t, &bytes.Buffer{})
	cfg.MaxTests = 2
	h, err := New(context.Background(), cfg, "test", passingSuite("suite.go"), func(error) {})
	require.NoError(t, err)
	assert.Equal(t, 2, h.registry.Capacity())
	assert.Equal(t, 2, h.registry.Len())
}

func TestPickLabel(t *testing.T) {
	assert.Equal(t, "a", pickLabel("a", "b"))
	assert.Equal(t, "b", pickLabel("", "b"))
	assert.Equal(t, DefaultLabel, pickLabel("", ""))
}
