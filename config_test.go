package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-harness/flags"
	"github.com/ethereum-optimism/infra/op-harness/registry"
)

func configFromArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var cfg *Config
	var cfgErr error
	app := &cli.App{
		Flags: flags.Flags,
		Action: func(ctx *cli.Context) error {
			cfg, cfgErr = NewConfig(ctx, log.NewLogger(log.DiscardHandler()))
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"op-harness"}, args...)))
	return cfg, cfgErr
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := configFromArgs(t)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultCapacityValue(), cfg.MaxTests)
	assert.True(t, cfg.FaultContainment)
	assert.False(t, cfg.Color)
	assert.False(t, cfg.ResultsTable)
	assert.Empty(t, cfg.LogDir)
	assert.Empty(t, cfg.Label)
	assert.Empty(t, cfg.HealthzAddr)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, os.Stdout, cfg.Out)
}

func TestNewConfig_Flags(t *testing.T) {
	cfg, err := configFromArgs(t,
		"--max-tests", "12",
		"--no-fault-containment",
		"--color",
		"--results-table",
		"--log-dir", "out",
		"--label", "custom.go",
	)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxTests)
	assert.False(t, cfg.FaultContainment)
	assert.True(t, cfg.Color)
	assert.True(t, cfg.ResultsTable)
	assert.Equal(t, "out", cfg.LogDir)
	assert.Equal(t, "custom.go", cfg.Label)
}

func TestNewConfig_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_tests: 40
no_fault_containment: true
results_table: true
label: from-file.go
`), 0644))

	cfg, err := configFromArgs(t, "--config", path, "--label", "from-flag.go")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxTests)
	assert.False(t, cfg.FaultContainment)
	assert.True(t, cfg.ResultsTable)
	assert.Equal(t, "from-flag.go", cfg.Label, "flags take precedence over the config file")
}

func TestNewConfig_FileFlagPrecedenceForBool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.toml")
	require.NoError(t, os.WriteFile(path, []byte("no_fault_containment = true\nmax_tests = 5\n"), 0644))

	cfg, err := configFromArgs(t, "--config", path, "--no-fault-containment=false", "--max-tests", "9")
	require.NoError(t, err)
	assert.True(t, cfg.FaultContainment)
	assert.Equal(t, 9, cfg.MaxTests)
}

func TestNewConfig_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown_key: 1\n"), 0644))

	_, err := configFromArgs(t, "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}
