package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-harness/registry"
)

const EnvVarPrefix = "OP_HARNESS"

var (
	MaxTests = &cli.IntFlag{
		Name:    "max-tests",
		Value:   registry.DefaultCapacityValue(),
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "MAX_TESTS"),
		Usage:   "Maximum number of tests that can be registered",
		Action: func(_ *cli.Context, n int) error {
			return validateMaxTests(n)
		},
	}
	NoFaultContainment = &cli.BoolFlag{
		Name:    "no-fault-containment",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "NO_FAULT_CONTAINMENT"),
		Usage:   "Let invalid memory accesses in tests terminate the process instead of failing the test",
	}
	Color = &cli.BoolFlag{
		Name:    "color",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "COLOR"),
		Usage:   "Color the console report",
	}
	ResultsTable = &cli.BoolFlag{
		Name:    "results-table",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RESULTS_TABLE"),
		Usage:   "Print a table of all test results after the summary",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_DIR"),
		Usage:   "Directory to write the run summary to (eg. 'logs'). Empty disables it.",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONFIG"),
		Usage:   "Path to a YAML or TOML config file (eg. 'harness.yaml'). Flags take precedence over file values.",
	}
	Label = &cli.StringFlag{
		Name:    "label",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LABEL"),
		Usage:   "Label naming the test source in the report. Defaults to the registering source file.",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Listen address of the healthz server (eg. '0.0.0.0:8080'). Empty disables it.",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	MaxTests,
	NoFaultContainment,
	Color,
	ResultsTable,
	LogDir,
	ConfigFile,
	Label,
	HealthzAddr,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func validateMaxTests(n int) error {
	if n < 1 {
		return fmt.Errorf("max-tests must be at least 1, got %d", n)
	}
	return nil
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
