package harness

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-harness/config"
	"github.com/ethereum-optimism/infra/op-harness/flags"
)

// Config holds the application configuration
type Config struct {
	MaxTests         int    // Registry capacity
	FaultContainment bool   // Contain invalid memory accesses in tests
	Color            bool   // Color the console report
	ResultsTable     bool   // Print a results table after the summary
	LogDir           string // Directory for the run summary, empty to disable
	Label            string // Overrides the suite label when set
	HealthzAddr      string // Listen address of the healthz server, empty to disable
	Metrics          opmetrics.CLIConfig
	Out              io.Writer // Destination of the console report
	Log              log.Logger
}

// NewConfig creates a new Config from cli context. Values from the optional
// config file apply to every flag not set on the command line or environment.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	cfg := &Config{
		MaxTests:         ctx.Int(flags.MaxTests.Name),
		FaultContainment: !ctx.Bool(flags.NoFaultContainment.Name),
		Color:            ctx.Bool(flags.Color.Name),
		ResultsTable:     ctx.Bool(flags.ResultsTable.Name),
		LogDir:           ctx.String(flags.LogDir.Name),
		Label:            ctx.String(flags.Label.Name),
		HealthzAddr:      ctx.String(flags.HealthzAddr.Name),
		Metrics:          opmetrics.ReadCLIConfig(ctx),
		Out:              os.Stdout,
		Log:              log,
	}

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		file, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.apply(ctx, file)
		log.Debug("Applied config file", "path", path)
	}

	if err := cfg.Metrics.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(ctx *cli.Context, file *config.File) {
	overlay(ctx, flags.MaxTests.Name, file.MaxTests, &c.MaxTests)
	overlay(ctx, flags.Color.Name, file.Color, &c.Color)
	overlay(ctx, flags.ResultsTable.Name, file.ResultsTable, &c.ResultsTable)
	overlay(ctx, flags.LogDir.Name, file.LogDir, &c.LogDir)
	overlay(ctx, flags.Label.Name, file.Label, &c.Label)
	overlay(ctx, flags.HealthzAddr.Name, file.HealthzAddr, &c.HealthzAddr)
	if file.NoFaultContainment != nil && !ctx.IsSet(flags.NoFaultContainment.Name) {
		c.FaultContainment = !*file.NoFaultContainment
	}
}

func overlay[V any](ctx *cli.Context, name string, fileValue *V, dst *V) {
	if fileValue != nil && !ctx.IsSet(name) {
		*dst = *fileValue
	}
}
