package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"

	harness "github.com/ethereum-optimism/infra/op-harness"
	"github.com/ethereum-optimism/infra/op-harness/exitcodes"
	"github.com/ethereum-optimism/infra/op-harness/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := newApp(demoSuite())

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	// Start CLI
	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func newApp(suite harness.Suite) *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-harness"
	app.Usage = "In-process test harness"
	app.Description = "op-harness runs the tests compiled into it in order and reports pass/fail"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run(suite))
	app.ExitErrHandler = handleExitErr
	return app
}

func handleExitErr(c *cli.Context, err error) {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		cli.HandleExitCoder(exitErr)
	} else if err != nil {
		if harness.IsRuntimeError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		} else if harness.IsTestFailureError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		} else {
			// Errors without a type come from cliapp setup, which runs before any test.
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		}
	}
}

func run(suite harness.Suite) cliapp.LifecycleAction {
	return func(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		logCfg := oplog.ReadCLIConfig(ctx)
		log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
		oplog.SetGlobalLogHandler(log.Handler())
		oplog.SetupDefaults()

		cfg, err := harness.NewConfig(ctx, log)
		if err != nil {
			return nil, harness.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
		}
		cfg.Out = ctx.App.Writer

		cfg.Log.Debug("Config", "config", cfg)

		h, err := harness.New(ctx.Context, cfg, Version, suite, closeApp)
		if err != nil {
			return nil, harness.NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
		}
		return h, nil
	}
}
