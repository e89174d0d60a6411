// intcode - runs, inspects and serves Intcode programs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/colorfulnotion/intcode/config"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
)

// app carries settings shared by every subcommand.
type app struct {
	configPath   string
	logLevel     string
	debug        string
	otlpEndpoint string
	jsonLogs     bool

	cfg             *config.Config
	shutdownTracing func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode virtual machine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFileName+" when present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.debug, "debug", "", "comma separated modules to log at debug/trace: vm,host,store,bridge,cli,vectors")
	flags.StringVar(&a.otlpEndpoint, "otlp-endpoint", "", "export traces to this OTLP/HTTP endpoint")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	rootCmd.AddCommand(
		newRunCmd(a),
		newAmplifyCmd(a),
		newDisasmCmd(a),
		newCheckCmd(),
		newConsoleCmd(a),
		newScriptCmd(a),
		newStoreCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the config file, then lets flags override it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.debug != "" {
		cfg.Log.Modules = a.debug
	}
	if a.otlpEndpoint != "" {
		cfg.Tracing.OTLPEndpoint = a.otlpEndpoint
	}
	if a.jsonLogs {
		cfg.Log.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := log.InitLoggerTo(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON); err != nil {
		return err
	}
	log.EnableModules(cfg.Log.Modules)
	log.Debug(log.CLIMonitoring, "config loaded", "path", cfg.Path, "level", cfg.Log.Level, "modules", cfg.Log.Modules)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := setupTracing(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	a.shutdownTracing = shutdown
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdownTracing == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.shutdownTracing(ctx)
}
