// Command hyni inspects provider schemas, previews the requests they produce
// and sends chat messages through them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/hyni/config"
	"github.com/spetersoncode/hyni/factory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds what the subcommands share once the configuration is loaded.
type app struct {
	cfgPath  string
	logLevel string

	cfg     *config.Config
	factory *factory.Factory
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "hyni",
		Short:        "Schema-driven LLM request builder",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file path (default: $HYNI_CONFIG or ./hyni.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newProvidersCmd(a),
		newRequestCmd(a),
		newChatCmd(a),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()}))

	reg, err := cfg.NewRegistry()
	if err != nil {
		return fmt.Errorf("schema registry: %w", err)
	}
	a.factory, err = factory.New(reg,
		factory.WithConfig(cfg.ContextConfig()),
		factory.WithLogger(a.logger),
		factory.WithBundledSchemas(),
	)
	if err != nil {
		return err
	}

	a.logger.Debug("configuration loaded",
		"schema_directory", cfg.SchemaDirectory,
		"default_provider", cfg.DefaultProvider,
		"validation", cfg.ValidationEnabled,
		"max_concurrent", cfg.MaxConcurrent,
	)
	return nil
}
