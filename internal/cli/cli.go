// Package cli wires the employeesapp binary: a cobra root with the serve
// and smoke commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raysh454/employeesapp/internal/app"
	"github.com/raysh454/employeesapp/internal/logging"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
	noColor    bool
}

// NewRootCmd creates the employeesapp command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "employeesapp",
		Short:         "Employees web app with anti-forgery protected forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug|info|warn|error")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSmokeCmd(opts))
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		errorColor.Fprint(stderr, "error: ")
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// Main is the entry point used by cmd/employeesapp.
func Main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// load reads the config and builds a logger for a subcommand.
func (o *rootOptions) load(component string) (*app.Config, *logging.ZapLogger, error) {
	cfg, err := app.LoadConfig(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logger, err := logging.NewZapLogger(component, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
