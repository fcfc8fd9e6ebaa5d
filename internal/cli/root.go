// Package cli implements the basereceipt command line interface.
//
// Every command that touches state opens the shared SQLite database (the
// durable "origin storage"), builds a state manager over it, performs
// one operation, and exits. Tabs of the deployment correspond to
// concurrent processes sharing that database file.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/basepi/basereceipt/internal/config"
	"github.com/basepi/basereceipt/internal/state"
	"github.com/basepi/basereceipt/internal/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // path to the SQLite storage file
	Config   string // optional domain identity override file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the basereceipt CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "basereceipt",
		Short: "Base Receipt - approval-only receipt lifecycle tracker",
		Long: "Track a receipt record from creation through wallet approval to\n" +
			"finalization, with durable state shared across concurrent sessions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "basereceipt.db", "path to SQLite storage")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "domain identity override file (YAML)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewApproveCommand(opts))
	cmd.AddCommand(NewFinalizeCommand(opts))
	cmd.AddCommand(NewFailCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openManager opens the durable store and builds a state manager over
// it. The returned cleanup closes both.
func openManager(opts *RootOptions) (*state.Manager, func(), error) {
	domain, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading config", err)
	}

	kv, err := storage.OpenSQLite(opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening storage", err)
	}

	m := state.NewManager(domain, state.WithKV(kv))
	cleanup := func() {
		m.Close()
		kv.Close()
	}
	return m, cleanup, nil
}

// formatter builds the output formatter for a command.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}
