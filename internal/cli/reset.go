package cli

import (
	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Purge bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the application state",
		Long: `Return the application state to its default shape: no active
receipt, not processing. The domain identity is kept.

With --purge, all durable storage entries are removed first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "remove all durable storage entries")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	m, cleanup, err := openManager(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Purge {
		m.ClearAll()
	} else {
		m.Reset()
	}

	out := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return out.Success(m.State())
	}
	return out.Success("state reset")
}
