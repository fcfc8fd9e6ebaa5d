package cli

import (
	"github.com/spf13/cobra"

	"github.com/basepi/basereceipt/internal/receipt"
	"github.com/basepi/basereceipt/internal/state"
)

// NewFinalizeCommand creates the finalize command.
func NewFinalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Finalize the approved active record",
		Long: `Finalize the active record: assign a freeze ID, mark it submitted,
and stamp the freeze tag into its manifest. Only valid while the record
is in the approved status.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinalize(rootOpts, cmd)
		},
	}
	return cmd
}

func runFinalize(opts *RootOptions, cmd *cobra.Command) error {
	m, cleanup, err := openManager(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	st := m.State()
	if st.Receipt == nil {
		return NewExitError(ExitCommandError, "no active receipt; run create first")
	}

	engine := receipt.NewEngine()
	submitted, err := engine.Finalize(*st.Receipt)
	if err != nil {
		formatter(opts, cmd).Error("FINALIZE_REJECTED", err.Error())
		return WrapExitError(ExitFailure, "finalize rejected", err)
	}

	m.Apply(state.Patch{Receipt: &submitted, IsProcessing: state.Bool(false)})

	out := formatter(opts, cmd)
	if opts.Format == "json" {
		return out.Success(submitted)
	}
	return out.Success(recordSummary(submitted))
}
