package cli

import (
	"github.com/spf13/cobra"

	"github.com/basepi/basereceipt/internal/receipt"
	"github.com/basepi/basereceipt/internal/state"
)

// NewFailCommand creates the fail command.
func NewFailCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fail <message>",
		Short: "Fail the active record with a message",
		Long: `Transition the active record to the failed status, appending the
message and a failure notice to its activity log. Valid from any
non-terminal status.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFail(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runFail(opts *RootOptions, message string, cmd *cobra.Command) error {
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
	failed, err := engine.Fail(*st.Receipt, message)
	if err != nil {
		formatter(opts, cmd).Error("FAIL_REJECTED", err.Error())
		return WrapExitError(ExitFailure, "fail rejected", err)
	}

	m.Apply(state.Patch{Receipt: &failed, IsProcessing: state.Bool(false)})

	out := formatter(opts, cmd)
	if opts.Format == "json" {
		return out.Success(failed)
	}
	return out.Success(recordSummary(failed))
}
