package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basepi/basereceipt/internal/receipt"
	"github.com/basepi/basereceipt/internal/state"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Action string
	AppID  string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a new receipt record",
		Long: `Create a new receipt record in the created status and make it the
active record. Any previously active record is replaced.

Example:
  basereceipt create alice --app-id app-123`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Action, "action", "Base Receipt Creation", "action label for the record")
	cmd.Flags().StringVar(&opts.AppID, "app-id", "base-receipt", "deployment app identifier")

	return cmd
}

func runCreate(opts *CreateOptions, username string, cmd *cobra.Command) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return NewExitError(ExitCommandError, "username must not be empty")
	}

	m, cleanup, err := openManager(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := receipt.NewEngine()
	rec := engine.Create(username, receipt.ActionConfig{
		ID:               "base-receipt-creation",
		Name:             opts.Action,
		RequiresApproval: true,
	}, opts.AppID)

	m.Apply(state.Patch{Receipt: &rec, IsProcessing: state.Bool(false)})

	out := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return out.Success(rec)
	}
	return out.Success(recordSummary(rec))
}

// recordSummary renders a record for text output.
func recordSummary(rec receipt.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt:    %s\n", rec.ReceiptID)
	fmt.Fprintf(&b, "Reference:  %s\n", rec.ReferenceID)
	fmt.Fprintf(&b, "Status:     %s\n", rec.Status)
	fmt.Fprintf(&b, "User:       %s\n", rec.Username)
	fmt.Fprintf(&b, "Action:     %s\n", rec.Action)
	if rec.Finalized() {
		fmt.Fprintf(&b, "Freeze ID:  %s\n", *rec.FreezeID)
	}
	fmt.Fprintf(&b, "Log entries: %d", len(rec.APILog))
	return b.String()
}
