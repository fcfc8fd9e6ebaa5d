package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	ShowLog bool
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show the current application state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowLog, "log", false, "include the activity log")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	m, cleanup, err := openManager(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	st := m.State()
	out := formatter(opts.RootOptions, cmd)

	if opts.Format == "json" {
		return out.Success(st)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Domain:      %s\n", st.Domain.FullDomain)
	fmt.Fprintf(&b, "Updated:     %s\n", st.LastUpdated.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Processing:  %v\n", st.IsProcessing)
	if st.Receipt == nil {
		b.WriteString("Receipt:     none")
		return out.Success(b.String())
	}

	b.WriteString(recordSummary(*st.Receipt))
	if opts.ShowLog {
		b.WriteString("\nActivity log:")
		for _, entry := range st.Receipt.APILog {
			b.WriteString("\n  " + entry)
		}
	}
	return out.Success(b.String())
}
