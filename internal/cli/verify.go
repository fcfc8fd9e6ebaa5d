package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the domain binding of the stored state",
		Long: `Compare the durably stored deployment identity against this
runtime's identity. A mismatch indicates storage reused across
deployments; it exits non-zero but nothing is blocked.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	m, cleanup, err := openManager(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	out := formatter(opts, cmd)
	domain := m.DomainIdentity()

	if !m.VerifyDomainBinding() {
		out.Error("BINDING_MISMATCH",
			fmt.Sprintf("stored identity does not match %s", domain.FullDomain))
		return NewExitError(ExitFailure, "domain binding mismatch")
	}

	if opts.Format == "json" {
		return out.Success(map[string]any{"verified": true, "domain": domain})
	}
	return out.Success(fmt.Sprintf("domain binding verified: %s", domain.FullDomain))
}
