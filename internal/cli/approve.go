package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/basepi/basereceipt/internal/approval"
	"github.com/basepi/basereceipt/internal/receipt"
	"github.com/basepi/basereceipt/internal/server"
	"github.com/basepi/basereceipt/internal/state"
)

// ApproveOptions holds flags for the approve command.
type ApproveOptions struct {
	*RootOptions
	AckURL   string
	Complete bool
}

// NewApproveCommand creates the approve command.
func NewApproveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApproveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Run the wallet approval flow for the active record",
		Long: `Simulate the wallet approval flow for the active record: the approve
endpoint is acknowledged, then the record transitions to approved. On
cancellation or acknowledgement failure the record transitions to failed
instead.

Without --ack-url a local acknowledgement server is started for the
duration of the flow.

Example:
  basereceipt approve
  basereceipt approve --ack-url https://receipt.base.pi --complete`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprove(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AckURL, "ack-url", "", "acknowledgement server base URL")
	cmd.Flags().BoolVar(&opts.Complete, "complete", false, "also acknowledge the completion event")

	return cmd
}

func runApprove(opts *ApproveOptions, cmd *cobra.Command) error {
	m, cleanup, err := openManager(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	st := m.State()
	if st.Receipt == nil {
		return NewExitError(ExitCommandError, "no active receipt; run create first")
	}
	rec := *st.Receipt
	if rec.Status != receipt.StatusCreated {
		return NewExitError(ExitFailure,
			fmt.Sprintf("active receipt is %s, approval requires created", rec.Status))
	}

	ackURL := opts.AckURL
	if ackURL == "" {
		url, stop, err := startLocalAckServer()
		if err != nil {
			return WrapExitError(ExitCommandError, "starting local ack server", err)
		}
		defer stop()
		ackURL = url
	}

	engine := receipt.NewEngine()
	m.Apply(state.Patch{IsProcessing: state.Bool(true)})

	var flowErr error
	flow := approval.NewFlow(
		approval.NewClient(ackURL),
		approval.Metadata{
			Action:      rec.Action,
			ReceiptID:   rec.ReceiptID,
			ReferenceID: rec.ReferenceID,
			Timestamp:   rec.Timestamp,
		},
		approval.Callbacks{
			OnApproved: func(approval.Metadata) {
				approved, err := engine.UpdateStatus(rec, receipt.StatusApproved,
					"Wallet approval received")
				if err != nil {
					flowErr = err
					return
				}
				rec = approved
				m.Apply(state.Patch{Receipt: &rec, IsProcessing: state.Bool(false)})
			},
			OnError: func(err error) {
				failed, ferr := engine.Fail(rec, err.Error())
				if ferr != nil {
					flowErr = errors.Join(err, ferr)
					return
				}
				rec = failed
				m.Apply(state.Patch{Receipt: &rec, IsProcessing: state.Bool(false)})
				flowErr = err
			},
		},
		nil,
	)

	ctx := cmd.Context()
	paymentID := "pay-" + uuid.NewString()
	flow.HandleApprovalReady(ctx, paymentID)
	if opts.Complete && flowErr == nil {
		flow.HandleCompletionReady(ctx, paymentID, "testnet-no-txid")
	}

	out := formatter(opts.RootOptions, cmd)
	if flowErr != nil {
		out.Error("APPROVAL_FAILED", flowErr.Error())
		return WrapExitError(ExitFailure, "approval flow failed", flowErr)
	}
	if opts.Format == "json" {
		return out.Success(rec)
	}
	return out.Success(recordSummary(rec))
}

// startLocalAckServer runs the acknowledgement endpoints on a loopback
// port for the duration of one approval flow.
func startLocalAckServer() (url string, stop func(), err error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	handler := server.NewHandler(nil, nil)
	srv := &http.Server{Handler: handler.Router()}
	go srv.Serve(listener)

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return "http://" + listener.Addr().String(), stop, nil
}
