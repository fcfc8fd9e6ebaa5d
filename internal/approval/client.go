package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the remote acknowledgement endpoints. Both endpoints
// accept a JSON body with an identifier and metadata and answer with a
// success flag plus an echoed record. A non-success answer and a
// network-level failure are treated identically: as an error for the
// caller to surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// approveRequest is the POST /api/approve body. Amount is always zero:
// the flow is approval-only, no funds move.
type approveRequest struct {
	PaymentID string   `json:"paymentId"`
	Amount    int      `json:"amount"`
	Metadata  Metadata `json:"metadata"`
}

// completeRequest is the POST /api/complete body.
type completeRequest struct {
	PaymentID string   `json:"paymentId"`
	TxID      string   `json:"txid"`
	Metadata  Metadata `json:"metadata"`
}

// AckResponse is the common answer shape of both endpoints.
type AckResponse struct {
	Success   bool            `json:"success"`
	Approved  bool            `json:"approved,omitempty"`
	Completed bool            `json:"completed,omitempty"`
	PaymentID string          `json:"paymentId,omitempty"`
	TxID      string          `json:"txid,omitempty"`
	Record    json.RawMessage `json:"approvalRecord,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an acknowledgement client for the given base URL
// (e.g. "https://receipt.base.pi").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Approve acknowledges an approval-ready event for paymentID.
func (c *Client) Approve(ctx context.Context, paymentID string, meta Metadata) (*AckResponse, error) {
	return c.post(ctx, "/api/approve", approveRequest{
		PaymentID: paymentID,
		Amount:    0,
		Metadata:  meta,
	})
}

// Complete acknowledges a completion-ready event for paymentID.
func (c *Client) Complete(ctx context.Context, paymentID, txid string, meta Metadata) (*AckResponse, error) {
	return c.post(ctx, "/api/complete", completeRequest{
		PaymentID: paymentID,
		TxID:      txid,
		Metadata:  meta,
	})
}

func (c *Client) post(ctx context.Context, path string, body any) (*AckResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	var ack AckResponse
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !ack.Success {
		msg := ack.Error
		if msg == "" {
			msg = fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s rejected: %s", path, msg)
	}

	return &ack, nil
}
