package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = Metadata{
	Action:      "Base Receipt Creation",
	ReceiptID:   "BR-1",
	ReferenceID: "REF-1",
	Timestamp:   "2024-01-01T00:00:00Z",
}

func TestClient_Approve_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/approve", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"approved":  true,
			"paymentId": "pay-1",
		})
	}))
	defer srv.Close()

	ack, err := NewClient(srv.URL).Approve(context.Background(), "pay-1", testMeta)
	require.NoError(t, err)

	assert.True(t, ack.Approved)
	assert.Equal(t, "pay-1", ack.PaymentID)
	assert.Equal(t, "pay-1", gotBody["paymentId"])
	assert.Equal(t, float64(0), gotBody["amount"], "approval-only flows carry zero amount")
	meta := gotBody["metadata"].(map[string]any)
	assert.Equal(t, "BR-1", meta["receiptId"])
}

func TestClient_Approve_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "Missing payment ID"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Approve(context.Background(), "", testMeta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing payment ID")
}

func TestClient_Approve_SuccessFalseBody(t *testing.T) {
	// 200 with success:false is still a rejection.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "approval declined"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Approve(context.Background(), "pay-1", testMeta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "approval declined")
}

func TestClient_Approve_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately unreachable

	_, err := NewClient(srv.URL).Approve(context.Background(), "pay-1", testMeta)
	assert.Error(t, err)
}

func TestClient_Complete_SendsTxid(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/complete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "completed": true, "txid": "tx-9"})
	}))
	defer srv.Close()

	ack, err := NewClient(srv.URL).Complete(context.Background(), "pay-1", "tx-9", testMeta)
	require.NoError(t, err)

	assert.True(t, ack.Completed)
	assert.Equal(t, "tx-9", gotBody["txid"])
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Approve(ctx, "pay-1", testMeta)
	assert.ErrorIs(t, err, context.Canceled)
}
