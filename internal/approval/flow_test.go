package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flowRecorder collects callback invocations for assertions.
type flowRecorder struct {
	mu       sync.Mutex
	approved []Metadata
	errors   []error
}

func (r *flowRecorder) callbacks() Callbacks {
	return Callbacks{
		OnApproved: func(m Metadata) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.approved = append(r.approved, m)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errors = append(r.errors, err)
		},
	}
}

func ackServer(t *testing.T, approveOK bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/approve" && !approveOK {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"error": "Approval processing failed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFlow_ApprovalReady_AcksThenApproves(t *testing.T) {
	srv := ackServer(t, true)
	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleApprovalReady(context.Background(), "pay-1")

	require.Len(t, rec.approved, 1)
	assert.Equal(t, "BR-1", rec.approved[0].ReceiptID)
	assert.Empty(t, rec.errors)
	assert.True(t, flow.Settled())
}

func TestFlow_ApprovalReady_AckFailureSurfacesError(t *testing.T) {
	srv := ackServer(t, false)
	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleApprovalReady(context.Background(), "pay-1")

	assert.Empty(t, rec.approved)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0].Error(), "backend approval failed")
}

func TestFlow_Cancel(t *testing.T) {
	srv := ackServer(t, true)
	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleCancel("pay-1")

	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0].Error(), "cancelled by user")
}

func TestFlow_NeverBothCallbacks(t *testing.T) {
	srv := ackServer(t, true)
	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleApprovalReady(context.Background(), "pay-1")
	flow.HandleCancel("pay-1")
	flow.HandleError(assert.AnError)
	flow.HandleApprovalReady(context.Background(), "pay-1")

	assert.Len(t, rec.approved, 1, "approval settles the flow exactly once")
	assert.Empty(t, rec.errors, "later events on a settled flow are dropped")
}

func TestFlow_ErrorThenApproval(t *testing.T) {
	srv := ackServer(t, true)
	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleError(assert.AnError)
	flow.HandleApprovalReady(context.Background(), "pay-1")

	assert.Len(t, rec.errors, 1)
	assert.Empty(t, rec.approved)
}

func TestFlow_CompletionFailureIsInformational(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/complete" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"error": "Completion processing failed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	rec := &flowRecorder{}
	flow := NewFlow(NewClient(srv.URL), testMeta, rec.callbacks(), nil)

	flow.HandleApprovalReady(context.Background(), "pay-1")
	flow.HandleCompletionReady(context.Background(), "pay-1", "tx-9")

	require.Len(t, rec.approved, 1)
	assert.Empty(t, rec.errors, "completion failures never surface as flow errors")
}
