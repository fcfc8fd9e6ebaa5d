package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basepi/basereceipt/internal/approval"
	"github.com/basepi/basereceipt/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter() *gin.Engine {
	h := NewHandler(testutil.FixedClock{T: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)
	return h.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestApprove_Success(t *testing.T) {
	router := testRouter()

	body := `{"paymentId":"pay-1","amount":0,"metadata":{"action":"Base Receipt Creation","receiptId":"BR-1","referenceId":"REF-1"}}`
	w, resp := doJSON(t, router, http.MethodPost, "/api/approve", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["approved"])
	assert.Equal(t, "pay-1", resp["paymentId"])

	record := resp["approvalRecord"].(map[string]any)
	assert.Equal(t, "approved", record["status"])
	assert.Equal(t, "BR-1", record["receiptId"])
	assert.Equal(t, "2024-01-01T00:00:00Z", record["timestamp"])
}

func TestApprove_MissingPaymentID(t *testing.T) {
	router := testRouter()

	w, resp := doJSON(t, router, http.MethodPost, "/api/approve", `{"amount":0}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing payment ID", resp["error"])
}

func TestApprove_WorksWithClient(t *testing.T) {
	// The approval client and the ack server agree on the wire shape.
	srv := httptest.NewServer(testRouter())
	defer srv.Close()

	ack, err := approval.NewClient(srv.URL).Approve(context.Background(), "pay-1", approval.Metadata{ReceiptID: "BR-1"})
	require.NoError(t, err)
	assert.True(t, ack.Approved)
}

func TestComplete_Success(t *testing.T) {
	router := testRouter()

	body := `{"paymentId":"pay-1","txid":"tx-9","metadata":{"receiptId":"BR-1"}}`
	w, resp := doJSON(t, router, http.MethodPost, "/api/complete", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["completed"])
	assert.Equal(t, "tx-9", resp["txid"])
}

func TestComplete_DefaultsTxid(t *testing.T) {
	router := testRouter()

	_, resp := doJSON(t, router, http.MethodPost, "/api/complete", `{"paymentId":"pay-1"}`)
	assert.Equal(t, "testnet-no-txid", resp["txid"])
}

func TestComplete_MissingPaymentID(t *testing.T) {
	router := testRouter()

	w, resp := doJSON(t, router, http.MethodPost, "/api/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing payment ID", resp["error"])
}

func TestAuth_Success(t *testing.T) {
	router := testRouter()

	body := `{"accessToken":"tok-1","user":{"uid":"u-1","username":"alice"}}`
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth", body)

	assert.Equal(t, http.StatusOK, w.Code)
	session := resp["session"].(map[string]any)
	assert.Equal(t, true, session["authenticated"])
	user := session["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
}

func TestAuth_MissingToken(t *testing.T) {
	router := testRouter()

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing access token", resp["error"])
}

func TestHealthChecks(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/api/approve", "/api/complete", "/api/auth"} {
		t.Run(path, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "ok", resp["status"])
			assert.Equal(t, path, resp["endpoint"])
		})
	}
}
