// Package server implements the Base Receipt acknowledgement endpoints:
// the approve, complete, and auth routes the wallet approval flow calls
// back into. The endpoints log and echo records; they hold no business
// logic of their own.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/basepi/basereceipt/internal/approval"
	"github.com/basepi/basereceipt/internal/receipt"
)

// Handler carries the dependencies of the acknowledgement routes.
type Handler struct {
	clock  receipt.Clock
	logger *slog.Logger
}

// NewHandler creates a handler. Nil arguments select the system clock
// and the default logger.
func NewHandler(clock receipt.Clock, logger *slog.Logger) *Handler {
	if clock == nil {
		clock = receipt.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{clock: clock, logger: logger}
}

// Router builds the gin engine with all acknowledgement routes. Each
// POST route has a GET sibling serving as a health check.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/approve", h.approve)
	api.GET("/approve", h.health("/api/approve"))
	api.POST("/complete", h.complete)
	api.GET("/complete", h.health("/api/complete"))
	api.POST("/auth", h.auth)
	api.GET("/auth", h.health("/api/auth"))

	return r
}

type approveBody struct {
	PaymentID string            `json:"paymentId"`
	Amount    int               `json:"amount"`
	Metadata  approval.Metadata `json:"metadata"`
}

// approve handles the wallet's approval callback. No funds are
// transferred: this is approval-only, and a non-zero amount is flagged.
func (h *Handler) approve(c *gin.Context) {
	var body approveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.PaymentID == "" {
		h.logger.Warn("approval request without payment ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing payment ID"})
		return
	}
	if body.Amount != 0 {
		h.logger.Warn("non-zero amount on approval-only endpoint",
			"payment_id", body.PaymentID, "amount", body.Amount)
	}

	now := h.clock.Now().UTC().Format(time.RFC3339)
	record := gin.H{
		"paymentId":   body.PaymentID,
		"amount":      body.Amount,
		"metadata":    body.Metadata,
		"status":      "approved",
		"timestamp":   now,
		"receiptId":   body.Metadata.ReceiptID,
		"referenceId": body.Metadata.ReferenceID,
	}
	h.logger.Info("approval acknowledged",
		"payment_id", body.PaymentID, "receipt_id", body.Metadata.ReceiptID)

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"approved":       true,
		"paymentId":      body.PaymentID,
		"approvalRecord": record,
	})
}

type completeBody struct {
	PaymentID string            `json:"paymentId"`
	TxID      string            `json:"txid"`
	Metadata  approval.Metadata `json:"metadata"`
}

// complete handles the wallet's completion callback after confirmation.
func (h *Handler) complete(c *gin.Context) {
	var body completeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.PaymentID == "" {
		h.logger.Warn("completion request without payment ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing payment ID"})
		return
	}

	txid := body.TxID
	if txid == "" {
		txid = "testnet-no-txid"
	}

	now := h.clock.Now().UTC().Format(time.RFC3339)
	record := gin.H{
		"paymentId":   body.PaymentID,
		"txid":        txid,
		"metadata":    body.Metadata,
		"status":      "completed",
		"timestamp":   now,
		"receiptId":   body.Metadata.ReceiptID,
		"referenceId": body.Metadata.ReferenceID,
	}
	h.logger.Info("completion acknowledged", "payment_id", body.PaymentID, "txid", txid)

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"completed":        true,
		"paymentId":        body.PaymentID,
		"txid":             txid,
		"completionRecord": record,
	})
}

type authBody struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		UID      string `json:"uid"`
		Username string `json:"username"`
	} `json:"user"`
}

// auth verifies a wallet access token and answers with a session. On
// testnet the token is accepted as-is.
func (h *Handler) auth(c *gin.Context) {
	var body authBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing access token"})
		return
	}

	user := body.User
	if user.Username == "" {
		user.UID, user.Username = "testnet-user", "TestnetUser"
	}
	h.logger.Info("session created", "username", user.Username)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": gin.H{
			"accessToken":   body.AccessToken,
			"user":          user,
			"authenticated": true,
			"timestamp":     h.clock.Now().UTC().Format(time.RFC3339),
		},
	})
}

// health answers GET probes on the acknowledgement routes.
func (h *Handler) health(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"endpoint":  endpoint,
			"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
		})
	}
}
