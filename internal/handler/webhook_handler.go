package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"salonemart/internal/repository"
	"salonemart/internal/service"

	"github.com/gin-gonic/gin"
)

// MonimeEvent is the provider's webhook envelope.
type MonimeEvent struct {
	Event struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"event"`
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type WebhookHandler struct {
	payouts *service.PayoutService
}

func NewWebhookHandler(payouts *service.PayoutService) *WebhookHandler {
	return &WebhookHandler{payouts: payouts}
}

// HandleMonime folds a provider confirmation into the ledger. Responses
// matter here: a 2xx stops the provider's retries, anything else makes it
// resend, so transient failures must not return 200.
func (h *WebhookHandler) HandleMonime(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var payload MonimeEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Webhook] unmarshal error: %v, body: %s", err, string(body))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.Event.ID == "" || payload.Data.ID == "" {
		log.Printf("[Webhook] missing event or resource id, body: %s", string(body))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event id"})
		return
	}

	err = h.payouts.HandleWebhook(c.Request.Context(), payload.Event.ID, payload.Event.Name, payload.Data.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
	case errors.Is(err, service.ErrUnsupportedEvent):
		// Acknowledged so the provider stops resending event types we
		// do not consume.
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
	case errors.Is(err, repository.ErrEntryNotFound):
		// Our pending entry may still be committing; ask for a retry.
		log.Printf("[Webhook] no pending entry for event %s yet", payload.Event.ID)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no matching pending entry"})
	default:
		log.Printf("[Webhook] event %s failed: %v", payload.Event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	}
}
