package handler

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"salonemart/internal/middleware"
	"salonemart/internal/repository"
	"salonemart/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	payouts *service.PayoutService
}

func NewWithdrawalHandler(payouts *service.PayoutService) *WithdrawalHandler {
	return &WithdrawalHandler{payouts: payouts}
}

type WithdrawRequest struct {
	AmountMinor  int64  `json:"amount_minor" binding:"required,min=1"`
	PhoneNumber  string `json:"phone_number" binding:"required"`
	MomoProvider string `json:"momo_provider"`
}

// Create initiates a mobile-money payout. The full amount is debited; the
// provider receives the amount net of the withdrawal fee.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	momo := req.MomoProvider
	if momo == "" {
		momo = "m17"
	}
	entry, err := h.payouts.InitiateWithdrawal(c.Request.Context(), userID, req.AmountMinor, phone, momo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountFrozen):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[Withdrawal] init failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal init failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"entry_id":     entry.ID,
		"reference":    entry.Reference,
		"amount_minor": entry.Amount,
		"status":       entry.Status,
		"message":      "Withdrawal initiated. You will be notified once the payout settles.",
	})
}

var phoneDigits = regexp.MustCompile(`^\d{8}$`)

// normalizePhone accepts Sierra Leone numbers in local (0XXXXXXXX) or
// international (+232XXXXXXXX / 232XXXXXXXX) form and returns the
// 232-prefixed digits, or "" when unparseable.
func normalizePhone(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "232") {
		p = p[3:]
	} else if strings.HasPrefix(p, "0") {
		p = p[1:]
	}
	if !phoneDigits.MatchString(p) {
		return ""
	}
	return "232" + p
}
