package handler

import (
	"log"
	"net/http"
	"strconv"

	"salonemart/internal/middleware"
	"salonemart/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallet  *service.WalletService
	payouts *service.PayoutService
}

func NewWalletHandler(wallet *service.WalletService, payouts *service.PayoutService) *WalletHandler {
	return &WalletHandler{wallet: wallet, payouts: payouts}
}

// GetBalance returns the caller's derived balance in minor units.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.wallet.Balance(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[Wallet] balance for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_minor": balance,
		"currency":      h.wallet.Currency(),
	})
}

// GetTransactions lists the caller's ledger entries, newest first.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := h.wallet.Transactions(userID, limit, offset)
	if err != nil {
		log.Printf("[Wallet] transactions for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries, "count": len(entries)})
}

type DepositRequest struct {
	AmountMinor int64 `json:"amount_minor" binding:"required,min=1"`
}

// Deposit creates a pending deposit and returns the provider payment code
// the user dials to complete it.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, ussdCode, err := h.payouts.InitiateDeposit(c.Request.Context(), userID, req.AmountMinor)
	if err != nil {
		log.Printf("[Wallet] deposit init for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deposit init failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"entry_id":  entry.ID,
		"reference": entry.Reference,
		"status":    entry.Status,
		"ussd_code": ussdCode,
		"message":   "Dial the code on your phone to complete the deposit.",
	})
}
