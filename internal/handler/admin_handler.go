package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"salonemart/internal/repository"
	"salonemart/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	escrow      *service.EscrowService
	consistency *service.ConsistencyService
	userRepo    *repository.UserRepository
}

func NewAdminHandler(escrow *service.EscrowService, consistency *service.ConsistencyService, userRepo *repository.UserRepository) *AdminHandler {
	return &AdminHandler{escrow: escrow, consistency: consistency, userRepo: userRepo}
}

type ResolveDisputeRequest struct {
	Ruling string `json:"ruling" binding:"required,oneof=release refund"`
}

// ResolveDispute settles a disputed order in favour of the seller (release)
// or the buyer (refund).
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orderNo := c.Param("orderNo")
	err := h.escrow.ResolveDispute(c.Request.Context(), orderNo, req.Ruling)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidState),
			errors.Is(err, service.ErrAlreadyProcessed),
			errors.Is(err, repository.ErrStatusConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[Admin] resolve dispute %s: %v", orderNo, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dispute resolution failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_no": orderNo, "ruling": req.Ruling})
}

// ConsistencyReport runs the ledger and escrow scans and returns the
// findings. Nothing is corrected automatically.
func (h *AdminHandler) ConsistencyReport(c *gin.Context) {
	report, err := h.consistency.Run()
	if err != nil {
		log.Printf("[Admin] consistency scan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "consistency scan failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) FreezeUser(c *gin.Context) {
	h.setFrozen(c, true)
}

func (h *AdminHandler) UnfreezeUser(c *gin.Context) {
	h.setFrozen(c, false)
}

func (h *AdminHandler) setFrozen(c *gin.Context, frozen bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.userRepo.SetFrozen(uint(id), frozen); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("[Admin] set frozen=%v for user %d: %v", frozen, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "frozen": frozen})
}
