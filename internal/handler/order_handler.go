package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"salonemart/internal/domain"
	"salonemart/internal/middleware"
	"salonemart/internal/repository"
	"salonemart/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	escrow *service.EscrowService
}

func NewOrderHandler(escrow *service.EscrowService) *OrderHandler {
	return &OrderHandler{escrow: escrow}
}

type CreateOrderRequest struct {
	SellerID    uint   `json:"seller_id" binding:"required"`
	TotalMinor  int64  `json:"total_minor" binding:"required,min=1"`
	Description string `json:"description" binding:"max=500"`
}

// Create opens an order: the buyer's wallet is debited and the amount is
// held in escrow until delivery is confirmed.
func (h *OrderHandler) Create(c *gin.Context) {
	buyerID := middleware.GetUserID(c)
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.escrow.Open(c.Request.Context(), buyerID, req.SellerID, req.TotalMinor, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSameParty),
			errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, repository.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "seller not found"})
		default:
			log.Printf("[Order] create failed for buyer %d: %v", buyerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order creation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	order, err := h.escrow.Get(c.Param("orderNo"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.BuyerID != userID && order.SellerID != userID && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	orders, err := h.escrow.ListForUser(userID, limit, offset)
	if err != nil {
		log.Printf("[Order] list for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// Ship marks the order shipped. Seller only.
func (h *OrderHandler) Ship(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	if err := h.escrow.Ship(c.Request.Context(), c.Param("orderNo"), sellerID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "shipped"})
}

// ConfirmDelivery confirms receipt and releases the escrow to the seller.
// Buyer only.
func (h *OrderHandler) ConfirmDelivery(c *gin.Context) {
	buyerID := middleware.GetUserID(c)
	err := h.escrow.ConfirmDelivery(c.Request.Context(), c.Param("orderNo"), buyerID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"status": "completed", "message": "escrow already released"})
			return
		}
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "message": "escrow released to seller"})
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Cancel refunds the escrow to the buyer. Either party, before shipment.
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.escrow.Cancel(c.Request.Context(), c.Param("orderNo"), userID, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"status": "cancelled", "message": "escrow already refunded"})
			return
		}
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "message": "escrow refunded to buyer"})
}

// Dispute freezes the order for admin review. Buyer only.
func (h *OrderHandler) Dispute(c *gin.Context) {
	buyerID := middleware.GetUserID(c)
	if err := h.escrow.Dispute(c.Request.Context(), c.Param("orderNo"), buyerID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disputed", "message": "escrow frozen pending review"})
}

func (h *OrderHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, repository.ErrStatusConflict),
		errors.Is(err, repository.ErrEscrowNotHolding),
		errors.Is(err, repository.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[Order] transition failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
	}
}
