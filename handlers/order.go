package handlers

import (
	"net/http"

	"woolcrafts-backend/middleware"
	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders *services.OrderService
	// Stats is optional; when set, order writes drop the cached dashboard figures.
	Stats *services.StatsService
}

func (h *OrderHandler) invalidateStats(c *gin.Context) {
	if h.Stats != nil {
		h.Stats.Invalidate(c.Request.Context())
	}
}

// CreateOrder places an order for the caller, who may be a guest.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateStats(c)
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id", "Order not found")
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	orders, err := h.Orders.ListUserOrders(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// UpdateOrderStatus serves both PUT /orders/:id and PUT /orders/:id/status.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "Order not found")
	if !ok {
		return
	}
	var req services.StatusUpdateInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.Orders.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := paramID(c, "id", "Order not found")
	if !ok {
		return
	}
	var req services.PaymentUpdateInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.Orders.UpdatePayment(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id", "Order not found")
	if !ok {
		return
	}

	order, err := h.Orders.CancelOrder(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id", "Order not found")
	if !ok {
		return
	}

	if err := h.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.invalidateStats(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted successfully and stock restored"})
}
