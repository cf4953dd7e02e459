package handlers

import (
	"net/http"

	"woolcrafts-backend/middleware"
	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.Cart.GetCart(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req services.CartItemInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Cart.AddItem(c.Request.Context(), middleware.ActorFrom(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId", "Cart item not found")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Cart.UpdateItem(c.Request.Context(), middleware.ActorFrom(c).UserID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	itemID, ok := paramID(c, "itemId", "Cart item not found")
	if !ok {
		return
	}

	if err := h.Cart.RemoveItem(c.Request.Context(), middleware.ActorFrom(c).UserID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), middleware.ActorFrom(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}

func (h *CartHandler) GetWishlist(c *gin.Context) {
	products, err := h.Cart.Wishlist(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CartHandler) AddToWishlist(c *gin.Context) {
	productID, ok := paramID(c, "productId", "Product not found")
	if !ok {
		return
	}

	if err := h.Cart.AddToWishlist(c.Request.Context(), middleware.ActorFrom(c).UserID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to wishlist"})
}

func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	productID, ok := paramID(c, "productId", "Product not found")
	if !ok {
		return
	}

	if err := h.Cart.RemoveFromWishlist(c.Request.Context(), middleware.ActorFrom(c).UserID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from wishlist"})
}
