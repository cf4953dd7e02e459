package handlers

import (
	"net/http"

	"woolcrafts-backend/middleware"
	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter services.ProductFilter
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusOK, []interface{}{})
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("subcategoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusOK, []interface{}{})
			return
		}
		filter.SubcategoryID = &id
	}
	h.list(c, filter)
}

func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	h.list(c, services.ProductFilter{CategoryID: &id})
}

func (h *ProductHandler) GetProductsBySubcategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("subcategoryId"))
	if err != nil {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	h.list(c, services.ProductFilter{SubcategoryID: &id})
}

func (h *ProductHandler) list(c *gin.Context, filter services.ProductFilter) {
	products, err := h.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product not found")
	if !ok {
		return
	}

	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product not found")
	if !ok {
		return
	}
	var req services.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.Catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product not found")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

func (h *ProductHandler) AddReview(c *gin.Context) {
	id, ok := paramID(c, "id", "Product not found")
	if !ok {
		return
	}
	var req services.ReviewInput
	if !bindJSON(c, &req) {
		return
	}

	review, rating, err := h.Catalog.AddReview(c.Request.Context(), middleware.ActorFrom(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "review": review, "rating": rating})
}
