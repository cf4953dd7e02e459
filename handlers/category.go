package handlers

import (
	"net/http"

	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "Category not found")
	if !ok {
		return
	}

	category, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.Catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "Category not found")
	if !ok {
		return
	}
	var req services.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.Catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

// DeleteCategory also removes the category's subcategories and products.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "Category not found")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}
