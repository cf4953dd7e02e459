package handlers

import (
	"net/http"

	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubcategoryHandler struct {
	Catalog *services.CatalogService
}

// GetSubcategories lists every subcategory, or one category's when ?categoryId is set.
func (h *SubcategoryHandler) GetSubcategories(c *gin.Context) {
	var filter *uuid.UUID
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusOK, []interface{}{})
			return
		}
		filter = &id
	}
	h.list(c, filter)
}

func (h *SubcategoryHandler) GetSubcategoriesByCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	h.list(c, &id)
}

func (h *SubcategoryHandler) list(c *gin.Context, categoryID *uuid.UUID) {
	subs, err := h.Catalog.ListSubcategories(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var req services.SubcategoryInput
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.Catalog.CreateSubcategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "subcategory": sub})
}

func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	id, ok := paramID(c, "id", "Subcategory not found")
	if !ok {
		return
	}
	var req services.SubcategoryInput
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.Catalog.UpdateSubcategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subcategory": sub})
}

func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	id, ok := paramID(c, "id", "Subcategory not found")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteSubcategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subcategory deleted successfully"})
}
