package handlers

import (
	"errors"
	"net/http"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name  string              `json:"name" binding:"required"`
	Type  models.CategoryType `json:"type" binding:"required"`
	Color string              `json:"color"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name  *string              `json:"name"`
	Type  *models.CategoryType `json:"type"`
	Color *string              `json:"color"`
}

// clearCategoryCaches evicts cached category reads for every principal, plus
// the aggregate views that embed category data.
func clearCategoryCaches(c *gin.Context, inv *cache.Invalidator) {
	ctx := c.Request.Context()
	inv.ClearForDomain(ctx, "/api/categories", "")
	inv.ClearForDomain(ctx, "/api/analytics", "")
}

// GetCategories handles GET /api/categories
func GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := database.GetDB().Order("name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory handles POST /api/categories (admin only)
func CreateCategory(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Type != models.CategoryIncome && req.Type != models.CategoryExpense {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category type"})
			return
		}

		category := models.Category{
			ID:    uuid.New().String(),
			Name:  req.Name,
			Type:  req.Type,
			Color: req.Color,
		}
		if err := database.GetDB().Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}

		clearCategoryCaches(c, inv)

		c.JSON(http.StatusCreated, category)
	}
}

// UpdateCategory handles PUT /api/categories/:id (admin only)
func UpdateCategory(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID := c.Param("id")
		if categoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category ID is required"})
			return
		}

		var existing models.Category
		if err := database.GetDB().Where("id = ?", categoryID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			}
			return
		}

		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Type != nil {
			if *req.Type != models.CategoryIncome && *req.Type != models.CategoryExpense {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category type"})
				return
			}
			existing.Type = *req.Type
		}
		if req.Color != nil {
			existing.Color = *req.Color
		}

		if err := database.GetDB().Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}

		clearCategoryCaches(c, inv)

		c.JSON(http.StatusOK, existing)
	}
}

// DeleteCategory handles DELETE /api/categories/:id (admin only)
// A category that still has transactions cannot be deleted.
func DeleteCategory(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID := c.Param("id")
		if categoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category ID is required"})
			return
		}

		var category models.Category
		if err := database.GetDB().Where("id = ?", categoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			}
			return
		}

		var inUse int64
		if err := database.GetDB().Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category usage"})
			return
		}
		if inUse > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Category has transactions and cannot be deleted"})
			return
		}

		if err := database.GetDB().Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}

		clearCategoryCaches(c, inv)

		c.JSON(http.StatusOK, gin.H{
			"message": "Category deleted successfully",
			"id":      categoryID,
		})
	}
}
