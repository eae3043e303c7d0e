package handlers

import (
	"errors"
	"net/http"

	"catalog-backend/cache"
	"catalog-backend/catalog"
	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB    *gorm.DB
	Cache ListCache
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var categories []models.Category

	if h.Cache.Get(c.Request.Context(), cache.KeyCategories, &categories) {
		c.JSON(http.StatusOK, categories)
		return
	}

	if err := h.DB.Preload("Parent").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	h.Cache.Set(c.Request.Context(), cache.KeyCategories, categories)
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id := c.Param("id")
	var category models.Category

	if err := h.DB.Preload("Parent").Preload("Products").Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dtos.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	parentID, err := h.resolveParent(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		ID:       uuid.New(),
		Name:     req.Name,
		ParentID: parentID,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), cache.KeyCategories, cache.KeyProducts)
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	var category models.Category

	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req dtos.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	parentID, err := h.resolveParent(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reparenting must keep the tree a forest, so the whole set is checked.
	var all []models.Category
	if err := h.DB.Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	if err := catalog.ValidateParent(all, category.ID, parentID); err != nil {
		var rerr *catalog.ReferenceError
		if errors.As(err, &rerr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": rerr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category.Name = req.Name
	category.ParentID = parentID
	if err := h.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	// The cached product list embeds each product's category, so a rename
	// or move has to flush both lists.
	h.Cache.Invalidate(c.Request.Context(), cache.KeyCategories, cache.KeyProducts)
	c.JSON(http.StatusOK, category)
}

// DeleteCategory is a two-step destructive operation. Without confirm=true it
// only reports what the delete would touch; the category is never mutated on
// the first call.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var productCount int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category dependencies"})
		return
	}

	var childCount int64
	if err := h.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category dependencies"})
		return
	}

	var req dtos.CategoryDeleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if !req.Confirm {
		c.JSON(http.StatusOK, gin.H{
			"confirm_required": true,
			"message":          "Confirm deletion by repeating the request with confirm=true",
			"category":         category.Name,
			"product_count":    productCount,
			"child_count":      childCount,
		})
		return
	}

	if productCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Cannot delete category with associated products",
			"message":       "Please reassign or delete the associated products first",
			"product_count": productCount,
		})
		return
	}

	if childCount > 0 && !req.Reparent {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Cannot delete category with child categories",
			"message":     "Pass reparent=true to move child categories to the root",
			"child_count": childCount,
		})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Reparent && childCount > 0 {
			if err := tx.Model(&models.Category{}).
				Where("parent_id = ?", id).
				Update("parent_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), cache.KeyCategories, cache.KeyProducts)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// resolveParent parses an optional parent UUID and checks it exists.
func (h *CategoryHandler) resolveParent(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parentID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, &catalog.ValidationError{Field: "parent_id", Reason: "must be a valid UUID"}
	}

	var parent models.Category
	if err := h.DB.Where("id = ?", parentID).First(&parent).Error; err != nil {
		return nil, &catalog.ReferenceError{Reason: "parent category not found"}
	}
	return &parentID, nil
}
