package handlers

import (
	"log"
	"net/http"
	"strconv"

	"catalog-backend/cache"
	"catalog-backend/dtos"
	"catalog-backend/firebase"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
	Cache   ListCache
}

// orderedImages preloads a product's images in display order.
func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("product_images.position ASC")
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	categoryID := c.Query("category_id")
	search := c.Query("search")

	// Only the plain unfiltered list is worth caching.
	cacheable := categoryID == "" && search == ""

	var products []models.Product
	if cacheable && h.Cache.Get(c.Request.Context(), cache.KeyProducts, &products) {
		c.JSON(http.StatusOK, products)
		return
	}

	query := h.DB.Preload("Category").Preload("Images", orderedImages)

	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	if cacheable {
		h.Cache.Set(c.Request.Context(), cache.KeyProducts, products)
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Category").Preload("Images", orderedImages).Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProductsPaginated(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var products []models.Product
	var total int64

	query := h.DB.Preload("Category").Preload("Images", orderedImages)

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	query.Model(&models.Product{}).Count(&total)
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req dtos.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
		return
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		product.CategoryID = &categoryID
	} else {
		product.CategoryID = nil
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Price = price

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), cache.KeyProducts)
	h.DB.Preload("Category").Preload("Images", orderedImages).First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Images").First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	for _, productImage := range product.Images {
		// Blobs referenced by past orders must survive product deletion.
		var orderImageCount int64
		h.DB.Model(&models.OrderItem{}).
			Where("image_url = ?", productImage.ImageURL).
			Count(&orderImageCount)

		if orderImageCount > 0 {
			log.Printf("Image %s is referenced in %d order(s) - preserving in storage",
				productImage.ImageURL, orderImageCount)
		} else {
			objectPath, err := utils.ExtractObjectPath(productImage.ImageURL)
			if err == nil && objectPath != "" {
				if err := h.Storage.DeleteFile(c.Request.Context(), objectPath); err != nil {
					log.Printf("Failed to delete image %s from storage: %v", productImage.ImageURL, err)
				}
			}
		}

		if err := h.DB.Delete(&productImage).Error; err != nil {
			log.Printf("Failed to delete product image record %s: %v", productImage.ID, err)
		}
	}

	if err := h.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), cache.KeyProducts)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
