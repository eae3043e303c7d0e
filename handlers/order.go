package handlers

import (
	"net/http"
	"strconv"
	"time"

	"catalog-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderHandler exposes the dashboard's read-only order views. Orders are
// written by the storefront; this service only lists them.
type OrderHandler struct {
	DB *gorm.DB
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")

	var order models.Order
	if err := h.DB.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetAdminDashboard returns pre-computed stats for the dashboard landing page.
func (h *OrderHandler) GetAdminDashboard(c *gin.Context) {
	var productCount int64
	h.DB.Model(&models.Product{}).Count(&productCount)

	var categoryCount int64
	h.DB.Model(&models.Category{}).Count(&categoryCount)

	var totalOrders int64
	h.DB.Model(&models.Order{}).Count(&totalOrders)

	var pendingOrders int64
	h.DB.Model(&models.Order{}).Where("status = ?", "pending").Count(&pendingOrders)

	var totalRevenue decimal.Decimal
	h.DB.Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue)

	// Recent revenue (last 7 days)
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recentRevenue decimal.Decimal
	h.DB.Model(&models.Order{}).Where("created_at >= ?", sevenDaysAgo).
		Select("COALESCE(SUM(total), 0)").Scan(&recentRevenue)

	var recentOrders []models.Order
	h.DB.Preload("Items").Order("created_at DESC").Limit(10).Find(&recentOrders)

	c.JSON(http.StatusOK, gin.H{
		"total_products":   productCount,
		"total_categories": categoryCount,
		"total_orders":     totalOrders,
		"pending_orders":   pendingOrders,
		"total_revenue":    totalRevenue,
		"recent_revenue":   recentRevenue,
		"recent_orders":    recentOrders,
	})
}
