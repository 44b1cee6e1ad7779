package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"bookverse/internal/domain" // Importing domain models
	"bookverse/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const productCachePrefix = "products:"

// ProductRequest is the admin create/update payload
type ProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
	Category    string  `json:"category"`
}

// CategoryResponse pairs a category with one sample image
type CategoryResponse struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// ListProductsHandler returns the catalog with optional name search,
// category filter and pagination, cached in Redis per query.
func ListProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("search")
		category := c.Query("category")
		page := 1
		limit := 10
		if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
			page = v
		}
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
			limit = v
		}

		ctx := context.Background()
		cacheKey := productCachePrefix + "list:search=" + search + ":category=" + category +
			":page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit)
		var cached struct {
			Products []domain.Product `json:"products"`
			Total    int64            `json:"total"`
			Page     int              `json:"page"`
			Limit    int              `json:"limit"`
		}
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"products": cached.Products,
				"total":    cached.Total,
				"page":     cached.Page,
				"limit":    cached.Limit,
				"cached":   true,
			})
			return
		}

		query := db.Model(&domain.Product{})
		if category != "" {
			query = query.Where("category = ?", category)
		}
		if search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		var products []domain.Product
		if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		resp := gin.H{"products": products, "total": total, "page": page, "limit": limit, "cached": false}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}

// GetCategoriesHandler returns the distinct categories with one sample
// image each
func GetCategoriesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := productCachePrefix + "categories"
		var cached []CategoryResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}

		var categories []CategoryResponse
		if err := db.Model(&domain.Product{}).
			Select("category AS name, MIN(image_url) AS image_url").
			Group("category").
			Scan(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		if categories == nil {
			categories = []CategoryResponse{}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, categories, 60*time.Second)
		c.JSON(http.StatusOK, categories)
	}
}

// GetProductHandler returns a single product by id
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var product domain.Product
		if err := db.First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// CreateProductHandler adds a product (admin only, enforced at routing)
func CreateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Name == "" || req.Category == "" || req.ImageURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		if req.Price <= 0 || req.Discount < 0 || req.Discount > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price or discount"})
			return
		}
		product := domain.Product{
			Name:        req.Name,
			Price:       req.Price,
			Rating:      req.Rating,
			ImageURL:    req.ImageURL,
			Description: req.Description,
			Discount:    req.Discount,
			Category:    req.Category,
		}
		if err := db.Create(&product).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to create product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, productCachePrefix)
		c.JSON(http.StatusCreated, gin.H{"message": "Product added successfully", "product": product})
	}
}

// UpdateProductHandler updates a product (admin only, enforced at routing)
func UpdateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var product domain.Product
		if err := db.First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Price < 0 || req.Discount < 0 || req.Discount > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price or discount"})
			return
		}
		updates := map[string]any{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Price > 0 {
			updates["price"] = req.Price
		}
		if req.ImageURL != "" {
			updates["image_url"] = req.ImageURL
		}
		if req.Category != "" {
			updates["category"] = req.Category
		}
		if req.Description != "" {
			updates["description"] = req.Description
		}
		updates["discount"] = req.Discount
		updates["rating"] = req.Rating
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, productCachePrefix)
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProductHandler removes a product (admin only, enforced at routing)
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		res := db.Delete(&domain.Product{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, productCachePrefix)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
