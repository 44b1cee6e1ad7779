package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"bookverse/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// AddToCartRequest is the add-line payload
type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartRequest is the overwrite-quantity payload
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// GetCartHandler returns the caller's cart with resolved products. A user
// without a cart gets an empty-items result, never an error.
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		var cart domain.Cart
		if err := db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{"items": []domain.CartItem{}})
			return
		}
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		c.JSON(http.StatusOK, cart)
	}
}

// AddToCartHandler adds a product to the cart, creating the cart lazily.
// Adding a product already present increments its quantity in place
// rather than duplicating the line; the increment is a single atomic
// UPDATE so concurrent adds cannot lose each other.
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == 0 || req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID or quantity"})
			return
		}
		var product domain.Product
		if err := db.First(&product, req.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}

		var cart domain.Cart
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where(domain.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
				return err
			}
			// Merge into an existing line if there is one
			res := tx.Model(&domain.CartItem{}).
				Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return tx.Create(&domain.CartItem{
					CartID:    cart.ID,
					ProductID: req.ProductID,
					Quantity:  req.Quantity,
				}).Error
			}
			return nil
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,
				"product_id": req.ProductID,
				"error":      err.Error(),
			}).Error("Failed to add to cart")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
			return
		}

		var item domain.CartItem
		if err := db.Preload("Product").
			Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).
			First(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Item not found in cart after update"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "item": item})
	}
}

// UpdateCartHandler overwrites (does not accumulate) a line's quantity
func UpdateCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		productID, err := strconv.Atoi(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID"})
			return
		}
		var req UpdateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
			return
		}
		var cart domain.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			return
		}
		res := db.Model(&domain.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			UpdateColumn("quantity", req.Quantity)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating cart"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item not in cart"})
			return
		}
		var item domain.CartItem
		if err := db.Preload("Product").
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			First(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "item": item})
	}
}

// RemoveFromCartHandler removes a line. Removing an absent line is not an
// error; the remaining items are returned either way.
func RemoveFromCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		productID, err := strconv.Atoi(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID"})
			return
		}
		var cart domain.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{"message": "Item removed", "cart": gin.H{"items": []domain.CartItem{}}})
			return
		}
		if err := db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			Delete(&domain.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error removing item"})
			return
		}
		if err := db.Preload("Items.Product").First(&cart, cart.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error removing item"})
			return
		}
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed", "cart": cart})
	}
}

// ClearCartHandler deletes all lines; idempotent on an absent or already
// empty cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		var cart domain.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "cart": gin.H{"items": []domain.CartItem{}}})
			return
		}
		if err := db.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error clearing cart"})
			return
		}
		cart.Items = []domain.CartItem{}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "cart": cart})
	}
}
