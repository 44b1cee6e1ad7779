package api

import (
	"context"  // Context for Redis and Mongo operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"bookverse/internal/audit"      // Order audit trail
	"bookverse/internal/domain"     // Importing domain models
	"bookverse/internal/middleware" // Session identity helpers
	"bookverse/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Order reference numbers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm" // GORM ORM library
)

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	PaymentMethod string         `json:"paymentMethod"`
	Address       domain.Address `json:"address" binding:"required"`
}

// UpdateStatusRequest carries the target fulfillment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ordersCacheKey is the per-user cache key for the order list
func ordersCacheKey(userID uint) string {
	return "orders:user:" + strconv.Itoa(int(userID))
}

// computeTotals recomputes pricing for every cart line from the current
// product records, never from client input, and returns the snapshot
// lines with the accumulated totals.
func computeTotals(items []domain.CartItem) (lines []domain.OrderItem, totalAmount, totalDiscount float64) {
	for _, item := range items {
		p := item.Product
		qty := float64(item.Quantity)
		lineDiscount := p.Price * (p.Discount / 100) * qty
		totalDiscount += lineDiscount
		totalAmount += p.Price*qty - lineDiscount

		lines = append(lines, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			Discount:  p.Discount,
			Quantity:  item.Quantity,
		})
	}
	return lines, totalAmount, totalDiscount
}

// PlaceOrderHandler snapshots the caller's cart into an order. The order
// insert and the cart delete run in one transaction: if either fails the
// cart is left untouched and no order exists.
func PlaceOrderHandler(db *gorm.DB, rdb *redis.Client, auditor *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payment method or address"})
			return
		}
		if req.PaymentMethod != domain.PaymentCOD && req.PaymentMethod != domain.PaymentOnline {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payment method or address"})
			return
		}

		// Empty-cart check happens before any write
		var cart domain.Cart
		if err := db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil || len(cart.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
			return
		}

		lines, totalAmount, totalDiscount := computeTotals(cart.Items)
		order := domain.Order{
			Reference:       uuid.NewString(),
			UserID:          userID,
			Items:           lines,
			TotalAmount:     totalAmount,
			DiscountApplied: totalDiscount,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   domain.PaymentPending,
			Status:          domain.StatusPending,
			Address:         req.Address,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err // Rollback: cart stays untouched
			}
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&cart).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to place order")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to place order"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"user_id":      userID,
			"order_id":     order.ID,
			"reference":    order.Reference,
			"total_amount": order.TotalAmount,
			"discount":     order.DiscountApplied,
		}).Info("Order placed")

		ctx := context.Background()
		auditor.Record(ctx, "order_placed", order.ID, userID, bson.M{
			"reference":    order.Reference,
			"total_amount": order.TotalAmount,
			"items":        len(order.Items),
		})
		_ = utils.DeleteCache(ctx, rdb, ordersCacheKey(userID))

		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// GetUserOrdersHandler returns the caller's orders newest-first
func GetUserOrdersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		ctx := context.Background()
		cacheKey := ordersCacheKey(userID)

		var cached []domain.Order
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}

		orders := []domain.Order{}
		if err := db.Preload("Items").
			Where("user_id = ?", userID).
			Order("created_at desc, id desc").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, orders, 60*time.Second)
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderHandler returns one order. Only the owner (or an admin) may
// read it.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
			return
		}
		var order domain.Order
		if err := db.Preload("Items").First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		if order.UserID != user.ID && !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatusHandler moves an order through the fulfillment state
// machine (admin only, enforced at routing). Transitions outside the
// allowed table are rejected.
func UpdateOrderStatusHandler(db *gorm.DB, rdb *redis.Client, auditor *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !domain.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
			return
		}
		var order domain.Order
		if err := db.First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		if !domain.CanTransition(order.Status, req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot change status from " + order.Status + " to " + req.Status})
			return
		}
		previous := order.Status
		if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order status"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"from":     previous,
			"to":       req.Status,
		}).Info("Order status updated")

		ctx := context.Background()
		auditor.Record(ctx, "status_updated", order.ID, c.GetUint("userID"), bson.M{
			"from": previous,
			"to":   req.Status,
		})
		_ = utils.DeleteCache(ctx, rdb, ordersCacheKey(order.UserID))

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
	}
}

// CancelOrderHandler cancels a pending order. Only the owner may cancel,
// and only while the order is still Pending.
func CancelOrderHandler(db *gorm.DB, rdb *redis.Client, auditor *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
			return
		}
		var order domain.Order
		if err := db.First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		if order.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		if order.Status != domain.StatusPending {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Only pending orders can be cancelled"})
			return
		}
		if err := db.Model(&order).Update("status", domain.StatusCancelled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to cancel order"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"user_id":  user.ID,
		}).Info("Order cancelled")

		ctx := context.Background()
		auditor.Record(ctx, "order_cancelled", order.ID, user.ID, nil)
		_ = utils.DeleteCache(ctx, rdb, ordersCacheKey(order.UserID))

		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
	}
}

// OrderAuditHandler lists an order's audit trail, newest first (admin
// only, enforced at routing). Returns an empty list when the trail is
// not configured.
func OrderAuditHandler(auditor *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID"})
			return
		}
		entries, err := auditor.ForOrder(c.Request.Context(), uint(id), 50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch audit trail"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}
