package api

import (
	"net/http" // HTTP status codes

	"bookverse/internal/audit"      // Order audit trail
	"bookverse/internal/config"     // Application configuration
	"bookverse/internal/middleware" // Session and admin middleware

	"github.com/gin-contrib/cors"  // Cross-origin policy
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter builds the full route table. Kept separate from main so the
// handler tests can run against the same wiring.
func NewRouter(db *gorm.DB, rdb *redis.Client, auditor *audit.Recorder, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Credentialed cookies require an explicit origin, never a wildcard
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	session := middleware.SessionMiddleware(db, cfg.JWTSecret)
	adminOnly := middleware.AdminOnlyMiddleware()

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", RegisterHandler(db))
		auth.POST("/login", LoginHandler(db, cfg))
		auth.GET("/me", session, MeHandler())
		auth.POST("/logout", session, LogoutHandler(cfg))
	}

	products := r.Group("/api/products")
	{
		products.GET("", ListProductsHandler(db, rdb))
		products.GET("/categories", GetCategoriesHandler(db, rdb))
		products.GET("/:id", GetProductHandler(db))
		products.POST("", session, adminOnly, CreateProductHandler(db, rdb))
		products.PUT("/:id", session, adminOnly, UpdateProductHandler(db, rdb))
		products.DELETE("/:id", session, adminOnly, DeleteProductHandler(db, rdb))
	}

	cart := r.Group("/api/cart", session)
	{
		cart.GET("", GetCartHandler(db))
		cart.POST("/add", AddToCartHandler(db))
		cart.PUT("/update/:productId", UpdateCartHandler(db))
		cart.DELETE("/remove/:productId", RemoveFromCartHandler(db))
		cart.DELETE("/clear", ClearCartHandler(db))
	}

	orders := r.Group("/api/orders", session)
	{
		orders.POST("/place", PlaceOrderHandler(db, rdb, auditor))
		orders.GET("", GetUserOrdersHandler(db, rdb))
		orders.GET("/:id", GetOrderHandler(db))
		orders.PUT("/:id/status", adminOnly, UpdateOrderStatusHandler(db, rdb, auditor))
		orders.PUT("/:id/cancel", CancelOrderHandler(db, rdb, auditor))
	}

	admin := r.Group("/api/admin", session, adminOnly)
	{
		admin.GET("/orders/:id/audit", OrderAuditHandler(auditor))
	}

	return r
}
