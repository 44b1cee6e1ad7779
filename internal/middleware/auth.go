package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"bookverse/internal/domain" // Importing domain models
	"bookverse/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/golang-jwt/jwt/v5" // JWT errors
	"gorm.io/gorm"                 // GORM ORM library
)

// AuthCookieName is the session cookie set at login
const AuthCookieName = "auth_token"

// SessionMiddleware verifies the session credential and resolves it to a
// user. The cookie is checked first; an Authorization Bearer header is
// accepted as a fallback for non-browser clients. Missing, expired and
// malformed credentials each get their own message.
func SessionMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(AuthCookieName)
		if tokenStr == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized! Please log in."})
			return
		}

		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			// Expiry is enforced here by the signing library's timestamp check
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired. Please log in again."})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token. Please log in again."})
			return
		}

		var user domain.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			// Account deleted after the token was issued
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}

		c.Set("userID", user.ID)    // Store userID in context
		c.Set("currentUser", &user) // Resolved identity, password excluded via json tag
		c.Next()
	}
}

// CurrentUser returns the identity resolved by SessionMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get("currentUser")
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
