package domain

// Cart Model: at most one live cart per user, created lazily on first add
// and deleted when an order is placed.
type Cart struct {
	ID     uint       `gorm:"primaryKey" json:"id"`      // Primary key
	UserID uint       `gorm:"uniqueIndex" json:"userId"` // One cart per user
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem Model: one (product, quantity) line within a cart
type CartItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	CartID    uint    `gorm:"uniqueIndex:idx_cart_product" json:"-"`                  // Owning cart
	ProductID uint    `gorm:"uniqueIndex:idx_cart_product;not null" json:"productId"` // Live product reference
	Quantity  int     `gorm:"not null" json:"quantity"`                               // Always >= 1
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`                    // Resolved for responses
}
