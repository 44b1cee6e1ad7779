package domain

import "time"

// Fulfillment statuses
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// Payment methods
const (
	PaymentCOD    = "COD"    // Cash on delivery
	PaymentOnline = "Online" // Stored enum only, no gateway integration
)

// Payment statuses
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
	PaymentFailed  = "Failed"
)

// statusTransitions is the allowed fulfillment state machine.
// Delivered and Cancelled are terminal.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// ValidStatus reports whether s is a known fulfillment status
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is the delivery address embedded in an order; all fields required
type Address struct {
	Street     string `gorm:"not null" json:"street" binding:"required"`
	City       string `gorm:"not null" json:"city" binding:"required"`
	State      string `gorm:"not null" json:"state" binding:"required"`
	PostalCode string `gorm:"not null" json:"postalCode" binding:"required"`
	Country    string `gorm:"not null" json:"country" binding:"required"`
}

// Order Model: an immutable snapshot of the cart at checkout time.
// Mutated only by status transitions, never deleted.
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Reference       string      `gorm:"uniqueIndex;size:36" json:"reference"` // Human-facing order reference
	UserID          uint        `gorm:"index;not null" json:"userId"`         // Owning user
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     float64     `gorm:"not null" json:"totalAmount"`      // Net total after discounts
	DiscountApplied float64     `gorm:"default:0" json:"discountApplied"` // Total discount across lines
	PaymentMethod   string      `gorm:"not null" json:"paymentMethod"`    // COD or Online
	PaymentStatus   string      `gorm:"default:Pending" json:"paymentStatus"`
	Status          string      `gorm:"default:Pending" json:"status"` // Fulfillment status
	Address         Address     `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem Model: product fields captured as they existed at checkout,
// so later product edits never alter historical orders.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"-"`
	ProductID uint    `gorm:"not null" json:"productId"`
	Name      string  `gorm:"not null" json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `gorm:"not null" json:"price"`     // Unit price at checkout
	Discount  float64 `gorm:"default:0" json:"discount"` // Percentage at checkout
	Quantity  int     `gorm:"not null" json:"quantity"`
}
