package domain

import "time"

// Product Model
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`           // Primary key
	Name        string    `gorm:"not null" json:"name"`           // Product name
	Price       float64   `gorm:"not null" json:"price"`          // Unit price
	Rating      float64   `gorm:"default:0" json:"rating"`        // Average rating
	ImageURL    string    `gorm:"not null" json:"imageUrl"`       // Cover image
	Description string    `json:"description"`                    // Long description
	Discount    float64   `gorm:"default:0" json:"discount"`      // Percentage discount (0-100)
	Category    string    `gorm:"not null;index" json:"category"` // e.g. "Fiction", "Science"
	CreatedAt   time.Time `json:"createdAt"`
}
