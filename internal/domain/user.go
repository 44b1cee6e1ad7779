package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	Name      string    `gorm:"not null" json:"name"`              // Display name
	Email     string    `gorm:"uniqueIndex;not null" json:"email"` // Unique email
	Password  string    `gorm:"not null" json:"-"`                 // Hashed password, never serialized
	IsAdmin   bool      `gorm:"default:false" json:"isAdmin"`      // Administrative flag
	CreatedAt time.Time `json:"createdAt"`
}
