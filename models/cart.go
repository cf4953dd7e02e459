package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem holds a weak reference to a product plus a display snapshot.
type CartItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Size        string    `json:"size"`
	ProductName string    `json:"productName"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type WishlistItem struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}
