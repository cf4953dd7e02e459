package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SizeType string

const (
	SizeTypeNone     SizeType = "none"
	SizeTypeClothing SizeType = "clothing"
	SizeTypeKids     SizeType = "kids"
)

// Product stock is only changed by the order engine or an admin edit.
type Product struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Slug          string     `gorm:"not null;index" json:"slug"`
	CategoryID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"categoryId"`
	SubcategoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"subcategoryId"`
	Description   string     `gorm:"type:text" json:"description"`
	Price         float64    `gorm:"not null;default:0" json:"price"`
	Stock         int        `gorm:"not null;default:0" json:"stock"`
	Image         string     `json:"image"`
	Images        StringList `gorm:"type:text" json:"images"`
	Rating        float64    `gorm:"default:0" json:"rating"`
	SizeType      SizeType   `gorm:"default:none" json:"sizeType"`
	SizeOptions   StringList `gorm:"type:text" json:"sizeOptions"`
	Reviews       []Review   `gorm:"foreignKey:ProductID" json:"reviews"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.SizeType == "" {
		p.SizeType = SizeTypeNone
	}
	return nil
}

// Review is a customer rating attached to a product.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Name      string    `json:"name"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"date"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
