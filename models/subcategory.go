package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subcategory belongs to exactly one Category. Its slug is unique within that category.
type Subcategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Slug       string    `gorm:"not null;uniqueIndex:idx_subcategories_category_slug" json:"slug"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_subcategories_category_slug" json:"categoryId"`
	SortOrder  int       `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
