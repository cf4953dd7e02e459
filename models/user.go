package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   string     `gorm:"not null" json:"fullName"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone      string     `json:"phone"`
	Password   string     `gorm:"not null" json:"-"`
	Role       Role       `gorm:"default:user" json:"role"`
	IsVerified bool       `gorm:"default:false" json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	Addresses  []Address  `gorm:"foreignKey:UserID" json:"address"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is one entry of a user's saved address book.
type Address struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Street  string    `json:"street"`
	City    string    `json:"city"`
	State   string    `json:"state"`
	Pincode string    `json:"pincode"`
	Country string    `gorm:"default:India" json:"country"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return nil
}

const DefaultCountry = "India"
