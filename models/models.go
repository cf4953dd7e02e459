package models

// All returns every persisted entity in dependency order.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Subcategory{},
		&Product{},
		&Review{},
		&User{},
		&Address{},
		&CartItem{},
		&WishlistItem{},
		&PasswordResetToken{},
		&Order{},
		&OrderItem{},
		&Setting{},
	}
}
