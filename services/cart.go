package services

import (
	"context"
	"fmt"
	"strings"

	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

type CartItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return items, nil
}

// AddItem merges into an existing line with the same product and size. The line
// snapshot (name, price, image) is refreshed from the product on every add.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, in CartItemInput) (*models.CartItem, error) {
	if in.ProductID == uuid.Nil {
		return nil, newError(InvalidInput, "Product is required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, newError(InvalidInput, "Quantity must be at least 1")
	}

	var line models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, in.ProductID)
		if err != nil {
			return err
		}
		size, err := checkSize(product, in.Size)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND product_id = ? AND size = ?", userID, product.ID, size).First(&line).Error
		switch {
		case err == nil:
		case isNotFound(err):
			line = models.CartItem{UserID: userID, ProductID: product.ID, Size: size}
		default:
			return err
		}

		qty := line.Quantity + in.Quantity
		if qty > product.Stock {
			return stockError(product.Stock, product.Name)
		}
		line.Quantity = qty
		line.Price = product.Price
		line.ProductName = product.Name
		line.Image = product.Image
		return tx.Save(&line).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return &line, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, newError(InvalidInput, "Quantity must be at least 1")
	}

	var line models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", itemID, userID).First(&line).Error; err != nil {
			if isNotFound(err) {
				return newError(NotFound, "Cart item not found")
			}
			return err
		}
		product, err := findProduct(tx, line.ProductID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return stockError(product.Stock, product.Name)
		}
		line.Quantity = quantity
		line.Price = product.Price
		return tx.Save(&line).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return &line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(NotFound, "Cart item not found")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ---- wishlist ----

// Wishlist returns the wished products, most recently added first.
func (s *CartService) Wishlist(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id").
		Where("wishlist_items.user_id = ?", userID).
		Order("wishlist_items.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return products, nil
}

// AddToWishlist is idempotent.
func (s *CartService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, productID); err != nil {
			return err
		}
		entry := models.WishlistItem{UserID: userID, ProductID: productID}
		return tx.Where(models.WishlistItem{UserID: userID, ProductID: productID}).FirstOrCreate(&entry).Error
	})
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func findProduct(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "Product not found")
		}
		return nil, err
	}
	return &product, nil
}

func checkSize(p *models.Product, size string) (string, error) {
	size = strings.TrimSpace(size)
	if len(p.SizeOptions) == 0 {
		return "", nil
	}
	if !p.SizeOptions.Contains(size) {
		return "", newError(InvalidInput, "Please select a valid size for %q", p.Name)
	}
	return size, nil
}
