package services

import (
	"context"
	"fmt"
	"strings"

	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview stores a review and recomputes the product's mean rating.
func (s *CatalogService) AddReview(ctx context.Context, userID, productID uuid.UUID, in ReviewInput) (*models.Review, float64, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, 0, newError(InvalidInput, "Rating must be between 1 and 5")
	}

	var (
		review models.Review
		rating float64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, productID); err != nil {
			return err
		}
		var user models.User
		if err := tx.Select("id", "full_name").First(&user, "id = ?", userID).Error; err != nil {
			if isNotFound(err) {
				return newError(NotFound, "User not found")
			}
			return err
		}

		review = models.Review{
			ProductID: productID,
			UserID:    userID,
			Name:      user.FullName,
			Rating:    in.Rating,
			Comment:   strings.TrimSpace(in.Comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var ratings []int
		if err := tx.Model(&models.Review{}).Where("product_id = ?", productID).Pluck("rating", &ratings).Error; err != nil {
			return err
		}
		rating = averageRating(ratings)
		return tx.Model(&models.Product{}).Where("id = ?", productID).Update("rating", rating).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("add review: %w", err)
	}
	return &review, rating, nil
}
