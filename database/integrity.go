package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue is one referential-integrity violation found by Check.
type Issue struct {
	Kind     string    `json:"kind"`
	EntityID uuid.UUID `json:"entityId"`
	Detail   string    `json:"detail"`
}

const (
	IssueOrphanSubcategory    = "orphan_subcategory"
	IssueProductNoCategory    = "product_missing_category"
	IssueProductNoSubcategory = "product_missing_subcategory"
	IssueProductMismatch      = "product_category_mismatch"
	IssueDuplicateProductSlug = "duplicate_product_slug"
)

// Check reports catalog drift without modifying anything.
func Check(db *gorm.DB) ([]Issue, error) {
	var issues []Issue

	type row struct {
		ID     uuid.UUID
		Name   string
		Detail string
	}

	var orphans []row
	if err := db.Raw(`
		SELECT s.id, s.name, CAST(s.category_id AS TEXT) AS detail
		  FROM subcategories s
		  LEFT JOIN categories c ON c.id = s.category_id
		 WHERE c.id IS NULL`).Scan(&orphans).Error; err != nil {
		return nil, fmt.Errorf("check subcategories: %w", err)
	}
	for _, o := range orphans {
		issues = append(issues, Issue{IssueOrphanSubcategory, o.ID,
			fmt.Sprintf("subcategory %q references missing category %s", o.Name, o.Detail)})
	}

	var noCategory []row
	if err := db.Raw(`
		SELECT p.id, p.name, CAST(p.category_id AS TEXT) AS detail
		  FROM products p
		  LEFT JOIN categories c ON c.id = p.category_id
		 WHERE c.id IS NULL`).Scan(&noCategory).Error; err != nil {
		return nil, fmt.Errorf("check product categories: %w", err)
	}
	for _, p := range noCategory {
		issues = append(issues, Issue{IssueProductNoCategory, p.ID,
			fmt.Sprintf("product %q references missing category %s", p.Name, p.Detail)})
	}

	var noSubcategory []row
	if err := db.Raw(`
		SELECT p.id, p.name, CAST(p.subcategory_id AS TEXT) AS detail
		  FROM products p
		  LEFT JOIN subcategories s ON s.id = p.subcategory_id
		 WHERE s.id IS NULL`).Scan(&noSubcategory).Error; err != nil {
		return nil, fmt.Errorf("check product subcategories: %w", err)
	}
	for _, p := range noSubcategory {
		issues = append(issues, Issue{IssueProductNoSubcategory, p.ID,
			fmt.Sprintf("product %q references missing subcategory %s", p.Name, p.Detail)})
	}

	var mismatched []row
	if err := db.Raw(`
		SELECT p.id, p.name, s.name AS detail
		  FROM products p
		  JOIN subcategories s ON s.id = p.subcategory_id
		 WHERE s.category_id <> p.category_id`).Scan(&mismatched).Error; err != nil {
		return nil, fmt.Errorf("check product consistency: %w", err)
	}
	for _, p := range mismatched {
		issues = append(issues, Issue{IssueProductMismatch, p.ID,
			fmt.Sprintf("product %q is filed under subcategory %q of another category", p.Name, p.Detail)})
	}

	var dupSlugs []struct {
		SubcategoryID uuid.UUID
		Slug          string
		N             int
	}
	if err := db.Raw(`
		SELECT subcategory_id, slug, COUNT(*) AS n
		  FROM products
		 GROUP BY subcategory_id, slug
		HAVING COUNT(*) > 1`).Scan(&dupSlugs).Error; err != nil {
		return nil, fmt.Errorf("check product slugs: %w", err)
	}
	for _, d := range dupSlugs {
		issues = append(issues, Issue{IssueDuplicateProductSlug, d.SubcategoryID,
			fmt.Sprintf("%d products share slug %q", d.N, d.Slug)})
	}

	return issues, nil
}
