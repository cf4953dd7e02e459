package services

import (
	"context"
	"fmt"
	"strings"

	"woolcrafts-backend/models"
	"woolcrafts-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const missingName = "N/A"

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type CategoryInput struct {
	Name  string `json:"name" binding:"required"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
	Order int    `json:"order"`
}

type SubcategoryInput struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name" binding:"required"`
	Slug       string    `json:"slug"`
	Order      int       `json:"order"`
}

type ProductInput struct {
	Name          string            `json:"name" binding:"required"`
	Slug          string            `json:"slug"`
	CategoryID    uuid.UUID         `json:"categoryId"`
	SubcategoryID uuid.UUID         `json:"subcategoryId"`
	Description   string            `json:"description"`
	Price         float64           `json:"price" binding:"gte=0"`
	Stock         int               `json:"stock" binding:"gte=0"`
	Image         string            `json:"image"`
	Images        models.StringList `json:"images"`
	SizeType      models.SizeType   `json:"sizeType"`
	SizeOptions   models.StringList `json:"sizeOptions"`
}

// ProductView is a product with the display names of its parents.
type ProductView struct {
	models.Product
	CategoryName    string `json:"categoryName"`
	SubcategoryName string `json:"subcategoryName"`
}

type ProductFilter struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
}

func slugOrDerived(slug, name string) string {
	if s := utils.Slugify(slug); s != "" {
		return s
	}
	return utils.Slugify(name)
}

// ---- categories ----

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "Category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(InvalidInput, "Category name is required")
	}
	category := models.Category{
		Name:      name,
		Slug:      slugOrDerived(in.Slug, name),
		Icon:      in.Icon,
		SortOrder: in.Order,
	}
	if category.Slug == "" {
		return nil, newError(InvalidInput, "Category name must contain letters or digits")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategorySlugFree(tx, category.Slug, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		return nil, translateWriteError(err, "create category", "A category with this slug already exists")
	}
	return &category, nil
}

// UpdateCategory replaces the editable fields. An omitted slug is regenerated from the name.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(InvalidInput, "Category name is required")
	}
	slug := slugOrDerived(in.Slug, name)
	if slug == "" {
		return nil, newError(InvalidInput, "Category name must contain letters or digits")
	}

	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		if err := ensureCategorySlugFree(tx, slug, id); err != nil {
			return err
		}
		category.Name = name
		category.Slug = slug
		category.Icon = in.Icon
		category.SortOrder = in.Order
		return tx.Save(&category).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "Category not found")
		}
		return nil, translateWriteError(err, "update category", "A category with this slug already exists")
	}
	return &category, nil
}

// DeleteCategory removes the category, its subcategories and every product that
// references either of them.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(NotFound, "Category not found")
		}

		subIDs := tx.Model(&models.Subcategory{}).Select("id").Where("category_id = ?", id)
		if err := deleteProducts(tx, tx.Where("category_id = ? OR subcategory_id IN (?)", id, subIDs)); err != nil {
			return err
		}
		return tx.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func ensureCategorySlugFree(tx *gorm.DB, slug string, self uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("slug = ? AND id <> ?", slug, self).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newError(Conflict, "A category with this slug already exists")
	}
	return nil
}

// ---- subcategories ----

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	q := s.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var subs []models.Subcategory
	if err := q.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return subs, nil
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, in SubcategoryInput) (*models.Subcategory, error) {
	sub, err := buildSubcategory(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoryExists(tx, sub.CategoryID); err != nil {
			return err
		}
		if err := ensureSubcategorySlugFree(tx, sub.CategoryID, sub.Slug, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		return nil, translateWriteError(err, "create subcategory", "A subcategory with this slug already exists in the category")
	}
	return sub, nil
}

// UpdateSubcategory replaces the editable fields. Moving a subcategory to another
// category moves its products along with it.
func (s *CatalogService) UpdateSubcategory(ctx context.Context, id uuid.UUID, in SubcategoryInput) (*models.Subcategory, error) {
	next, err := buildSubcategory(in)
	if err != nil {
		return nil, err
	}

	var sub models.Subcategory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return newError(NotFound, "Subcategory not found")
			}
			return err
		}
		if err := ensureCategoryExists(tx, next.CategoryID); err != nil {
			return err
		}
		if err := ensureSubcategorySlugFree(tx, next.CategoryID, next.Slug, id); err != nil {
			return err
		}

		moved := sub.CategoryID != next.CategoryID
		sub.Name = next.Name
		sub.Slug = next.Slug
		sub.CategoryID = next.CategoryID
		sub.SortOrder = next.SortOrder
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		if moved {
			return tx.Model(&models.Product{}).
				Where("subcategory_id = ?", id).
				Update("category_id", next.CategoryID).Error
		}
		return nil
	})
	if err != nil {
		return nil, translateWriteError(err, "update subcategory", "A subcategory with this slug already exists in the category")
	}
	return &sub, nil
}

func (s *CatalogService) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Subcategory{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(NotFound, "Subcategory not found")
		}
		return deleteProducts(tx, tx.Where("subcategory_id = ?", id))
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return err
		}
		return fmt.Errorf("delete subcategory: %w", err)
	}
	return nil
}

func buildSubcategory(in SubcategoryInput) (*models.Subcategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(InvalidInput, "Subcategory name is required")
	}
	if in.CategoryID == uuid.Nil {
		return nil, newError(InvalidInput, "Category is required")
	}
	slug := slugOrDerived(in.Slug, name)
	if slug == "" {
		return nil, newError(InvalidInput, "Subcategory name must contain letters or digits")
	}
	return &models.Subcategory{
		Name:       name,
		Slug:       slug,
		CategoryID: in.CategoryID,
		SortOrder:  in.Order,
	}, nil
}

func ensureCategoryExists(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return newError(NotFound, "Category not found")
	}
	return nil
}

func ensureSubcategorySlugFree(tx *gorm.DB, categoryID uuid.UUID, slug string, self uuid.UUID) error {
	var count int64
	err := tx.Model(&models.Subcategory{}).
		Where("category_id = ? AND slug = ? AND id <> ?", categoryID, slug, self).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newError(Conflict, "A subcategory with this slug already exists in the category")
	}
	return nil
}

// ---- products ----

func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]ProductView, error) {
	q := s.db.WithContext(ctx).Preload("Reviews").Order("created_at DESC")
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SubcategoryID != nil {
		q = q.Where("subcategory_id = ?", *filter.SubcategoryID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.enrich(ctx, products)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Reviews").First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "Product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	views, err := s.enrich(ctx, []models.Product{product})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product, err := buildProduct(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveParents(tx, product); err != nil {
			return err
		}
		return tx.Create(product).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the editable fields. Rating and reviews are left untouched.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	next, err := buildProduct(in)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return newError(NotFound, "Product not found")
			}
			return err
		}
		if err := resolveParents(tx, next); err != nil {
			return err
		}
		product.Name = next.Name
		product.Slug = next.Slug
		product.CategoryID = next.CategoryID
		product.SubcategoryID = next.SubcategoryID
		product.Description = next.Description
		product.Price = next.Price
		product.Stock = next.Stock
		product.Image = next.Image
		product.Images = next.Images
		product.SizeType = next.SizeType
		product.SizeOptions = next.SizeOptions
		return tx.Omit("Reviews").Save(&product).Error
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return newError(NotFound, "Product not found")
		}
		return deleteProducts(tx, tx.Where("id = ?", id))
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func buildProduct(in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(InvalidInput, "Product name is required")
	}
	if in.SubcategoryID == uuid.Nil {
		return nil, newError(InvalidInput, "Subcategory is required")
	}
	if in.Price < 0 {
		return nil, newError(InvalidInput, "Price cannot be negative")
	}
	if in.Stock < 0 {
		return nil, newError(InvalidInput, "Stock cannot be negative")
	}

	sizeType := in.SizeType
	switch sizeType {
	case "":
		sizeType = models.SizeTypeNone
	case models.SizeTypeNone, models.SizeTypeClothing, models.SizeTypeKids:
	default:
		return nil, newError(InvalidInput, "Invalid size type %q", string(in.SizeType))
	}

	images := in.Images
	if images == nil {
		images = models.StringList{}
	}
	sizes := models.StringList{}
	for _, opt := range in.SizeOptions {
		if opt = strings.TrimSpace(opt); opt != "" && !sizes.Contains(opt) {
			sizes = append(sizes, opt)
		}
	}

	return &models.Product{
		Name:          name,
		Slug:          slugOrDerived(in.Slug, name),
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Description:   in.Description,
		Price:         in.Price,
		Stock:         in.Stock,
		Image:         in.Image,
		Images:        images,
		SizeType:      sizeType,
		SizeOptions:   sizes,
	}, nil
}

// resolveParents enforces subcategory.categoryId == product.categoryId, deriving
// the category when the caller left it empty.
func resolveParents(tx *gorm.DB, p *models.Product) error {
	var sub models.Subcategory
	if err := tx.First(&sub, "id = ?", p.SubcategoryID).Error; err != nil {
		if isNotFound(err) {
			return newError(NotFound, "Subcategory not found")
		}
		return err
	}
	if p.CategoryID == uuid.Nil {
		p.CategoryID = sub.CategoryID
	}
	if p.CategoryID != sub.CategoryID {
		return newError(InvalidInput, "Subcategory does not belong to the selected category")
	}
	return ensureCategoryExists(tx, p.CategoryID)
}

// deleteProducts removes the matched products and the rows that hang off them.
func deleteProducts(tx *gorm.DB, where *gorm.DB) error {
	ids := tx.Model(&models.Product{}).Select("id").Where(where)
	if err := tx.Where("product_id IN (?)", ids).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id IN (?)", ids).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id IN (?)", ids).Delete(&models.WishlistItem{}).Error; err != nil {
		return err
	}
	return tx.Where(where).Delete(&models.Product{}).Error
}

func (s *CatalogService) enrich(ctx context.Context, products []models.Product) ([]ProductView, error) {
	catIDs := make([]uuid.UUID, 0, len(products))
	subIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		catIDs = append(catIDs, p.CategoryID)
		subIDs = append(subIDs, p.SubcategoryID)
	}

	catNames := map[uuid.UUID]string{}
	subNames := map[uuid.UUID]string{}
	if len(products) > 0 {
		var cats []models.Category
		if err := s.db.WithContext(ctx).Where("id IN ?", catIDs).Find(&cats).Error; err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		for _, c := range cats {
			catNames[c.ID] = c.Name
		}
		var subs []models.Subcategory
		if err := s.db.WithContext(ctx).Where("id IN ?", subIDs).Find(&subs).Error; err != nil {
			return nil, fmt.Errorf("load subcategories: %w", err)
		}
		for _, sc := range subs {
			subNames[sc.ID] = sc.Name
		}
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		if p.Reviews == nil {
			p.Reviews = []models.Review{}
		}
		views[i] = ProductView{Product: p, CategoryName: missingName, SubcategoryName: missingName}
		if n, ok := catNames[p.CategoryID]; ok {
			views[i].CategoryName = n
		}
		if n, ok := subNames[p.SubcategoryID]; ok {
			views[i].SubcategoryName = n
		}
	}
	return views, nil
}

// translateWriteError keeps typed errors, maps unique violations to Conflict and
// wraps the rest.
func translateWriteError(err error, op, conflictMsg string) error {
	if KindOf(err) != ServerError {
		return err
	}
	if isDuplicateKey(err) {
		return newError(Conflict, "%s", conflictMsg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
