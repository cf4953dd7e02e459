package services

import (
	"context"
	"testing"

	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategoryDerivesSlug(t *testing.T) {
	svc := NewCatalogService(setupTestDB(t))
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Home & Living", Icon: "home", Order: 2})
	require.NoError(t, err)
	assert.Equal(t, "home-living", cat.Slug)
	assert.Equal(t, 2, cat.SortOrder)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Home Living"})
	requireKind(t, err, Conflict)
	assert.Equal(t, "A category with this slug already exists", err.Error())

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "   "})
	requireKind(t, err, InvalidInput)
}

func TestListCategoriesOrdered(t *testing.T) {
	svc := NewCatalogService(setupTestDB(t))
	ctx := context.Background()

	for _, in := range []CategoryInput{{Name: "Women", Order: 2}, {Name: "Kids", Order: 1}, {Name: "Men", Order: 1}} {
		_, err := svc.CreateCategory(ctx, in)
		require.NoError(t, err)
	}

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"Kids", "Men", "Women"}, []string{cats[0].Name, cats[1].Name, cats[2].Name})
}

func TestUpdateCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)

	other, err := svc.CreateCategory(ctx, CategoryInput{Name: "Women"})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(ctx, f.men.ID, CategoryInput{Name: "Menswear", Icon: "shirt"})
	require.NoError(t, err)
	assert.Equal(t, "menswear", updated.Slug)
	assert.Equal(t, "shirt", updated.Icon)

	_, err = svc.UpdateCategory(ctx, f.men.ID, CategoryInput{Name: "Menswear", Slug: other.Slug})
	requireKind(t, err, Conflict)

	_, err = svc.UpdateCategory(ctx, uuid.New(), CategoryInput{Name: "Nobody"})
	requireKind(t, err, NotFound)
}

func TestDeleteCategoryCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "reviewer@example.com", models.RoleUser)

	_, _, err := svc.AddReview(ctx, user.ID, f.sweater.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: f.scarf.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.WishlistItem{UserID: user.ID, ProductID: f.scarf.ID}).Error)

	require.NoError(t, svc.DeleteCategory(ctx, f.men.ID))

	for _, model := range []interface{}{&models.Category{}, &models.Subcategory{}, &models.Product{}, &models.Review{}, &models.CartItem{}, &models.WishlistItem{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}

	err = svc.DeleteCategory(ctx, f.men.ID)
	requireKind(t, err, NotFound)
}

func TestSubcategoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)

	_, err := svc.CreateSubcategory(ctx, SubcategoryInput{CategoryID: uuid.New(), Name: "Caps"})
	requireKind(t, err, NotFound)

	_, err = svc.CreateSubcategory(ctx, SubcategoryInput{CategoryID: f.men.ID, Name: "Sweaters"})
	requireKind(t, err, Conflict)

	caps, err := svc.CreateSubcategory(ctx, SubcategoryInput{CategoryID: f.men.ID, Name: "Caps"})
	require.NoError(t, err)
	assert.Equal(t, "caps", caps.Slug)

	subs, err := svc.ListSubcategories(ctx, &f.men.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	women, err := svc.CreateCategory(ctx, CategoryInput{Name: "Women"})
	require.NoError(t, err)
	none, err := svc.ListSubcategories(ctx, &women.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	// Moving a subcategory carries its products along.
	moved, err := svc.UpdateSubcategory(ctx, f.sweaters.ID, SubcategoryInput{CategoryID: women.ID, Name: "Sweaters"})
	require.NoError(t, err)
	assert.Equal(t, women.ID, moved.CategoryID)

	view, err := svc.GetProduct(ctx, f.sweater.ID)
	require.NoError(t, err)
	assert.Equal(t, women.ID, view.CategoryID)
	assert.Equal(t, "Women", view.CategoryName)

	require.NoError(t, svc.DeleteSubcategory(ctx, f.sweaters.ID))
	_, err = svc.GetProduct(ctx, f.sweater.ID)
	requireKind(t, err, NotFound)

	all, err := svc.ListSubcategories(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateProductParentConsistency(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)

	women, err := svc.CreateCategory(ctx, CategoryInput{Name: "Women"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Shawl", CategoryID: women.ID, SubcategoryID: f.sweaters.ID})
	requireKind(t, err, InvalidInput)
	assert.Equal(t, "Subcategory does not belong to the selected category", err.Error())

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Shawl", SubcategoryID: uuid.New()})
	requireKind(t, err, NotFound)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Chunky Cardigan",
		SubcategoryID: f.sweaters.ID,
		Price:         899.5,
		Stock:         3,
		SizeType:      models.SizeTypeClothing,
		SizeOptions:   models.StringList{"M", " L ", "M", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, f.men.ID, p.CategoryID, "category derived from subcategory")
	assert.Equal(t, "chunky-cardigan", p.Slug)
	assert.Equal(t, models.StringList{"M", "L"}, p.SizeOptions)
	assert.Equal(t, models.StringList{}, p.Images)
}

func TestCreateProductValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"missing name", ProductInput{SubcategoryID: f.sweaters.ID}},
		{"missing subcategory", ProductInput{Name: "Hat"}},
		{"negative price", ProductInput{Name: "Hat", SubcategoryID: f.sweaters.ID, Price: -1}},
		{"negative stock", ProductInput{Name: "Hat", SubcategoryID: f.sweaters.ID, Stock: -1}},
		{"unknown size type", ProductInput{Name: "Hat", SubcategoryID: f.sweaters.ID, SizeType: "shoes"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.in)
			requireKind(t, err, InvalidInput)
		})
	}
}

func TestUpdateProductKeepsRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "fan@example.com", models.RoleUser)

	_, rating, err := svc.AddReview(ctx, user.ID, f.sweater.ID, ReviewInput{Rating: 5, Comment: "Warm"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, rating)

	updated, err := svc.UpdateProduct(ctx, f.sweater.ID, ProductInput{
		Name: "Cable Knit Sweater", SubcategoryID: f.sweaters.ID, Price: 450, Stock: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Price)
	assert.Equal(t, 8, updated.Stock)
	assert.Equal(t, 5.0, updated.Rating)

	view, err := svc.GetProduct(ctx, f.sweater.ID)
	require.NoError(t, err)
	assert.Len(t, view.Reviews, 1)

	_, err = svc.UpdateProduct(ctx, uuid.New(), ProductInput{Name: "X", SubcategoryID: f.sweaters.ID})
	requireKind(t, err, NotFound)
}

func TestListProductsFilterAndNames(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)

	orphan := models.Product{Name: "Orphan", Slug: "orphan", CategoryID: uuid.New(), SubcategoryID: uuid.New()}
	require.NoError(t, db.Create(&orphan).Error)

	all, err := svc.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := svc.ListProducts(ctx, ProductFilter{SubcategoryID: &f.sweaters.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, v := range filtered {
		assert.Equal(t, "Men", v.CategoryName)
		assert.Equal(t, "Sweaters", v.SubcategoryName)
		assert.NotNil(t, v.Reviews)
	}

	view, err := svc.GetProduct(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, "N/A", view.CategoryName)
	assert.Equal(t, "N/A", view.SubcategoryName)
}

func TestAddReviewAveragesRatings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	a := createUser(t, db, "a@example.com", models.RoleUser)
	b := createUser(t, db, "b@example.com", models.RoleUser)

	_, _, err := svc.AddReview(ctx, a.ID, f.scarf.ID, ReviewInput{Rating: 6})
	requireKind(t, err, InvalidInput)

	_, _, err = svc.AddReview(ctx, a.ID, uuid.New(), ReviewInput{Rating: 3})
	requireKind(t, err, NotFound)

	_, _, err = svc.AddReview(ctx, a.ID, f.scarf.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	review, rating, err := svc.AddReview(ctx, b.ID, f.scarf.ID, ReviewInput{Rating: 5, Comment: "  Soft  "})
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating)
	assert.Equal(t, "Soft", review.Comment)
	assert.Equal(t, b.FullName, review.Name)
}

func TestDeleteProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "reviewer@example.com", models.RoleUser)

	_, _, err := svc.AddReview(ctx, user.ID, f.scarf.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, f.scarf.ID))
	err = svc.DeleteProduct(ctx, f.scarf.ID)
	requireKind(t, err, NotFound)

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.Zero(t, reviews)

	remaining, err := svc.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, f.sweater.ID, remaining[0].ID)
}
