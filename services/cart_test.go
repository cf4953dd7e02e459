package services

import (
	"context"
	"testing"

	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesSameLine(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "cart@example.com", models.RoleUser)

	first, err := svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.scarf.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, "Wool Scarf", first.ProductName)
	assert.Equal(t, 150.0, first.Price)

	merged, err := svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.scarf.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	items, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartAddRespectsStockAndSize(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "size@example.com", models.RoleUser)

	_, err := svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.sweater.ID, Quantity: 6})
	requireKind(t, err, InsufficientStock)

	_, err = svc.AddItem(ctx, user.ID, CartItemInput{ProductID: uuid.New(), Quantity: 1})
	requireKind(t, err, NotFound)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", f.sweater.ID).
		Update("size_options", models.StringList{"M", "L"}).Error)

	_, err = svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.sweater.ID, Quantity: 1})
	requireKind(t, err, InvalidInput)

	m, err := svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.sweater.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)
	l, err := svc.AddItem(ctx, user.ID, CartItemInput{ProductID: f.sweater.ID, Quantity: 1, Size: "L"})
	require.NoError(t, err)
	assert.NotEqual(t, m.ID, l.ID, "different sizes are separate lines")
}

func TestCartUpdateAndRemove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	owner := createUser(t, db, "owner@example.com", models.RoleUser)
	other := createUser(t, db, "other@example.com", models.RoleUser)

	line, err := svc.AddItem(ctx, owner.ID, CartItemInput{ProductID: f.sweater.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, owner.ID, line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateItem(ctx, owner.ID, line.ID, 0)
	requireKind(t, err, InvalidInput)
	_, err = svc.UpdateItem(ctx, owner.ID, line.ID, 9)
	requireKind(t, err, InsufficientStock)
	_, err = svc.UpdateItem(ctx, other.ID, line.ID, 2)
	requireKind(t, err, NotFound)

	err = svc.RemoveItem(ctx, other.ID, line.ID)
	requireKind(t, err, NotFound)
	require.NoError(t, svc.RemoveItem(ctx, owner.ID, line.ID))

	_, err = svc.AddItem(ctx, owner.ID, CartItemInput{ProductID: f.scarf.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, owner.ID))
	items, err := svc.GetCart(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestWishlist(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	f := seedCatalog(t, db)
	user := createUser(t, db, "wish@example.com", models.RoleUser)

	require.NoError(t, svc.AddToWishlist(ctx, user.ID, f.sweater.ID))
	require.NoError(t, svc.AddToWishlist(ctx, user.ID, f.sweater.ID))
	require.NoError(t, svc.AddToWishlist(ctx, user.ID, f.scarf.ID))

	err := svc.AddToWishlist(ctx, user.ID, uuid.New())
	requireKind(t, err, NotFound)

	products, err := svc.Wishlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	require.NoError(t, svc.RemoveFromWishlist(ctx, user.ID, f.sweater.ID))
	products, err = svc.Wishlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, f.scarf.ID, products[0].ID)
}
