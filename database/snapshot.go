package database

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is a full copy of the store, keyed by table. Fields hidden from the
// HTTP API (password hashes, owner ids) are carried by the row types below.
type Snapshot struct {
	ExportedAt    time.Time            `json:"exportedAt"`
	Categories    []models.Category    `json:"categories"`
	Subcategories []models.Subcategory `json:"subcategories"`
	Products      []models.Product     `json:"products"`
	Reviews       []models.Review      `json:"reviews"`
	Users         []userRow            `json:"users"`
	Addresses     []addressRow         `json:"addresses"`
	CartItems     []cartItemRow        `json:"cartItems"`
	WishlistItems []wishlistRow        `json:"wishlistItems"`
	Orders        []models.Order       `json:"orders"`
	OrderItems    []orderItemRow       `json:"orderItems"`
	Settings      []models.Setting     `json:"settings"`
}

type userRow struct {
	ID         uuid.UUID   `json:"id"`
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Password   string      `json:"password"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
	LastLogin  *time.Time  `json:"lastLogin"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (userRow) TableName() string { return "users" }

type addressRow struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"userId"`
	Street  string    `json:"street"`
	City    string    `json:"city"`
	State   string    `json:"state"`
	Pincode string    `json:"pincode"`
	Country string    `json:"country"`
}

func (addressRow) TableName() string { return "addresses" }

type cartItemRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	ProductID   uuid.UUID `json:"productId"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Size        string    `json:"size"`
	ProductName string    `json:"productName"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (cartItemRow) TableName() string { return "cart_items" }

type wishlistRow struct {
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (wishlistRow) TableName() string { return "wishlist_items" }

type orderItemRow struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
}

func (orderItemRow) TableName() string { return "order_items" }

// TakeSnapshot reads every table inside one read transaction.
func TakeSnapshot(db *gorm.DB) (*Snapshot, error) {
	snap := &Snapshot{ExportedAt: time.Now().UTC()}
	err := db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			dest interface{}
		}{
			{"categories", &snap.Categories},
			{"subcategories", &snap.Subcategories},
			{"products", &snap.Products},
			{"reviews", &snap.Reviews},
			{"users", &snap.Users},
			{"addresses", &snap.Addresses},
			{"cart_items", &snap.CartItems},
			{"wishlist_items", &snap.WishlistItems},
			{"orders", &snap.Orders},
			{"order_items", &snap.OrderItems},
			{"settings", &snap.Settings},
		}
		for _, s := range steps {
			if err := tx.Find(s.dest).Error; err != nil {
				return fmt.Errorf("export %s: %w", s.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Export writes an indented JSON snapshot to w.
func Export(db *gorm.DB, w io.Writer) (*Snapshot, error) {
	snap, err := TakeSnapshot(db)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return snap, nil
}

// Import replaces the contents of every table with the snapshot in one transaction.
func Import(db *gorm.DB, r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := Restore(db, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func Restore(db *gorm.DB, snap *Snapshot) error {
	return db.Transaction(func(tx *gorm.DB) error {
		clearOrder := []string{
			"order_items", "orders", "wishlist_items", "cart_items", "addresses",
			"password_reset_tokens", "users", "reviews", "products", "subcategories",
			"categories", "settings",
		}
		for _, table := range clearOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		inserts := []struct {
			name string
			rows interface{}
			n    int
		}{
			{"categories", &snap.Categories, len(snap.Categories)},
			{"subcategories", &snap.Subcategories, len(snap.Subcategories)},
			{"products", &snap.Products, len(snap.Products)},
			{"reviews", &snap.Reviews, len(snap.Reviews)},
			{"users", &snap.Users, len(snap.Users)},
			{"addresses", &snap.Addresses, len(snap.Addresses)},
			{"cart_items", &snap.CartItems, len(snap.CartItems)},
			{"wishlist_items", &snap.WishlistItems, len(snap.WishlistItems)},
			{"orders", &snap.Orders, len(snap.Orders)},
			{"order_items", &snap.OrderItems, len(snap.OrderItems)},
			{"settings", &snap.Settings, len(snap.Settings)},
		}
		for _, ins := range inserts {
			if ins.n == 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).CreateInBatches(ins.rows, 100).Error; err != nil {
				return fmt.Errorf("import %s: %w", ins.name, err)
			}
		}
		return nil
	})
}
