package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"woolcrafts-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Stock and price floors are enforced by the store as well as the order engine.
	if db.Dialector.Name() == "postgres" {
		if err := ensureCheckConstraints(db); err != nil {
			return err
		}
	}
	return nil
}

func ensureCheckConstraints(db *gorm.DB) error {
	stmts := []string{
		`DO $$ BEGIN
			ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE products ADD CONSTRAINT chk_products_price_non_negative CHECK (price >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_positive CHECK (quantity >= 1);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add check constraint: %w", err)
		}
	}
	return nil
}

// CreateAdmin creates an admin account, or promotes an existing account with that email.
func CreateAdmin(db *gorm.DB, email, password, fullName string) (*models.User, bool, error) {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role == models.RoleAdmin {
			return &existing, false, nil
		}
		if err := db.Model(&existing).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, false, err
		}
		existing.Role = models.RoleAdmin
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	admin := models.User{
		FullName:   fullName,
		Email:      email,
		Password:   string(hashedPassword),
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, false, err
	}
	return &admin, true, nil
}

func CreateDefaultAdmin(db *gorm.DB, email, password string) error {
	_, created, err := CreateAdmin(db, email, password, "Admin User")
	if err != nil {
		return err
	}
	if created {
		log.Printf("Default admin created: %s", email)
	}
	return nil
}
