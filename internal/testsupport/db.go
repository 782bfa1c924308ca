package testsupport

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"bookstore/internal/client"
	"bookstore/internal/config"
	"bookstore/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MustOpenDB opens a migrated sqlite database in a per-test temp directory.
func MustOpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "bookstore.db"),
	})
	if err != nil {
		t.Fatalf("client.InitDBClient: %v", err)
	}
	if err := client.Migrate(db); err != nil {
		t.Fatalf("client.Migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewBook inserts a book with content uploaded.
func NewBook(t testing.TB, db *gorm.DB, title, price string, stock int) *model.Book {
	t.Helper()

	book := &model.Book{
		Title:      title,
		Author:     "Author of " + title,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		ContentURL: "books/" + strings.ReplaceAll(strings.ToLower(title), " ", "-") + ".pdf",
		MediaKind:  "pdf",
		PageCount:  200,
		Summary:    "A summary of " + title,
	}
	if err := db.WithContext(context.Background()).Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

// NewUser inserts a regular user account.
func NewUser(t testing.TB, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        strings.ToLower(email),
		Name:         email,
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	if err := db.WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// DefaultPricing mirrors the configuration defaults.
func DefaultPricing() config.Pricing {
	return config.Pricing{
		RentDefaultDays:       30,
		RentDefaultMultiplier: 0.35,
		RentCustomMultiplier:  0.50,
		ShippingStandard:      30,
		ShippingExpress:       60,
		ShippingPriority:      100,
		CODFee:                15,
	}
}
