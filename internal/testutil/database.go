package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Expects a MySQL
// instance on localhost:3306 with a 'vincula_test' schema; tests skip
// when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/vincula_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"OrderItems", "Orders", "CartItems", "Carts", "WishlistItems",
		"Reviews", "PaymentMethods", "Addresses", "Products", "Categories",
		"ShippingMethods", "Users",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates every table the repositories touch.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []struct {
		name  string
		query string
	}{
		{"Users", `
		CREATE TABLE IF NOT EXISTS Users (
			id CHAR(36) NOT NULL PRIMARY KEY,
			email VARCHAR(150) NOT NULL UNIQUE,
			passwordHash VARCHAR(255) NOT NULL,
			firstName VARCHAR(100) NOT NULL,
			lastName VARCHAR(100) NOT NULL,
			phone VARCHAR(30),
			role VARCHAR(20) NOT NULL DEFAULT 'customer',
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`},
		{"Categories", `
		CREATE TABLE IF NOT EXISTS Categories (
			id CHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`},
		{"Products", `
		CREATE TABLE IF NOT EXISTS Products (
			id CHAR(36) NOT NULL PRIMARY KEY,
			sku VARCHAR(64) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(12,2) NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			categoryId CHAR(36),
			isActive TINYINT(1) NOT NULL DEFAULT 1,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_category (categoryId)
		)`},
		{"ShippingMethods", `
		CREATE TABLE IF NOT EXISTS ShippingMethods (
			id CHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT,
			cost DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			estimatedDays INT NOT NULL DEFAULT 0,
			isActive TINYINT(1) NOT NULL DEFAULT 1,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`},
		{"Addresses", `
		CREATE TABLE IF NOT EXISTS Addresses (
			id CHAR(36) NOT NULL PRIMARY KEY,
			userId CHAR(36) NOT NULL,
			street VARCHAR(255) NOT NULL,
			city VARCHAR(100) NOT NULL,
			state VARCHAR(100),
			zip VARCHAR(20),
			country VARCHAR(100) NOT NULL,
			isDefault TINYINT(1) NOT NULL DEFAULT 0,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_user (userId)
		)`},
		{"PaymentMethods", `
		CREATE TABLE IF NOT EXISTS PaymentMethods (
			id CHAR(36) NOT NULL PRIMARY KEY,
			userId CHAR(36) NOT NULL,
			kind VARCHAR(20) NOT NULL,
			label VARCHAR(100),
			token VARCHAR(255) NOT NULL,
			isDefault TINYINT(1) NOT NULL DEFAULT 0,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_user (userId)
		)`},
		{"Orders", `
		CREATE TABLE IF NOT EXISTS Orders (
			id CHAR(36) NOT NULL PRIMARY KEY,
			userId CHAR(36) NOT NULL,
			orderNumber VARCHAR(32) NOT NULL UNIQUE,
			status VARCHAR(30) NOT NULL DEFAULT 'pending',
			paymentStatus VARCHAR(30) NOT NULL DEFAULT 'pending',
			paymentMethodId CHAR(36),
			shippingMethodId CHAR(36),
			shippingAddressId CHAR(36),
			subtotal DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			shippingCost DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			total DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			notes TEXT,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			cancelledAt DATETIME,
			INDEX idx_user (userId),
			INDEX idx_status (status)
		)`},
		{"OrderItems", `
		CREATE TABLE IF NOT EXISTS OrderItems (
			id CHAR(36) NOT NULL PRIMARY KEY,
			orderId CHAR(36) NOT NULL,
			productId CHAR(36) NOT NULL,
			productName VARCHAR(255) NOT NULL,
			productSku VARCHAR(64) NOT NULL,
			unitPrice DECIMAL(12,2) NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			totalPrice DECIMAL(12,2) NOT NULL,
			FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
			INDEX idx_order (orderId),
			INDEX idx_product (productId)
		)`},
		{"Carts", `
		CREATE TABLE IF NOT EXISTS Carts (
			id CHAR(36) NOT NULL PRIMARY KEY,
			userId CHAR(36) NOT NULL UNIQUE,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`},
		{"CartItems", `
		CREATE TABLE IF NOT EXISTS CartItems (
			id CHAR(36) NOT NULL PRIMARY KEY,
			cartId CHAR(36) NOT NULL,
			productId CHAR(36) NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_cart_product (cartId, productId),
			FOREIGN KEY (cartId) REFERENCES Carts(id) ON DELETE CASCADE
		)`},
		{"Reviews", `
		CREATE TABLE IF NOT EXISTS Reviews (
			id CHAR(36) NOT NULL PRIMARY KEY,
			productId CHAR(36) NOT NULL,
			userId CHAR(36) NOT NULL,
			rating INT NOT NULL,
			comment TEXT,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_product (userId, productId),
			INDEX idx_product (productId)
		)`},
		{"WishlistItems", `
		CREATE TABLE IF NOT EXISTS WishlistItems (
			id CHAR(36) NOT NULL PRIMARY KEY,
			userId CHAR(36) NOT NULL,
			productId CHAR(36) NOT NULL,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_product (userId, productId),
			INDEX idx_user (userId)
		)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			t.Logf("failed to create table %s: %v", stmt.name, err)
		}
	}
}
