package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the local test database and skips the test when it is
// not reachable, so the mysql store tests only run where a database
// exists. Expects a MySQL instance on localhost:3306 with a
// 'chaintrack_test' schema.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/chaintrack_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables creates the inventory_records table used by the mysql
// record store.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createRecords := `
	CREATE TABLE IF NOT EXISTS inventory_records (
		position INT NOT NULL PRIMARY KEY,
		recordId CHAR(36) NOT NULL,
		productId VARCHAR(100) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		batchId VARCHAR(100),
		creator VARCHAR(100) NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		quantity INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		owner VARCHAR(100) NOT NULL DEFAULT '',
		txRef VARCHAR(128) NOT NULL DEFAULT '',
		correlationId VARCHAR(128) NOT NULL DEFAULT '',
		createdAt DATETIME(6) NOT NULL,
		updatedAt DATETIME(6) NOT NULL,
		INDEX idx_product (productId),
		INDEX idx_owner (owner)
	)`

	if _, err := db.Exec(createRecords); err != nil {
		t.Logf("failed to create table inventory_records: %v", err)
	}
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM inventory_records"); err != nil {
		t.Logf("failed to clean table inventory_records: %v", err)
	}

	db.Close()
}
