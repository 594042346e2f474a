package testutil

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tienda/internal/models"
	"tienda/internal/repository"
)

// TestDatabase holds the in-memory SQLite connection used by
// integration tests. No external services required.
type TestDatabase struct {
	DB *gorm.DB
}

// TestRedis holds the miniredis mock plus a client pointed at it.
type TestRedis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// SetupTestDatabase opens an in-memory SQLite database and migrates
// the real models. TranslateError is on, matching production, so
// unique-constraint violations surface as gorm.ErrDuplicatedKey in
// tests too.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDatabase{DB: db}
}

// Teardown closes the test database connection.
func (td *TestDatabase) Teardown(t *testing.T) {
	sqlDB, err := td.DB.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// CleanDatabase deletes all records, for isolation between tests.
func CleanDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()

	// Products first: they reference users.
	tables := []string{"products", "users"}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}

// SetupTestRedis starts miniredis and returns it with a connected
// client.
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	return &TestRedis{
		Server: server,
		Client: client,
	}
}

// TokenStore returns a token store backed by the test Redis.
func (tr *TestRedis) TokenStore() *repository.TokenStore {
	return repository.NewTokenStoreWithClient(tr.Client)
}

// Teardown closes the client; miniredis itself is cleaned up by RunT.
func (tr *TestRedis) Teardown(t *testing.T) {
	if err := tr.Client.Close(); err != nil {
		t.Logf("Warning: Failed to close redis client: %v", err)
	}
}
