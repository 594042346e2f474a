package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tienda/internal/config"
	"tienda/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var err error

	// TranslateError maps driver-level unique constraint violations to
	// gorm.ErrDuplicatedKey, so a race between two concurrent creates
	// with the same sku/username/email surfaces as a validation
	// failure instead of a 500.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	log.Println("Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(&models.User{}, &models.Product{})
	if err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Database migration completed")
}
