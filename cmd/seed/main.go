package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/models"
	"tienda/internal/utils"
)

func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		log.Println("Admin user already exists:", admin.Username)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin = models.User{
		ID:           uuid.New(),
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("Admin user created:", admin.Username)

	seedProducts(admin.ID)
}

// seedProducts inserts a few sample products owned by the admin, so a
// fresh environment has data to page through.
func seedProducts(ownerID uuid.UUID) {
	var count int64
	database.DB.Model(&models.Product{}).Count(&count)
	if count > 0 {
		log.Println("Products already seeded, skipping")
		return
	}

	category := "peripherals"
	products := []models.Product{
		{ID: uuid.New(), UserID: ownerID, Name: "Mechanical Keyboard", SKU: "KB-0001", Category: &category, Price: 75.00, Stock: 25},
		{ID: uuid.New(), UserID: ownerID, Name: "Wireless Mouse", SKU: "MS-0001", Category: &category, Price: 25.00, Stock: 50},
		{ID: uuid.New(), UserID: ownerID, Name: "USB-C Hub", SKU: "HB-0001", Category: &category, Price: 39.90, Stock: 12},
	}

	for i := range products {
		if err := database.DB.Create(&products[i]).Error; err != nil {
			log.Printf("Failed to seed product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (%s)", products[i].Name, products[i].SKU)
	}
}
