package testutil

import (
	"github.com/google/uuid"

	"tienda/internal/models"
	"tienda/internal/utils"
)

// CreateTestUser builds a user with a real password hash.
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}, nil
}

// DefaultTestUser returns a regular user fixture.
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleUser)
}

// DefaultAdminUser returns an admin fixture.
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestProduct builds a product owned by ownerID.
func CreateTestProduct(ownerID uuid.UUID, name, sku string, price float64) *models.Product {
	return &models.Product{
		ID:     uuid.New(),
		UserID: ownerID,
		Name:   name,
		SKU:    sku,
		Price:  price,
	}
}

// CreateTestProductWithImage builds a product carrying a remote image.
func CreateTestProductWithImage(ownerID uuid.UUID, name, sku string, price float64, url, publicID string) *models.Product {
	p := CreateTestProduct(ownerID, name, sku, price)
	p.Image = &url
	p.ImagePublicID = &publicID
	return p
}
