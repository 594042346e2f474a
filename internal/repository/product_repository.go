package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tienda/internal/models"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepository) GetProductByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ?", id).First(&product).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

// ListProducts returns one page of products across all owners.
func (r *ProductRepository) ListProducts(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ListProductsByOwner returns one page of products owned by ownerID.
func (r *ProductRepository) ListProductsByOwner(ownerID uuid.UUID, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) CountProducts() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *ProductRepository) CountProductsByOwner(ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

// SKUTaken reports whether another product (excluding excludeID)
// already holds the sku.
func (r *ProductRepository) SKUTaken(sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProductRepository) SaveProduct(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *ProductRepository) DeleteProduct(id uuid.UUID) error {
	return r.db.Delete(&models.Product{}, "id = ?", id).Error
}
