package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda/internal/media"
	"tienda/internal/models"
	"tienda/internal/policy"
	"tienda/internal/repository"
	"tienda/pkg/logger"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductForbidden = errors.New("not allowed to access this product")
)

// ProductPageSize is the fixed page size for product listings.
const ProductPageSize = 10

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// ProductInput is the full create/update payload. Optional fields left
// nil clear the stored value on a full update; a nil Stock defaults
// to zero.
type ProductInput struct {
	Name     string
	SKU      string
	Category *string
	Price    float64
	Stock    *int
	Status   *string
	Image    *string // bulk items may carry a ready-made image URL
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name     *string
	SKU      *string
	Category *string
	Price    *float64
	Stock    *int
	Status   *string
}

type ProductService struct {
	productRepo  *repository.ProductRepository
	media        media.Service
	uploadFolder string
}

func NewProductService(productRepo *repository.ProductRepository, mediaService media.Service, uploadFolder string) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		media:        mediaService,
		uploadFolder: uploadFolder,
	}
}

// List returns one page of products. Admins see everything; everyone
// else only their own.
func (s *ProductService) List(actor *models.User, page int) ([]models.Product, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * ProductPageSize

	var (
		products []models.Product
		total    int64
		err      error
	)

	if actor.IsAdmin() {
		total, err = s.productRepo.CountProducts()
		if err == nil {
			products, err = s.productRepo.ListProducts(offset, ProductPageSize)
		}
	} else {
		total, err = s.productRepo.CountProductsByOwner(actor.ID)
		if err == nil {
			products, err = s.productRepo.ListProductsByOwner(actor.ID, offset, ProductPageSize)
		}
	}
	if err != nil {
		logger.Log.Error("Failed to list products",
			zap.String("user_id", actor.ID.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}

	lastPage := int((total + ProductPageSize - 1) / ProductPageSize)
	if lastPage == 0 {
		lastPage = 1
	}

	return products, &Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     ProductPageSize,
		Total:       total,
	}, nil
}

// Get returns a single product after the ownership check.
func (s *ProductService) Get(actor *models.User, id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		logger.Log.Error("Failed to fetch product",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if !policy.CanManage(actor, product.UserID) {
		return nil, ErrProductForbidden
	}

	return product, nil
}

// Create validates sku uniqueness, uploads the image (if any) and
// persists a product owned by the actor. The upload happens before the
// record is written; an upload failure aborts the creation.
func (s *ProductService) Create(ctx context.Context, actor *models.User, in ProductInput, image *multipart.FileHeader) (*models.Product, error) {
	taken, err := s.productRepo.SKUTaken(in.SKU, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		fieldErrs := FieldErrors{}
		fieldErrs.Add("sku", "The sku has already been taken.")
		return nil, fieldErrs
	}

	product := &models.Product{
		ID:       uuid.New(),
		UserID:   actor.ID,
		Name:     in.Name,
		SKU:      in.SKU,
		Category: in.Category,
		Price:    in.Price,
		Stock:    stockOrZero(in.Stock),
		Status:   in.Status,
		Image:    in.Image,
	}

	if image != nil {
		result, err := s.media.Upload(ctx, image, s.uploadFolder)
		if err != nil {
			logger.Log.Error("Image upload failed during product creation",
				zap.String("user_id", actor.ID.String()),
				zap.Error(err),
			)
			return nil, NewUploadError(err)
		}
		product.Image = &result.URL
		product.ImagePublicID = &result.PublicID
	}

	if err := s.productRepo.CreateProduct(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs := FieldErrors{}
			fieldErrs.Add("sku", "The sku has already been taken.")
			return nil, fieldErrs
		}
		logger.Log.Error("Failed to create product",
			zap.String("user_id", actor.ID.String()),
			zap.String("sku", in.SKU),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("user_id", actor.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// Update replaces every field of the product. When a new image is
// attached the previous remote asset is deleted first (best-effort)
// and the new one uploaded; an upload failure aborts the update, but
// the prior deletion is not rolled back.
func (s *ProductService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in ProductInput, image *multipart.FileHeader) (*models.Product, error) {
	product, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.productRepo.SKUTaken(in.SKU, product.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		fieldErrs := FieldErrors{}
		fieldErrs.Add("sku", "The sku has already been taken.")
		return nil, fieldErrs
	}

	if image != nil {
		if product.ImagePublicID != nil {
			s.deleteRemoteImage(ctx, product)
		}

		result, err := s.media.Upload(ctx, image, s.uploadFolder)
		if err != nil {
			logger.Log.Error("Image upload failed during product update",
				zap.String("product_id", id.String()),
				zap.Error(err),
			)
			return nil, NewUploadError(err)
		}
		product.Image = &result.URL
		product.ImagePublicID = &result.PublicID
	}

	product.Name = in.Name
	product.SKU = in.SKU
	product.Category = in.Category
	product.Price = in.Price
	product.Stock = stockOrZero(in.Stock)
	product.Status = in.Status

	if err := s.productRepo.SaveProduct(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs := FieldErrors{}
			fieldErrs.Add("sku", "The sku has already been taken.")
			return nil, fieldErrs
		}
		logger.Log.Error("Failed to update product",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.String("user_id", actor.ID.String()),
	)
	return product, nil
}

// Patch applies only the fields present in the request.
func (s *ProductService) Patch(actor *models.User, id uuid.UUID, p ProductPatch) (*models.Product, error) {
	product, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	if p.SKU != nil {
		taken, err := s.productRepo.SKUTaken(*p.SKU, product.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs := FieldErrors{}
			fieldErrs.Add("sku", "The sku has already been taken.")
			return nil, fieldErrs
		}
		product.SKU = *p.SKU
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = p.Category
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Status != nil {
		product.Status = p.Status
	}

	if err := s.productRepo.SaveProduct(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrs := FieldErrors{}
			fieldErrs.Add("sku", "The sku has already been taken.")
			return nil, fieldErrs
		}
		logger.Log.Error("Failed to patch product",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Product partially updated",
		zap.String("product_id", product.ID.String()),
		zap.String("user_id", actor.ID.String()),
	)
	return product, nil
}

// Delete removes the product. The remote image, if any, is deleted
// best-effort first: a media failure is logged and never blocks the
// record deletion.
func (s *ProductService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	product, err := s.Get(actor, id)
	if err != nil {
		return err
	}

	if product.ImagePublicID != nil {
		s.deleteRemoteImage(ctx, product)
	}

	if err := s.productRepo.DeleteProduct(product.ID); err != nil {
		logger.Log.Error("Failed to delete product",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Product deleted",
		zap.String("product_id", product.ID.String()),
		zap.String("user_id", actor.ID.String()),
	)
	return nil
}

// BulkCreate validates the whole batch before touching the store:
// any duplicate sku, within the batch or against existing products,
// rejects the entire request. Persistence is then per item.
func (s *ProductService) BulkCreate(ctx context.Context, actor *models.User, items []ProductInput) ([]models.Product, error) {
	fieldErrs := FieldErrors{}
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		field := fmt.Sprintf("products.%d.sku", i)
		if seen[item.SKU] {
			fieldErrs.Add(field, "The sku has already been taken.")
			continue
		}
		seen[item.SKU] = true

		taken, err := s.productRepo.SKUTaken(item.SKU, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs.Add(field, "The sku has already been taken.")
		}
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	created := make([]models.Product, 0, len(items))
	for _, item := range items {
		product := &models.Product{
			ID:       uuid.New(),
			UserID:   actor.ID,
			Name:     item.Name,
			SKU:      item.SKU,
			Category: item.Category,
			Price:    item.Price,
			Stock:    stockOrZero(item.Stock),
			Status:   item.Status,
			Image:    item.Image,
		}

		if err := s.productRepo.CreateProduct(product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fieldErrs.Add("products.*.sku", "The sku has already been taken.")
				return nil, fieldErrs
			}
			logger.Log.Error("Failed to create product in bulk insert",
				zap.String("sku", item.SKU),
				zap.Error(err),
			)
			return nil, err
		}
		created = append(created, *product)
	}

	logger.Log.Info("Products bulk created",
		zap.String("user_id", actor.ID.String()),
		zap.Int("count", len(created)),
	)
	return created, nil
}

// deleteRemoteImage asks the media provider to drop the product's
// asset. Failures are logged and swallowed.
func (s *ProductService) deleteRemoteImage(ctx context.Context, product *models.Product) {
	if err := s.media.Delete(ctx, *product.ImagePublicID); err != nil {
		logger.Log.Warn("Failed to delete remote image, continuing",
			zap.String("product_id", product.ID.String()),
			zap.String("public_id", *product.ImagePublicID),
			zap.Error(err),
		)
	}
}

func stockOrZero(stock *int) int {
	if stock == nil {
		return 0
	}
	return *stock
}
