package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda/internal/media"
	"tienda/internal/service"
	"tienda/pkg/logger"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// productForm is the full create/update payload. It binds from JSON or
// multipart form data; the optional image file rides alongside in the
// multipart case. Price and Stock are pointers so zero values survive
// the required/omitempty checks.
type productForm struct {
	Name     string   `form:"name" json:"name" binding:"required,max=255"`
	SKU      string   `form:"sku" json:"sku" binding:"required,max=255"`
	Category *string  `form:"category" json:"category" binding:"omitempty,max=255"`
	Price    *float64 `form:"price" json:"price" binding:"required,gte=0"`
	Stock    *int     `form:"stock" json:"stock" binding:"omitempty,gte=0"`
	Status   *string  `form:"status" json:"status" binding:"omitempty,max=255"`
}

type patchProductRequest struct {
	Name     *string  `json:"name" binding:"omitempty,max=255"`
	SKU      *string  `json:"sku" binding:"omitempty,max=255"`
	Category *string  `json:"category" binding:"omitempty,max=255"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock    *int     `json:"stock" binding:"omitempty,gte=0"`
	Status   *string  `json:"status" binding:"omitempty,max=255"`
}

type bulkProductItem struct {
	Name     string   `json:"name" binding:"required,max=255"`
	SKU      string   `json:"sku" binding:"required,max=255"`
	Category *string  `json:"category" binding:"omitempty,max=255"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Stock    *int     `json:"stock" binding:"omitempty,gte=0"`
	Status   *string  `json:"status" binding:"omitempty,max=255"`
	Image    *string  `json:"image" binding:"omitempty,max=512"`
}

type bulkProductsRequest struct {
	Products []bulkProductItem `json:"products" binding:"required,min=1,dive"`
}

// List returns one page of products, scoped by role.
// GET /api/products?page=N
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	products, pagination, err := h.productService.List(currentUser(c), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not fetch products",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	if len(products) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No products found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       products,
		"pagination": pagination,
	})
}

// Get returns a single product.
// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	product, err := h.productService.Get(currentUser(c), id)
	if err != nil {
		h.renderProductError(c, err, "view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": product,
	})
}

// Create validates the payload, uploads the optional image and
// persists a product owned by the caller.
// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
			"status":  http.StatusBadRequest,
		})
		return
	}

	image := formImage(c)
	if fieldErrs := validateImageField(image); fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrs,
			"status":  http.StatusBadRequest,
		})
		return
	}

	product, err := h.productService.Create(c.Request.Context(), currentUser(c), service.ProductInput{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    *req.Price,
		Stock:    req.Stock,
		Status:   req.Status,
	}, image)
	if err != nil {
		h.renderProductError(c, err, "create")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    product,
		"status":  http.StatusCreated,
	})
}

// Update fully replaces a product. A newly attached image replaces the
// previous remote asset.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	var req productForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
		})
		return
	}

	image := formImage(c)
	if fieldErrs := validateImageField(image); fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrs,
		})
		return
	}

	product, err := h.productService.Update(c.Request.Context(), currentUser(c), id, service.ProductInput{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    *req.Price,
		Stock:    req.Stock,
		Status:   req.Status,
	}, image)
	if err != nil {
		h.renderProductError(c, err, "edit")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    product,
		"status":  http.StatusOK,
	})
}

// Patch applies only the fields present in the request body.
// PATCH /api/products/:id
func (h *ProductHandler) Patch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	var req patchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
		})
		return
	}

	product, err := h.productService.Patch(currentUser(c), id, service.ProductPatch{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Status:   req.Status,
	})
	if err != nil {
		h.renderProductError(c, err, "edit")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product partially updated",
		"data":    product,
		"status":  http.StatusOK,
	})
}

// Delete removes a product and, best-effort, its remote image.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	if err := h.productService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.renderProductError(c, err, "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
		"status":  http.StatusOK,
	})
}

// BulkCreate inserts a batch of products. Validation is all-or-nothing
// across the batch.
// POST /api/products/bulk
func (h *ProductHandler) BulkCreate(c *gin.Context) {
	var req bulkProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
			"status":  http.StatusBadRequest,
		})
		return
	}

	items := make([]service.ProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, service.ProductInput{
			Name:     p.Name,
			SKU:      p.SKU,
			Category: p.Category,
			Price:    *p.Price,
			Stock:    p.Stock,
			Status:   p.Status,
			Image:    p.Image,
		})
	}

	created, err := h.productService.BulkCreate(c.Request.Context(), currentUser(c), items)
	if err != nil {
		h.renderProductError(c, err, "create")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Products created successfully",
		"total":   len(created),
		"data":    created,
		"status":  http.StatusCreated,
	})
}

func (h *ProductHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"message": "Product not found",
	})
}

func (h *ProductHandler) renderProductError(c *gin.Context, err error, action string) {
	var (
		fieldErrs service.FieldErrors
		uploadErr *service.UploadError
	)
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrProductForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"message": "You are not allowed to " + action + " this product",
		})
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrs,
			"status":  http.StatusBadRequest,
		})
	case errors.As(err, &uploadErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error uploading image",
			"error":   uploadErr.Error(),
			"status":  http.StatusInternalServerError,
		})
	default:
		logger.Log.Error("Product operation failed",
			zap.String("action", action),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Unexpected error",
			"status":  http.StatusInternalServerError,
		})
	}
}

// formImage returns the uploaded image file, if the request is
// multipart and carries one.
func formImage(c *gin.Context) *multipart.FileHeader {
	if c.ContentType() != "multipart/form-data" {
		return nil
	}
	file, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}

// validateImageField applies the upload constraints at the validation
// stage, so an oversized or non-image file is a field error rather
// than an upstream failure.
func validateImageField(image *multipart.FileHeader) service.FieldErrors {
	if image == nil {
		return nil
	}
	if err := media.ValidateImage(image); err != nil {
		fieldErrs := service.FieldErrors{}
		fieldErrs.Add("image", "The image must be a jpeg, png, gif or webp file no larger than 5MB.")
		return fieldErrs
	}
	return nil
}
