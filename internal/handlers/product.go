// internal/handlers/product.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/services"
	"github.com/hearthline/commerce-api/internal/utils"
)

// ProductManager is the product surface the HTTP layer depends on.
type ProductManager interface {
	CreateProduct(ctx context.Context, req *services.CreateProductRequest) (*services.Result, error)
	UpdateProductDetails(ctx context.Context, req *services.UpdateProductRequest) (*services.Result, error)
	UpdateProductStatus(ctx context.Context, req *services.UpdateStatusRequest) (*services.Result, error)
	DeleteProduct(ctx context.Context, productNo string) (*services.Result, error)
	UpdateProductPromotions(ctx context.Context, productNo string, promotions []models.Promotion) (*services.Result, error)
	GetProduct(ctx context.Context, productNo string) (*services.ProductView, error)
	ListProducts(ctx context.Context, params services.ProductListParams) ([]models.Product, int64, error)
}

type ProductHandler struct {
	products       ProductManager
	maxUploadBytes int64
	log            *logrus.Entry
}

func NewProductHandler(products ProductManager, maxUploadBytes int64, log *logrus.Entry) *ProductHandler {
	return &ProductHandler{
		products:       products,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type promotionsRequest struct {
	Promotions []models.Promotion `json:"promotions" binding:"required"`
}

// GET /admin/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := services.ProductListParams{PaginationParams: utils.GetPaginationParams(c)}

	if status := c.Query("status"); status != "" {
		productStatus := models.ProductStatus(status)
		if !productStatus.Valid() {
			utils.BadRequestResponse(c, "Invalid status filter", nil)
			return
		}
		params.Status = &productStatus
	}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseUint(categoryIDStr, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category_id", nil)
			return
		}
		id := uint(categoryID)
		params.CategoryID = &id
	}

	products, total, err := h.products.ListProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /admin/products/:productNo
func (h *ProductHandler) GetProduct(c *gin.Context) {
	view, err := h.products.GetProduct(c.Request.Context(), c.Param("productNo"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// GET /products/:productNo
func (h *ProductHandler) GetPublicProduct(c *gin.Context) {
	view, err := h.products.GetProduct(c.Request.Context(), c.Param("productNo"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if view.Status != models.ProductStatusActive {
		utils.NotFoundResponse(c, "Product not found")
		return
	}
	utils.SuccessResponse(c, view)
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	images, err := h.bindProductForm(c, &req)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product payload", err.Error())
		return
	}
	req.Images = images

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.CreatedResponse(c, result)
}

// PUT /admin/products/:productNo
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	images, err := h.bindProductForm(c, &req)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product payload", err.Error())
		return
	}
	req.ProductNo = c.Param("productNo")
	req.Images = images

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.products.UpdateProductDetails(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// PATCH /admin/products/status
func (h *ProductHandler) UpdateProductStatus(c *gin.Context) {
	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid status payload", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.products.UpdateProductStatus(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// DELETE /admin/products/:productNo
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	result, err := h.products.DeleteProduct(c.Request.Context(), c.Param("productNo"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// PUT /admin/products/:productNo/promotions
func (h *ProductHandler) UpdatePromotions(c *gin.Context) {
	var req promotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid promotions payload", err.Error())
		return
	}

	result, err := h.products.UpdateProductPromotions(c.Request.Context(), c.Param("productNo"), req.Promotions)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// bindProductForm decodes a product payload into dst. Multipart requests
// carry the JSON payload in the "data" field and files under "images";
// any other request is read as a plain JSON body.
func (h *ProductHandler) bindProductForm(c *gin.Context, dst any) ([]services.ImageUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, c.ShouldBindJSON(dst)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	if data := form.Value["data"]; len(data) > 0 {
		if err := json.Unmarshal([]byte(data[0]), dst); err != nil {
			return nil, fmt.Errorf("failed to decode data field: %w", err)
		}
	}

	files := form.File["images"]
	uploads := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
			return nil, fmt.Errorf("image %s exceeds %d bytes", fh.Filename, h.maxUploadBytes)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}

		uploads = append(uploads, services.ImageUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return uploads, nil
}
