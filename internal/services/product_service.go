// internal/services/product_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/repositories"
	"github.com/hearthline/commerce-api/internal/utils"
)

const (
	descriptionLimit  = 79
	descriptionSuffix = "..."

	defaultListLimit = 20
)

// ProductService keeps the catalog documents and relational product rows in
// step. Every write opens one transaction per store and commits both or
// neither.
type ProductService struct {
	catalog repositories.Catalog
	ledger  repositories.Ledger
	images  ImagePipeline
	log     *logrus.Entry

	now        func() time.Time
	productNos ProductNoGenerator
}

// Result is returned by every successful lifecycle operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreateProductRequest struct {
	Prefix      string            `json:"prefix" validate:"required,product_prefix"`
	Name        string            `json:"name" validate:"required,min=2,max=255"`
	Category    string            `json:"category" validate:"required"`
	Subcategory string            `json:"subcategory,omitempty"`
	Description string            `json:"description" validate:"required"`
	Attributes  models.Attributes `json:"attributes"`
	Price       float64           `json:"price" validate:"required,gt=0"`
	Stock       *int              `json:"stock,omitempty" validate:"omitempty,min=0"`
	Tags        []string          `json:"tags,omitempty"`
	Images      []ImageUpload     `json:"-"`
}

// UpdateProductRequest is a partial update; nil fields are left alone.
// ExistingImages lists the stored URLs to keep, anything else is removed.
type UpdateProductRequest struct {
	ProductNo      string             `json:"-" validate:"required"`
	Name           *string            `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Category       *string            `json:"category,omitempty" validate:"omitempty,min=1"`
	Subcategory    *string            `json:"subcategory,omitempty"`
	Description    *string            `json:"description,omitempty" validate:"omitempty,min=1"`
	Attributes     *models.Attributes `json:"attributes,omitempty"`
	Price          *float64           `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock          *int               `json:"stock,omitempty" validate:"omitempty,min=0"`
	Tags           []string           `json:"tags,omitempty"`
	ExistingImages []string           `json:"existingImages"`
	Images         []ImageUpload      `json:"-"`
}

type UpdateStatusRequest struct {
	ProductNos []string             `json:"productNos" validate:"required,min=1,dive,required"`
	Status     models.ProductStatus `json:"status" validate:"required,oneof=active discontinued"`
}

type ProductListParams struct {
	utils.PaginationParams
	Status     *models.ProductStatus
	CategoryID *uint
}

// ProductView merges both store representations with derived pricing and
// inventory figures.
type ProductView struct {
	ProductNo       string               `json:"productNo"`
	Name            string               `json:"name"`
	Category        string               `json:"category"`
	Subcategory     string               `json:"subcategory,omitempty"`
	Description     string               `json:"description"`
	Attributes      models.Attributes    `json:"attributes"`
	Price           decimal.Decimal      `json:"price"`
	DiscountedPrice decimal.Decimal      `json:"discountedPrice"`
	ActivePromotion *models.Promotion    `json:"activePromotion,omitempty"`
	Promotions      []models.Promotion   `json:"promotions"`
	Images          []string             `json:"images"`
	ThumbnailURL    *string              `json:"thumbnailUrl"`
	Tags            []primitive.ObjectID `json:"tags"`
	Status          models.ProductStatus `json:"status"`
	Stock           int                  `json:"stock"`
	Reserved        int                  `json:"reserved"`
	Available       int                  `json:"available"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func (v ProductView) MarshalJSON() ([]byte, error) {
	type view ProductView
	return json.Marshal(struct {
		view
		Price           models.Money `json:"price"`
		DiscountedPrice models.Money `json:"discountedPrice"`
	}{
		view:            view(v),
		Price:           models.Money(v.Price),
		DiscountedPrice: models.Money(v.DiscountedPrice),
	})
}

func NewProductService(catalog repositories.Catalog, ledger repositories.Ledger, images ImagePipeline, log *logrus.Entry) *ProductService {
	return &ProductService{
		catalog:    catalog,
		ledger:     ledger,
		images:     images,
		log:        log,
		now:        time.Now,
		productNos: RandomProductNo,
	}
}

// CreateProduct inserts the product into both stores together with its
// inventory row. Images are published before the transactions open; an
// image that fails to process is dropped.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Result, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, wrapOp(opAddProduct, validationErr("%v", err))
	}

	imageURLs := processImages(ctx, s.images, req.Images, s.log)

	var productNo string
	err := withStores(ctx, s.catalog, s.ledger, s.log, func(txs *storeTxs) error {
		var err error
		productNo, err = nextProductNo(ctx, txs.ledger, s.productNos, req.Prefix)
		if err != nil {
			return err
		}

		refs, err := resolveCategory(ctx, txs, req.Category)
		if err != nil {
			return err
		}
		if req.Subcategory != "" {
			if err := refs.resolveSubcategory(ctx, txs, req.Subcategory); err != nil {
				return err
			}
		}

		tagIDs, err := resolveTags(ctx, txs.catalog, req.Tags)
		if err != nil {
			return err
		}

		product := &models.Product{
			ProductNo:     productNo,
			ProductName:   req.Name,
			Price:         decimal.NewFromFloat(req.Price).Round(2),
			Status:        models.ProductStatusActive,
			Description:   truncateDescription(req.Description),
			CategoryID:    refs.ledgerCategory.ID,
			SubcategoryID: refs.ledgerSubcategoryID(),
			ThumbnailURL:  thumbnail(imageURLs),
		}
		if err := txs.ledger.CreateProduct(ctx, product); err != nil {
			return err
		}

		stock := 0
		if req.Stock != nil {
			stock = *req.Stock
		}
		if err := txs.ledger.CreateInventory(ctx, &models.Inventory{ProductID: product.ID, Stock: stock}); err != nil {
			return err
		}

		return txs.catalog.InsertProduct(ctx, &models.CatalogProduct{
			ProductNo:   productNo,
			Name:        req.Name,
			Category:    refs.catalogCategory.ID,
			Subcategory: refs.catalogSubcategoryID(),
			Description: req.Description,
			Attributes:  req.Attributes,
			Price:       req.Price,
			Promotions:  []models.Promotion{},
			Stock:       stock,
			Images:      nonNil(imageURLs),
			Tags:        tagIDs,
			Status:      models.ProductStatusActive,
		})
	})
	if err != nil {
		return nil, wrapOp(opAddProduct, err)
	}

	s.log.WithFields(logrus.Fields{
		"product_no": productNo,
		"images":     len(imageURLs),
	}).Info("Product created")

	return &Result{Success: true, Message: "Product added successfully"}, nil
}

// UpdateProductDetails applies a partial update. Only fields that differ
// from the stored document are written, and attributes and tags only exist
// in the catalog.
func (s *ProductService) UpdateProductDetails(ctx context.Context, req *UpdateProductRequest) (*Result, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, wrapOp(opUpdateProduct, validationErr("%v", err))
	}

	uploaded := processImages(ctx, s.images, req.Images, s.log)

	err := withStores(ctx, s.catalog, s.ledger, s.log, func(txs *storeTxs) error {
		current, err := txs.catalog.FindProduct(ctx, req.ProductNo)
		if err != nil {
			return err
		}
		if current == nil {
			return notFoundErr("product %s", req.ProductNo)
		}
		row, err := txs.ledger.FindProductByNo(ctx, req.ProductNo)
		if err != nil {
			return err
		}
		if row == nil {
			return notFoundErr("product %s", req.ProductNo)
		}

		kept, removed := splitImages(current.Images, req.ExistingImages)
		deleteImages(ctx, s.images, removed, s.log)

		images := append(kept, uploaded...)

		docFields := map[string]any{}
		rowFields := map[string]any{}

		if !slices.Equal(images, current.Images) {
			docFields["images"] = nonNil(images)
		}
		if thumb := thumbnail(images); !equalStringPtr(thumb, row.ThumbnailURL) {
			rowFields["thumbnail_url"] = thumb
		}

		if req.Name != nil && *req.Name != current.Name {
			docFields["name"] = *req.Name
			rowFields["product_name"] = *req.Name
		}
		if req.Description != nil && *req.Description != current.Description {
			docFields["description"] = *req.Description
			rowFields["description"] = truncateDescription(*req.Description)
		}
		if req.Price != nil && *req.Price != current.Price {
			docFields["price"] = *req.Price
			rowFields["price"] = decimal.NewFromFloat(*req.Price).Round(2)
		}
		if req.Attributes != nil && !req.Attributes.Equal(current.Attributes) {
			docFields["attributes"] = *req.Attributes
		}
		if req.Tags != nil {
			tagIDs, err := resolveTags(ctx, txs.catalog, req.Tags)
			if err != nil {
				return err
			}
			if !slices.Equal(tagIDs, current.Tags) {
				docFields["tags"] = tagIDs
			}
		}

		if err := s.applyCategoryChanges(ctx, txs, req, current, docFields, rowFields); err != nil {
			return err
		}

		if req.Stock != nil {
			if *req.Stock != current.Stock {
				docFields["stock"] = *req.Stock
			}
			if row.Inventory == nil || *req.Stock != row.Inventory.Stock {
				if err := txs.ledger.UpdateInventoryStock(ctx, row.ID, *req.Stock); err != nil {
					return err
				}
			}
		}

		if err := txs.catalog.UpdateProduct(ctx, req.ProductNo, docFields); err != nil {
			return err
		}
		return txs.ledger.UpdateProduct(ctx, req.ProductNo, rowFields)
	})
	if err != nil {
		return nil, wrapOp(opUpdateProduct, err)
	}

	s.log.WithField("product_no", req.ProductNo).Info("Product updated")
	return &Result{Success: true, Message: "Product updated successfully"}, nil
}

// applyCategoryChanges always re-resolves the category in both stores so a
// subcategory change is validated against the right parent. Changing the
// category without naming a subcategory clears the old one.
func (s *ProductService) applyCategoryChanges(ctx context.Context, txs *storeTxs, req *UpdateProductRequest, current *models.CatalogProduct, docFields, rowFields map[string]any) error {
	currentCategory, err := txs.catalog.FindCategoryByID(ctx, current.Category)
	if err != nil {
		return err
	}

	categoryName := ""
	if currentCategory != nil {
		categoryName = currentCategory.Name
	}
	changing := req.Category != nil && *req.Category != categoryName
	if changing {
		categoryName = *req.Category
	}

	refs, err := resolveCategory(ctx, txs, categoryName)
	if err != nil {
		return err
	}

	if changing {
		docFields["category"] = refs.catalogCategory.ID
		rowFields["category_id"] = refs.ledgerCategory.ID
		if req.Subcategory == nil && current.Subcategory != nil {
			docFields["subcategory"] = nil
			rowFields["subcategory_id"] = nil
		}
	}

	if req.Subcategory == nil {
		return nil
	}
	if *req.Subcategory == "" {
		if current.Subcategory != nil {
			docFields["subcategory"] = nil
			rowFields["subcategory_id"] = nil
		}
		return nil
	}

	if err := refs.resolveSubcategory(ctx, txs, *req.Subcategory); err != nil {
		return err
	}
	if current.Subcategory == nil || *current.Subcategory != refs.catalogSubcategory.ID || changing {
		docFields["subcategory"] = refs.catalogSubcategory.ID
		rowFields["subcategory_id"] = refs.ledgerSubcategory.ID
	}
	return nil
}

// UpdateProductStatus sets status on every listed product in both stores.
// Resending a status every product already has is reported as ErrNoChange.
func (s *ProductService) UpdateProductStatus(ctx context.Context, req *UpdateStatusRequest) (*Result, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, wrapOp(opUpdateStatus, validationErr("%v", err))
	}

	var purged int64
	err := withStores(ctx, s.catalog, s.ledger, s.log, func(txs *storeTxs) error {
		docRes, err := txs.catalog.UpdateProductStatus(ctx, req.ProductNos, req.Status)
		if err != nil {
			return err
		}
		rowRes, err := txs.ledger.UpdateProductStatus(ctx, req.ProductNos, req.Status)
		if err != nil {
			return err
		}

		if docRes.Matched == 0 || rowRes.Matched == 0 {
			return notFoundErr("no products matched %v", req.ProductNos)
		}
		if docRes.Modified == 0 || rowRes.Modified == 0 {
			return fmt.Errorf("%w: products already %s", ErrNoChange, req.Status)
		}

		if req.Status == models.ProductStatusDiscontinued {
			purged, err = txs.ledger.DeleteCartItemsByProductNos(ctx, req.ProductNos)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp(opUpdateStatus, err)
	}

	s.log.WithFields(logrus.Fields{
		"product_nos":        req.ProductNos,
		"status":             req.Status,
		"cart_items_removed": purged,
	}).Info("Product status updated")

	return &Result{Success: true, Message: "Product status updated successfully"}, nil
}

// DeleteProduct removes the product from both stores unless an order item
// references it. Images are removed only after both commits succeed.
func (s *ProductService) DeleteProduct(ctx context.Context, productNo string) (*Result, error) {
	if productNo == "" {
		return nil, wrapOp(opDeleteProduct, validationErr("product number is required"))
	}

	var images []string
	err := withStores(ctx, s.catalog, s.ledger, s.log, func(txs *storeTxs) error {
		row, err := txs.ledger.FindProductByNo(ctx, productNo)
		if err != nil {
			return err
		}
		if row == nil {
			return notFoundErr("product %s", productNo)
		}

		refs, err := txs.ledger.CountOrderItemsByProductNo(ctx, productNo)
		if err != nil {
			return err
		}
		if refs > 0 {
			return conflictErr("%s", errReferencedOrders)
		}

		doc, err := txs.catalog.FindProduct(ctx, productNo)
		if err != nil {
			return err
		}
		if doc == nil {
			return notFoundErr("product %s", productNo)
		}
		images = doc.Images

		if err := txs.catalog.DeleteProduct(ctx, productNo); err != nil {
			return err
		}
		if err := txs.ledger.DeleteInventory(ctx, row.ID); err != nil {
			return err
		}
		// cart rows reference the product row
		if _, err := txs.ledger.DeleteCartItemsByProductNos(ctx, []string{productNo}); err != nil {
			return err
		}
		return txs.ledger.DeleteProduct(ctx, row.ID)
	})
	if err != nil {
		return nil, wrapOp(opDeleteProduct, err)
	}

	deleteImages(context.WithoutCancel(ctx), s.images, images, s.log)

	s.log.WithField("product_no", productNo).Info("Product deleted")
	return &Result{Success: true, Message: "Product deleted successfully"}, nil
}

// UpdateProductPromotions replaces the promotion list. Promotions only live
// in the catalog.
func (s *ProductService) UpdateProductPromotions(ctx context.Context, productNo string, promotions []models.Promotion) (*Result, error) {
	if err := validatePromotions(promotions); err != nil {
		return nil, wrapOp(opUpdatePromotions, err)
	}
	if promotions == nil {
		promotions = []models.Promotion{}
	}

	err := withCatalog(ctx, s.catalog, s.log, func(tx repositories.CatalogTx) error {
		doc, err := tx.FindProduct(ctx, productNo)
		if err != nil {
			return err
		}
		if doc == nil {
			return notFoundErr("product %s", productNo)
		}
		return tx.UpdateProduct(ctx, productNo, map[string]any{"promotions": promotions})
	})
	if err != nil {
		return nil, wrapOp(opUpdatePromotions, err)
	}

	return &Result{Success: true, Message: "Product promotions updated successfully"}, nil
}

// GetProduct returns the merged view of one product.
func (s *ProductService) GetProduct(ctx context.Context, productNo string) (*ProductView, error) {
	var view *ProductView
	err := withStores(ctx, s.catalog, s.ledger, s.log, func(txs *storeTxs) error {
		doc, err := txs.catalog.FindProduct(ctx, productNo)
		if err != nil {
			return err
		}
		row, err := txs.ledger.FindProductByNo(ctx, productNo)
		if err != nil {
			return err
		}
		if doc == nil || row == nil {
			return notFoundErr("product %s", productNo)
		}
		view = s.buildView(doc, row)
		return nil
	})
	if err != nil {
		return nil, wrapOp(opGetProduct, err)
	}
	return view, nil
}

// ListProducts pages the relational product rows.
func (s *ProductService) ListProducts(ctx context.Context, params ProductListParams) ([]models.Product, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultListLimit
	}
	if params.Order != "asc" {
		params.Order = "desc"
	}

	var (
		products []models.Product
		total    int64
	)
	err := withLedger(ctx, s.ledger, s.log, func(tx repositories.LedgerTx) error {
		var err error
		products, total, err = tx.ListProducts(ctx, repositories.ProductFilter{
			PaginationParams: params.PaginationParams,
			Status:           params.Status,
			CategoryID:       params.CategoryID,
		})
		return err
	})
	if err != nil {
		return nil, 0, wrapOp(opListProducts, err)
	}
	return products, total, nil
}

func (s *ProductService) buildView(doc *models.CatalogProduct, row *models.Product) *ProductView {
	price := decimal.NewFromFloat(doc.Price)
	promo := ActivePromotion(doc.Promotions, s.now())

	view := &ProductView{
		ProductNo:       doc.ProductNo,
		Name:            doc.Name,
		Category:        row.Category.Name,
		Description:     doc.Description,
		Attributes:      doc.Attributes,
		Price:           price.Round(2),
		DiscountedPrice: DiscountedPrice(price, promo),
		ActivePromotion: promo,
		Promotions:      nonNilPromotions(doc.Promotions),
		Images:          nonNil(doc.Images),
		ThumbnailURL:    row.ThumbnailURL,
		Tags:            doc.Tags,
		Status:          row.Status,
		Stock:           doc.Stock,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if row.Subcategory != nil {
		view.Subcategory = row.Subcategory.Name
	}
	if row.Inventory != nil {
		view.Stock = row.Inventory.Stock
		view.Reserved = row.Inventory.Reserved
		view.Available = row.Inventory.Available()
	}
	return view
}

// categoryRefs holds a category, and optionally a subcategory, resolved in
// both stores.
type categoryRefs struct {
	name               string
	ledgerCategory     *models.Category
	catalogCategory    *models.CatalogCategory
	ledgerSubcategory  *models.Subcategory
	catalogSubcategory *models.CatalogSubcategory
}

func resolveCategory(ctx context.Context, txs *storeTxs, name string) (*categoryRefs, error) {
	ledgerCategory, err := txs.ledger.FindCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	catalogCategory, err := txs.catalog.FindCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if ledgerCategory == nil || catalogCategory == nil {
		return nil, validationErr("category %q does not exist", name)
	}
	return &categoryRefs{name: name, ledgerCategory: ledgerCategory, catalogCategory: catalogCategory}, nil
}

func (r *categoryRefs) resolveSubcategory(ctx context.Context, txs *storeTxs, name string) error {
	ledgerSub, err := txs.ledger.FindSubcategoryByName(ctx, name)
	if err != nil {
		return err
	}
	catalogSub, err := txs.catalog.FindSubcategoryByName(ctx, name)
	if err != nil {
		return err
	}
	if ledgerSub == nil || catalogSub == nil {
		return validationErr("subcategory %q does not exist", name)
	}
	if ledgerSub.CategoryID != r.ledgerCategory.ID || catalogSub.Category != r.catalogCategory.ID {
		return validationErr("subcategory %q does not belong to category %q", name, r.name)
	}
	r.ledgerSubcategory = ledgerSub
	r.catalogSubcategory = catalogSub
	return nil
}

func (r *categoryRefs) ledgerSubcategoryID() *uint {
	if r.ledgerSubcategory == nil {
		return nil
	}
	id := r.ledgerSubcategory.ID
	return &id
}

func (r *categoryRefs) catalogSubcategoryID() *primitive.ObjectID {
	if r.catalogSubcategory == nil {
		return nil
	}
	id := r.catalogSubcategory.ID
	return &id
}

// resolveTags drops names that have no tag document.
func resolveTags(ctx context.Context, tx repositories.CatalogTx, names []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(names))
	for _, name := range names {
		tag, err := tx.FindTagByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if tag != nil {
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

// splitImages keeps the requested URLs that are actually stored, in the
// requested order, and returns the stored URLs that were not requested.
func splitImages(current, keep []string) (kept, removed []string) {
	stored := make(map[string]bool, len(current))
	for _, url := range current {
		stored[url] = true
	}

	wanted := make(map[string]bool, len(keep))
	kept = make([]string, 0, len(keep))
	for _, url := range keep {
		if stored[url] && !wanted[url] {
			wanted[url] = true
			kept = append(kept, url)
		}
	}

	for _, url := range current {
		if !wanted[url] {
			removed = append(removed, url)
		}
	}
	return kept, removed
}

func truncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= descriptionLimit {
		return description
	}
	return string(runes[:descriptionLimit]) + descriptionSuffix
}

func thumbnail(images []string) *string {
	if len(images) == 0 {
		return nil
	}
	url := images[0]
	return &url
}

func nonNil(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}

func nonNilPromotions(p []models.Promotion) []models.Promotion {
	if p == nil {
		return []models.Promotion{}
	}
	return p
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

