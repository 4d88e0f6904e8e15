// internal/repositories/interfaces.go
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/utils"
)

// UpdateResult reports how many records matched a filter and how many were
// actually changed by the write.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Ledger is the relational store holding products, inventory, carts and orders.
type Ledger interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is a single relational transaction. Lookups return (nil, nil)
// when the record does not exist.
type LedgerTx interface {
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	FindSubcategoryByName(ctx context.Context, name string) (*models.Subcategory, error)

	FindProductByNo(ctx context.Context, productNo string) (*models.Product, error)
	ProductNoExists(ctx context.Context, productNo string) (bool, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error
	UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (UpdateResult, error)
	DeleteProduct(ctx context.Context, productID uint) error

	CreateInventory(ctx context.Context, inventory *models.Inventory) error
	UpdateInventoryStock(ctx context.Context, productID uint, stock int) error
	DeleteInventory(ctx context.Context, productID uint) error

	DeleteCartItemsByProductNos(ctx context.Context, productNos []string) (int64, error)
	CountOrderItemsByProductNo(ctx context.Context, productNo string) (int64, error)

	FindOrderByNo(ctx context.Context, orderNo string) (*models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error

	Commit() error
	Rollback() error
}

type ProductFilter struct {
	utils.PaginationParams
	Status     *models.ProductStatus
	CategoryID *uint
}

// Catalog is the document store holding product, category and tag documents.
type Catalog interface {
	Begin(ctx context.Context) (CatalogTx, error)
}

// CatalogTx is a single document-store transaction bound to a session.
// End must be called on every path once the transaction is finished.
type CatalogTx interface {
	FindProduct(ctx context.Context, productNo string) (*models.CatalogProduct, error)
	InsertProduct(ctx context.Context, product *models.CatalogProduct) error
	UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error
	UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (UpdateResult, error)
	DeleteProduct(ctx context.Context, productNo string) error

	FindCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogCategory, error)
	FindCategoryByName(ctx context.Context, name string) (*models.CatalogCategory, error)
	FindSubcategoryByName(ctx context.Context, name string) (*models.CatalogSubcategory, error)
	FindTagByName(ctx context.Context, name string) (*models.CatalogTag, error)

	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	End(ctx context.Context)
}
