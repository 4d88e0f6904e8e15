// internal/repositories/postgres/ledger.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/repositories"
	"github.com/hearthline/commerce-api/internal/utils"
)

// Ledger implements repositories.Ledger on top of gorm.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Begin(ctx context.Context) (repositories.LedgerTx, error) {
	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin relational transaction: %w", tx.Error)
	}
	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) db(ctx context.Context) *gorm.DB {
	return t.tx.WithContext(ctx)
}

func (t *ledgerTx) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := t.db(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (t *ledgerTx) FindSubcategoryByName(ctx context.Context, name string) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := t.db(ctx).Where("name = ?", name).First(&subcategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subcategory: %w", err)
	}
	return &subcategory, nil
}

func (t *ledgerTx) FindProductByNo(ctx context.Context, productNo string) (*models.Product, error) {
	var product models.Product
	err := t.db(ctx).Preload("Inventory").Preload("Category").Preload("Subcategory").
		Where("product_no = ?", productNo).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (t *ledgerTx) ProductNoExists(ctx context.Context, productNo string) (bool, error) {
	var count int64
	if err := t.db(ctx).Model(&models.Product{}).
		Where("product_no = ?", productNo).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product number: %w", err)
	}
	return count > 0, nil
}

func (t *ledgerTx) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	query := t.db(ctx).Model(&models.Product{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(product_name) LIKE ? OR LOWER(product_no) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "product_name", "product_no", "price"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var products []models.Product
	if err := query.Preload("Inventory").Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (t *ledgerTx) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := t.db(ctx).Omit("Category", "Subcategory", "Inventory").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (t *ledgerTx) UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := t.db(ctx).Model(&models.Product{}).
		Where("product_no = ?", productNo).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productNo, repositories.ErrRecordNotFound)
	}
	return nil
}

// UpdateProductStatus counts matching rows separately from changed rows so
// callers can tell a missing product from a no-op write.
func (t *ledgerTx) UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (repositories.UpdateResult, error) {
	var res repositories.UpdateResult

	if err := t.db(ctx).Model(&models.Product{}).
		Where("product_no IN ?", productNos).
		Count(&res.Matched).Error; err != nil {
		return res, fmt.Errorf("failed to count products: %w", err)
	}

	result := t.db(ctx).Model(&models.Product{}).
		Where("product_no IN ? AND status <> ?", productNos, status).
		Update("status", status)
	if result.Error != nil {
		return res, fmt.Errorf("failed to update product status: %w", result.Error)
	}
	res.Modified = result.RowsAffected

	return res, nil
}

func (t *ledgerTx) DeleteProduct(ctx context.Context, productID uint) error {
	result := t.db(ctx).Delete(&models.Product{}, productID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, repositories.ErrRecordNotFound)
	}
	return nil
}

func (t *ledgerTx) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	if err := t.db(ctx).Create(inventory).Error; err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

func (t *ledgerTx) UpdateInventoryStock(ctx context.Context, productID uint, stock int) error {
	result := t.db(ctx).Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to update inventory: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory for product %d: %w", productID, repositories.ErrRecordNotFound)
	}
	return nil
}

func (t *ledgerTx) DeleteInventory(ctx context.Context, productID uint) error {
	if err := t.db(ctx).Where("product_id = ?", productID).Delete(&models.Inventory{}).Error; err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}
	return nil
}

func (t *ledgerTx) DeleteCartItemsByProductNos(ctx context.Context, productNos []string) (int64, error) {
	productIDs := t.db(ctx).Model(&models.Product{}).
		Select("id").
		Where("product_no IN ?", productNos)

	result := t.db(ctx).Where("product_id IN (?)", productIDs).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete cart items: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (t *ledgerTx) CountOrderItemsByProductNo(ctx context.Context, productNo string) (int64, error) {
	var count int64
	if err := t.db(ctx).Model(&models.OrderItem{}).
		Where("product_no = ?", productNo).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}

func (t *ledgerTx) FindOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var order models.Order
	err := t.db(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_item_id") }).
		Where("order_no = ?", orderNo).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (t *ledgerTx) SaveOrder(ctx context.Context, order *models.Order) error {
	if err := t.db(ctx).Omit("Items").Save(order).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	for i := range order.Items {
		if err := t.db(ctx).Save(&order.Items[i]).Error; err != nil {
			return fmt.Errorf("failed to save order item %d: %w", order.Items[i].OrderItemID, err)
		}
	}
	return nil
}

func (t *ledgerTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *ledgerTx) Rollback() error {
	return t.tx.Rollback().Error
}
