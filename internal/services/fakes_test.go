// internal/services/fakes_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/repositories"
)

var errInjected = errors.New("injected failure")

// faults fails the named operations with errInjected.
type faults struct {
	mu  sync.Mutex
	ops map[string]bool
}

func (f *faults) set(ops ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ops == nil {
		f.ops = map[string]bool{}
	}
	for _, op := range ops {
		f.ops[op] = true
	}
}

func (f *faults) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ops[op] {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

// ---- relational fake ----

type ledgerState struct {
	categories    map[string]models.Category
	subcategories map[string]models.Subcategory
	products      map[string]models.Product
	inventory     map[uint]models.Inventory
	cartItems     []models.CartItem
	orders        map[string]models.Order
	nextID        uint
}

func (s *ledgerState) clone() *ledgerState {
	c := &ledgerState{
		categories:    make(map[string]models.Category, len(s.categories)),
		subcategories: make(map[string]models.Subcategory, len(s.subcategories)),
		products:      make(map[string]models.Product, len(s.products)),
		inventory:     make(map[uint]models.Inventory, len(s.inventory)),
		cartItems:     append([]models.CartItem(nil), s.cartItems...),
		orders:        make(map[string]models.Order, len(s.orders)),
		nextID:        s.nextID,
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.subcategories {
		c.subcategories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]models.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	return c
}

type memLedger struct {
	faults
	mu        sync.Mutex
	state     *ledgerState
	begins    int
	commits   int
	rollbacks int
	stockSets int
}

func newMemLedger() *memLedger {
	return &memLedger{state: &ledgerState{
		categories:    map[string]models.Category{},
		subcategories: map[string]models.Subcategory{},
		products:      map[string]models.Product{},
		inventory:     map[uint]models.Inventory{},
		orders:        map[string]models.Order{},
		nextID:        1,
	}}
}

func (l *memLedger) id() uint {
	id := l.state.nextID
	l.state.nextID++
	return id
}

func (l *memLedger) open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.begins - l.commits - l.rollbacks
}

func (l *memLedger) setInventoryStock(productID uint, stock int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv := l.state.inventory[productID]
	inv.Stock = stock
	l.state.inventory[productID] = inv
}

func (l *memLedger) addCategory(name string) models.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := models.Category{Name: name}
	c.ID = l.id()
	l.state.categories[name] = c
	return c
}

func (l *memLedger) addSubcategory(name string, categoryID uint) models.Subcategory {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := models.Subcategory{Name: name, CategoryID: categoryID}
	s.ID = l.id()
	l.state.subcategories[name] = s
	return s
}

func (l *memLedger) addProduct(p models.Product, stock int) models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	p.ID = l.id()
	l.state.products[p.ProductNo] = p
	l.state.inventory[p.ID] = models.Inventory{ID: l.id(), ProductID: p.ID, Stock: stock}
	return p
}

func (l *memLedger) addCartItem(productID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := models.CartItem{CartID: l.id(), ProductID: productID, Quantity: 1}
	item.ID = l.id()
	l.state.cartItems = append(l.state.cartItems, item)
}

func (l *memLedger) addOrder(o models.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o.ID = l.id()
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if o.Items[i].OrderItemID == 0 {
			o.Items[i].OrderItemID = l.id()
		}
	}
	l.state.orders[o.OrderNo] = o
}

func (l *memLedger) product(productNo string) (models.Product, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.state.products[productNo]
	return p, ok
}

func (l *memLedger) inventoryFor(productID uint) (models.Inventory, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.state.inventory[productID]
	return inv, ok
}

func (l *memLedger) cartCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.cartItems)
}

func (l *memLedger) order(orderNo string) models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.orders[orderNo]
}

func (l *memLedger) Begin(ctx context.Context) (repositories.LedgerTx, error) {
	if err := l.check("Begin"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.begins++
	return &memLedgerTx{parent: l, state: l.state.clone()}, nil
}

type memLedgerTx struct {
	parent *memLedger
	state  *ledgerState
	done   bool
}

func (t *memLedgerTx) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	c, ok := t.state.categories[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memLedgerTx) FindSubcategoryByName(ctx context.Context, name string) (*models.Subcategory, error) {
	s, ok := t.state.subcategories[name]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (t *memLedgerTx) FindProductByNo(ctx context.Context, productNo string) (*models.Product, error) {
	p, ok := t.state.products[productNo]
	if !ok {
		return nil, nil
	}
	for _, c := range t.state.categories {
		if c.ID == p.CategoryID {
			p.Category = c
		}
	}
	if p.SubcategoryID != nil {
		for _, s := range t.state.subcategories {
			if s.ID == *p.SubcategoryID {
				sub := s
				p.Subcategory = &sub
			}
		}
	}
	if inv, ok := t.state.inventory[p.ID]; ok {
		p.Inventory = &inv
	}
	return &p, nil
}

func (t *memLedgerTx) ProductNoExists(ctx context.Context, productNo string) (bool, error) {
	_, ok := t.state.products[productNo]
	return ok, nil
}

func (t *memLedgerTx) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range t.state.products {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.ProductName), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (t *memLedgerTx) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := t.parent.check("CreateProduct"); err != nil {
		return err
	}
	product.ID = t.state.nextID
	t.state.nextID++
	t.state.products[product.ProductNo] = *product
	return nil
}

func (t *memLedgerTx) UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error {
	if err := t.parent.check("UpdateProduct"); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	p, ok := t.state.products[productNo]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "product_name":
			p.ProductName = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(decimal.Decimal)
		case "thumbnail_url":
			p.ThumbnailURL = v.(*string)
		case "category_id":
			p.CategoryID = v.(uint)
		case "subcategory_id":
			if v == nil {
				p.SubcategoryID = nil
			} else {
				id := v.(uint)
				p.SubcategoryID = &id
			}
		default:
			return fmt.Errorf("unexpected relational field %q", k)
		}
	}
	t.state.products[productNo] = p
	return nil
}

func (t *memLedgerTx) UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (repositories.UpdateResult, error) {
	var res repositories.UpdateResult
	for _, no := range productNos {
		p, ok := t.state.products[no]
		if !ok {
			continue
		}
		res.Matched++
		if p.Status != status {
			p.Status = status
			t.state.products[no] = p
			res.Modified++
		}
	}
	return res, nil
}

func (t *memLedgerTx) DeleteProduct(ctx context.Context, productID uint) error {
	if err := t.parent.check("DeleteProduct"); err != nil {
		return err
	}
	for no, p := range t.state.products {
		if p.ID == productID {
			for _, item := range t.state.cartItems {
				if item.ProductID == productID {
					return errors.New("foreign key violation: cart_items.product_id")
				}
			}
			delete(t.state.products, no)
			return nil
		}
	}
	return repositories.ErrRecordNotFound
}

func (t *memLedgerTx) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	if err := t.parent.check("CreateInventory"); err != nil {
		return err
	}
	inventory.ID = t.state.nextID
	t.state.nextID++
	t.state.inventory[inventory.ProductID] = *inventory
	return nil
}

func (t *memLedgerTx) UpdateInventoryStock(ctx context.Context, productID uint, stock int) error {
	t.parent.mu.Lock()
	t.parent.stockSets++
	t.parent.mu.Unlock()
	inv, ok := t.state.inventory[productID]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	inv.Stock = stock
	t.state.inventory[productID] = inv
	return nil
}

func (t *memLedgerTx) DeleteInventory(ctx context.Context, productID uint) error {
	delete(t.state.inventory, productID)
	return nil
}

func (t *memLedgerTx) DeleteCartItemsByProductNos(ctx context.Context, productNos []string) (int64, error) {
	ids := map[uint]bool{}
	for _, no := range productNos {
		if p, ok := t.state.products[no]; ok {
			ids[p.ID] = true
		}
	}
	kept := t.state.cartItems[:0:0]
	var removed int64
	for _, item := range t.state.cartItems {
		if ids[item.ProductID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	t.state.cartItems = kept
	return removed, nil
}

func (t *memLedgerTx) CountOrderItemsByProductNo(ctx context.Context, productNo string) (int64, error) {
	var n int64
	for _, o := range t.state.orders {
		for _, item := range o.Items {
			if item.ProductNo == productNo {
				n++
			}
		}
	}
	return n, nil
}

func (t *memLedgerTx) FindOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	o, ok := t.state.orders[orderNo]
	if !ok {
		return nil, nil
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (t *memLedgerTx) SaveOrder(ctx context.Context, order *models.Order) error {
	if err := t.parent.check("SaveOrder"); err != nil {
		return err
	}
	o := *order
	o.Items = append([]models.OrderItem(nil), order.Items...)
	t.state.orders[order.OrderNo] = o
	return nil
}

func (t *memLedgerTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	if err := t.parent.check("Commit"); err != nil {
		return err
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.state = t.state
	t.parent.commits++
	t.done = true
	return nil
}

func (t *memLedgerTx) Rollback() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.rollbacks++
	t.done = true
	return nil
}

// ---- document fake ----

type catalogState struct {
	products      map[string]models.CatalogProduct
	categories    map[string]models.CatalogCategory
	subcategories map[string]models.CatalogSubcategory
	tags          map[string]models.CatalogTag
}

func (s *catalogState) clone() *catalogState {
	c := &catalogState{
		products:      make(map[string]models.CatalogProduct, len(s.products)),
		categories:    s.categories,
		subcategories: s.subcategories,
		tags:          s.tags,
	}
	for k, v := range s.products {
		v.Images = append([]string(nil), v.Images...)
		v.Promotions = append([]models.Promotion(nil), v.Promotions...)
		c.products[k] = v
	}
	return c
}

type memCatalog struct {
	faults
	mu       sync.Mutex
	state    *catalogState
	commits  int
	aborts   int
	sessions int
	ended    int
	updates  []map[string]any
}

func newMemCatalog() *memCatalog {
	return &memCatalog{state: &catalogState{
		products:      map[string]models.CatalogProduct{},
		categories:    map[string]models.CatalogCategory{},
		subcategories: map[string]models.CatalogSubcategory{},
		tags:          map[string]models.CatalogTag{},
	}}
}

func (c *memCatalog) addCategory(name string) models.CatalogCategory {
	cat := models.CatalogCategory{ID: primitive.NewObjectID(), Name: name}
	c.state.categories[name] = cat
	return cat
}

func (c *memCatalog) addSubcategory(name string, category primitive.ObjectID) models.CatalogSubcategory {
	sub := models.CatalogSubcategory{ID: primitive.NewObjectID(), Name: name, Category: category}
	c.state.subcategories[name] = sub
	return sub
}

func (c *memCatalog) addTag(name string) models.CatalogTag {
	tag := models.CatalogTag{ID: primitive.NewObjectID(), Name: name}
	c.state.tags[name] = tag
	return tag
}

func (c *memCatalog) addProduct(p models.CatalogProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.ID = primitive.NewObjectID()
	c.state.products[p.ProductNo] = p
}

func (c *memCatalog) product(productNo string) (models.CatalogProduct, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.state.products[productNo]
	return p, ok
}

// open counts sessions that have not been ended.
func (c *memCatalog) open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions - c.ended
}

func (c *memCatalog) lastUpdate() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		return nil
	}
	return c.updates[len(c.updates)-1]
}

func (c *memCatalog) Begin(ctx context.Context) (repositories.CatalogTx, error) {
	if err := c.check("Begin"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions++
	return &memCatalogTx{parent: c, state: c.state.clone()}, nil
}

type memCatalogTx struct {
	parent *memCatalog
	state  *catalogState
	done   bool
}

func (t *memCatalogTx) FindProduct(ctx context.Context, productNo string) (*models.CatalogProduct, error) {
	if err := t.parent.check("FindProduct"); err != nil {
		return nil, err
	}
	p, ok := t.state.products[productNo]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *memCatalogTx) InsertProduct(ctx context.Context, product *models.CatalogProduct) error {
	if err := t.parent.check("InsertProduct"); err != nil {
		return err
	}
	product.ID = primitive.NewObjectID()
	t.state.products[product.ProductNo] = *product
	return nil
}

func (t *memCatalogTx) UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error {
	if err := t.parent.check("UpdateProduct"); err != nil {
		return err
	}
	t.parent.mu.Lock()
	t.parent.updates = append(t.parent.updates, fields)
	t.parent.mu.Unlock()
	if len(fields) == 0 {
		return nil
	}
	p, ok := t.state.products[productNo]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "images":
			p.Images = v.([]string)
		case "attributes":
			p.Attributes = v.(models.Attributes)
		case "tags":
			p.Tags = v.([]primitive.ObjectID)
		case "stock":
			p.Stock = v.(int)
		case "promotions":
			p.Promotions = v.([]models.Promotion)
		case "category":
			p.Category = v.(primitive.ObjectID)
		case "subcategory":
			if v == nil {
				p.Subcategory = nil
			} else {
				id := v.(primitive.ObjectID)
				p.Subcategory = &id
			}
		default:
			return fmt.Errorf("unexpected catalog field %q", k)
		}
	}
	t.state.products[productNo] = p
	return nil
}

func (t *memCatalogTx) UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (repositories.UpdateResult, error) {
	var res repositories.UpdateResult
	for _, no := range productNos {
		p, ok := t.state.products[no]
		if !ok {
			continue
		}
		res.Matched++
		if p.Status != status {
			p.Status = status
			t.state.products[no] = p
			res.Modified++
		}
	}
	return res, nil
}

func (t *memCatalogTx) DeleteProduct(ctx context.Context, productNo string) error {
	if err := t.parent.check("DeleteProduct"); err != nil {
		return err
	}
	if _, ok := t.state.products[productNo]; !ok {
		return repositories.ErrRecordNotFound
	}
	delete(t.state.products, productNo)
	return nil
}

func (t *memCatalogTx) FindCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogCategory, error) {
	for _, c := range t.state.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (t *memCatalogTx) FindCategoryByName(ctx context.Context, name string) (*models.CatalogCategory, error) {
	c, ok := t.state.categories[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memCatalogTx) FindSubcategoryByName(ctx context.Context, name string) (*models.CatalogSubcategory, error) {
	s, ok := t.state.subcategories[name]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (t *memCatalogTx) FindTagByName(ctx context.Context, name string) (*models.CatalogTag, error) {
	tag, ok := t.state.tags[name]
	if !ok {
		return nil, nil
	}
	return &tag, nil
}

func (t *memCatalogTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	if err := t.parent.check("Commit"); err != nil {
		return err
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.state = t.state
	t.parent.commits++
	t.done = true
	return nil
}

func (t *memCatalogTx) Abort(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.aborts++
	t.done = true
	return nil
}

func (t *memCatalogTx) End(ctx context.Context) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.ended++
}

// ---- image pipeline fake ----

type recordingPipeline struct {
	mu         sync.Mutex
	processed  []string
	deleted    []string
	failImages map[string]bool
	failDelete bool
	onProcess  func()
}

func (p *recordingPipeline) Process(ctx context.Context, upload ImageUpload) (string, error) {
	if p.onProcess != nil {
		p.onProcess()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failImages[upload.FileName] {
		return "", fmt.Errorf("%w: cannot encode %s", ErrAsset, upload.FileName)
	}
	url := "https://cdn.test/" + strings.TrimSuffix(upload.FileName, ".png")
	p.processed = append(p.processed, url)
	return url, nil
}

func (p *recordingPipeline) Delete(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, url)
	if p.failDelete {
		return errors.New("storage unavailable")
	}
	return nil
}
