// internal/repositories/mongodb/catalog.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/repositories"
)

const (
	ProductsCollection      = "products"
	CategoriesCollection    = "categories"
	SubcategoriesCollection = "subcategories"
	TagsCollection          = "tags"
)

// Catalog implements repositories.Catalog with multi-document transactions.
// The target deployment must be a replica set or sharded cluster.
type Catalog struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewCatalog(client *mongo.Client, database string) *Catalog {
	return &Catalog{
		client: client,
		db:     client.Database(database),
	}
}

func (c *Catalog) Begin(ctx context.Context) (repositories.CatalogTx, error) {
	session, err := c.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start catalog session: %w", err)
	}

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, fmt.Errorf("failed to start catalog transaction: %w", err)
	}

	return &catalogTx{session: session, db: c.db}, nil
}

type catalogTx struct {
	session mongo.Session
	db      *mongo.Database
}

// sc binds ctx to the transaction's session so every operation joins it.
func (t *catalogTx) sc(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, t.session)
}

func (t *catalogTx) products() *mongo.Collection {
	return t.db.Collection(ProductsCollection)
}

func (t *catalogTx) FindProduct(ctx context.Context, productNo string) (*models.CatalogProduct, error) {
	var product models.CatalogProduct
	err := t.products().FindOne(t.sc(ctx), bson.M{"productNo": productNo}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find catalog product: %w", err)
	}
	return &product, nil
}

func (t *catalogTx) InsertProduct(ctx context.Context, product *models.CatalogProduct) error {
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	res, err := t.products().InsertOne(t.sc(ctx), product)
	if err != nil {
		return fmt.Errorf("failed to insert catalog product: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (t *catalogTx) UpdateProduct(ctx context.Context, productNo string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := t.products().UpdateOne(t.sc(ctx), bson.M{"productNo": productNo}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update catalog product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("catalog product %s: %w", productNo, repositories.ErrRecordNotFound)
	}
	return nil
}

func (t *catalogTx) UpdateProductStatus(ctx context.Context, productNos []string, status models.ProductStatus) (repositories.UpdateResult, error) {
	res, err := t.products().UpdateMany(t.sc(ctx),
		bson.M{"productNo": bson.M{"$in": productNos}},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return repositories.UpdateResult{}, fmt.Errorf("failed to update catalog product status: %w", err)
	}
	return repositories.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (t *catalogTx) DeleteProduct(ctx context.Context, productNo string) error {
	res, err := t.products().DeleteOne(t.sc(ctx), bson.M{"productNo": productNo})
	if err != nil {
		return fmt.Errorf("failed to delete catalog product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("catalog product %s: %w", productNo, repositories.ErrRecordNotFound)
	}
	return nil
}

func (t *catalogTx) FindCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogCategory, error) {
	var category models.CatalogCategory
	if err := findOne(t.sc(ctx), t.db.Collection(CategoriesCollection), bson.M{"_id": id}, &category); err != nil {
		return nil, err
	}
	if category.ID.IsZero() {
		return nil, nil
	}
	return &category, nil
}

func (t *catalogTx) FindCategoryByName(ctx context.Context, name string) (*models.CatalogCategory, error) {
	var category models.CatalogCategory
	if err := findOne(t.sc(ctx), t.db.Collection(CategoriesCollection), bson.M{"name": name}, &category); err != nil {
		return nil, err
	}
	if category.ID.IsZero() {
		return nil, nil
	}
	return &category, nil
}

func (t *catalogTx) FindSubcategoryByName(ctx context.Context, name string) (*models.CatalogSubcategory, error) {
	var subcategory models.CatalogSubcategory
	if err := findOne(t.sc(ctx), t.db.Collection(SubcategoriesCollection), bson.M{"name": name}, &subcategory); err != nil {
		return nil, err
	}
	if subcategory.ID.IsZero() {
		return nil, nil
	}
	return &subcategory, nil
}

func (t *catalogTx) FindTagByName(ctx context.Context, name string) (*models.CatalogTag, error) {
	var tag models.CatalogTag
	if err := findOne(t.sc(ctx), t.db.Collection(TagsCollection), bson.M{"name": name}, &tag); err != nil {
		return nil, err
	}
	if tag.ID.IsZero() {
		return nil, nil
	}
	return &tag, nil
}

func (t *catalogTx) Commit(ctx context.Context) error {
	if err := t.session.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog transaction: %w", err)
	}
	return nil
}

func (t *catalogTx) Abort(ctx context.Context) error {
	if err := t.session.AbortTransaction(ctx); err != nil {
		return fmt.Errorf("failed to abort catalog transaction: %w", err)
	}
	return nil
}

func (t *catalogTx) End(ctx context.Context) {
	t.session.EndSession(ctx)
}

// findOne leaves out untouched when no document matches.
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return nil
}
