// internal/models/catalog.go
package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogProduct is the document representation of a product. It carries
// the untruncated description, attributes, promotions and image URLs.
type CatalogProduct struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	ProductNo   string               `json:"productNo" bson:"productNo"`
	Name        string               `json:"name" bson:"name"`
	Category    primitive.ObjectID   `json:"category" bson:"category"`
	Subcategory *primitive.ObjectID  `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Description string               `json:"description" bson:"description"`
	Attributes  Attributes           `json:"attributes" bson:"attributes"`
	Price       float64              `json:"price" bson:"price"`
	Promotions  []Promotion          `json:"promotions" bson:"promotions"`
	Stock       int                  `json:"stock" bson:"stock"`
	Images      []string             `json:"images" bson:"images"`
	Tags        []primitive.ObjectID `json:"tags" bson:"tags"`
	Status      ProductStatus        `json:"status" bson:"status"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type Attributes struct {
	Color      string     `json:"color" bson:"color"`
	Material   []string   `json:"material" bson:"material"`
	Weight     float64    `json:"weight" bson:"weight"`
	Dimensions Dimensions `json:"dimensions" bson:"dimensions"`
}

func (a Attributes) Equal(other Attributes) bool {
	return a.Color == other.Color &&
		a.Weight == other.Weight &&
		a.Dimensions == other.Dimensions &&
		slices.Equal(a.Material, other.Material)
}

type Dimensions struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Depth  float64 `json:"depth" bson:"depth"`
}

type Promotion struct {
	Active        bool         `json:"active" bson:"active"`
	StartDate     time.Time    `json:"startDate" bson:"startDate"`
	EndDate       time.Time    `json:"endDate" bson:"endDate"`
	Description   string       `json:"description" bson:"description"`
	DiscountType  DiscountType `json:"discountType" bson:"discountType"`
	DiscountValue float64      `json:"discountValue" bson:"discountValue"`
}

// CurrentlyActive reports whether the promotion is flagged active and now
// falls strictly between its start and end dates.
func (p Promotion) CurrentlyActive(now time.Time) bool {
	return p.Active && p.StartDate.Before(now) && now.Before(p.EndDate)
}

type CatalogCategory struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}

type CatalogSubcategory struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Category primitive.ObjectID `json:"category" bson:"category"`
}

type CatalogTag struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}
