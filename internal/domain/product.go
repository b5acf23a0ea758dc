package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Price       float64        `json:"price" db:"price"`
	Images      []ProductImage `json:"product_images"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ProductImage is one image of a product. A product owns an ordered
// sequence of images, ascending by DisplayOrder.
type ProductImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	URL          string    `json:"url" db:"url"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
}

// CartProduct is the projection of a product exposed when listing a
// cart: id, name, price and the image url/display_order pairs only.
type CartProduct struct {
	ID     uuid.UUID          `json:"id"`
	Name   string             `json:"name"`
	Price  float64            `json:"price"`
	Images []CartProductImage `json:"product_images"`
}

// CartProductImage is the image projection used by CartProduct.
type CartProductImage struct {
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}
