package catalog

import "errors"

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateName is returned when a product with the same name already exists.
	ErrDuplicateName = errors.New("product name already exists")
)

// Product is a catalog entry.
type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Price         float64 `json:"price"`
	Description   string  `json:"description,omitempty"`
	StockQuantity int     `json:"stockQuantity"`
}

// CreateProductRequest is the payload for adding a product to the catalog.
type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	URL           string  `json:"url" validate:"required,url,max=2048"`
	Price         float64 `json:"price" validate:"gte=0,lte=1000000"`
	Description   string  `json:"description" validate:"max=2000"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
}

// UpdateStockQuantityRequest sets the absolute stock level of a product.
type UpdateStockQuantityRequest struct {
	ID            int `json:"id" validate:"gte=1"`
	StockQuantity int `json:"stockQuantity" validate:"gte=0"`
}
