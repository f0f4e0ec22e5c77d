package repositories

import (
	"errors"

	"productapi/internal/models"
)

// ErrProductNotFound is wrapped by every lookup that matches no product.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
// Implementations keep insertion order and assign ids themselves.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (models.Product, error)
	Create(draft models.Product) (models.Product, error)
	Update(id string, patch models.ProductPatch) (models.Product, error)
	Delete(id string) error
	Count() int
}
