package repositories

import (
	"fmt"
	"sync"

	"productapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Every method holds the lock for its whole duration, so each operation
// completes before another one touching the same data starts.
type MemoryProductRepository struct {
	products []models.Product
	ids      IDGenerator
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates an empty repository using ids for new products.
func NewMemoryProductRepository(ids IDGenerator) *MemoryProductRepository {
	if ids == nil {
		ids = NewSequenceIDGenerator()
	}
	return &MemoryProductRepository{
		ids: ids,
	}
}

// Seed appends products keeping their ids. Products whose id is empty or
// already present are given a fresh one.
func (r *MemoryProductRepository) Seed(products ...models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		if p.ID == "" || r.indexOf(p.ID) >= 0 {
			p.ID = r.nextFreeID()
		}
		r.ids.Observe(p.ID)
		r.products = append(r.products, p)
	}
}

// GetAll returns a copy of all products in insertion order.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, len(r.products))
	copy(productList, r.products)
	return productList, nil
}

// GetByID returns the product with the given id.
func (r *MemoryProductRepository) GetByID(id string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return r.products[i], nil
}

// Create assigns a new id to draft, appends it and returns the stored record.
// Any id set on the draft is ignored.
func (r *MemoryProductRepository) Create(draft models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft.ID = r.nextFreeID()
	r.products = append(r.products, draft)
	return draft, nil
}

// Update merges patch over the product with the given id.
func (r *MemoryProductRepository) Update(id string, patch models.ProductPatch) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("product with ID %s not found for update: %w", id, ErrProductNotFound)
	}
	patch.Apply(&r.products[i])
	return r.products[i], nil
}

// Delete removes the first product with the given id.
func (r *MemoryProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrProductNotFound)
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

func (r *MemoryProductRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

// nextFreeID skips ids that are already taken, e.g. a seeded "7" the
// sequence has not reached yet. Callers hold the write lock.
func (r *MemoryProductRepository) nextFreeID() string {
	for {
		id := r.ids.NextID()
		if r.indexOf(id) < 0 {
			return id
		}
	}
}
