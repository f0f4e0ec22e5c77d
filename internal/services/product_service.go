package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productapi/internal/apperror"
	"productapi/internal/models"
	"productapi/internal/repositories"

	"go.uber.org/zap"
)

// EventPublisher delivers product change events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       *zap.Logger
	readDelay time.Duration
	now       func() time.Time
}

// ProductServiceOption configures a ProductService.
type ProductServiceOption func(*ProductService)

// WithEventPublisher publishes an event after every successful mutation.
func WithEventPublisher(p EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.publisher = p
	}
}

// WithReadDelay waits d before every single-product lookup.
func WithReadDelay(d time.Duration) ProductServiceOption {
	return func(s *ProductService) {
		s.readDelay = d
	}
}

// WithLogger sets the logger used for publishing diagnostics.
func WithLogger(log *zap.Logger) ProductServiceOption {
	return func(s *ProductService) {
		s.log = log
	}
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		repo: repo,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllProducts retrieves all products in store order.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, apperror.Unexpected(fmt.Errorf("failed to list products: %w", err))
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID. The configured read
// delay happens before the lookup, never between a read and a write. The wait
// ends early when ctx is done, e.g. when the handler runs under a timeout.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	if s.readDelay > 0 {
		timer := time.NewTimer(s.readDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return models.Product{}, apperror.Unexpected(ctx.Err())
		}
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return models.Product{}, storeError(id, err)
	}
	return product, nil
}

// CreateProduct stores a new product built from patch.
func (s *ProductService) CreateProduct(patch models.ProductPatch) (models.Product, error) {
	var draft models.Product
	patch.Apply(&draft)

	created, err := s.repo.Create(draft)
	if err != nil {
		return models.Product{}, apperror.Unexpected(fmt.Errorf("failed to create product: %w", err))
	}
	s.publish(models.ProductCreated, created.ID, &created)
	return created, nil
}

// UpdateProduct merges patch over an existing product.
func (s *ProductService) UpdateProduct(id string, patch models.ProductPatch) (models.Product, error) {
	updated, err := s.repo.Update(id, patch)
	if err != nil {
		return models.Product{}, storeError(id, err)
	}
	s.publish(models.ProductUpdated, updated.ID, &updated)
	return updated, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return storeError(id, err)
	}
	s.publish(models.ProductDeleted, id, nil)
	return nil
}

// CountProducts returns the number of products in the store.
func (s *ProductService) CountProducts() int {
	return s.repo.Count()
}

// publish never fails the request; a broker outage only costs the event.
func (s *ProductService) publish(eventType models.ProductEventType, id string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(event); err != nil {
		s.log.Warn("failed to publish product event",
			zap.String("type", string(eventType)),
			zap.String("product_id", id),
			zap.Error(err),
		)
	}
}

// storeError turns a repository failure for id into the client-facing failure.
func storeError(id string, err error) *apperror.Error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return apperror.NotFound("Product with ID %s not found", id)
	}
	return apperror.Unexpected(err)
}
