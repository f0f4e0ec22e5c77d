package app

import (
	"fmt"
	"io"

	"productapi/internal/config"
	"productapi/internal/metrics"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultProducts is the catalog loaded at startup when seeding is enabled.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Laptop", Description: "Powerful laptop for work and gaming", Price: 1200, Category: "Electronics", InStock: true},
		{ID: "2", Name: "Mouse", Description: "Wireless optical mouse", Price: 25, Category: "Electronics", InStock: true},
		{ID: "3", Name: "Keyboard", Description: "Mechanical gaming keyboard", Price: 75, Category: "Electronics", InStock: false},
		{ID: "4", Name: "Monitor", Description: "27-inch 4K display", Price: 300, Category: "Electronics", InStock: true},
	}
}

// Build wires every dependency described by cfg and returns the app together
// with a function releasing what Build opened.
func Build(cfg *config.Config, log *zap.Logger, accessLog io.Writer) (*fiber.App, func(), error) {
	apiKeys, err := services.NewAPIKeyService(cfg.APIKey, cfg.APIKeyHash)
	if err != nil {
		return nil, nil, err
	}

	var ids repositories.IDGenerator = repositories.NewSequenceIDGenerator()
	if cfg.IDStrategy == config.IDStrategyUUID {
		ids = repositories.UUIDGenerator{}
	}
	productRepo := repositories.NewMemoryProductRepository(ids)
	if cfg.SeedProducts {
		seed := DefaultProducts()
		productRepo.Seed(seed...)
		log.Info("seeded products", zap.Int("count", len(seed)))
	}

	cleanup := func() {}
	opts := []services.ProductServiceOption{
		services.WithLogger(log),
		services.WithReadDelay(cfg.ReadDelay),
	}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		log.Info("publishing product events", zap.String("queue", cfg.RabbitMQQueue))
		opts = append(opts, services.WithEventPublisher(mqClient))
		cleanup = func() {
			if err := mqClient.Close(); err != nil {
				log.Warn("failed to close RabbitMQ client", zap.Error(err))
			}
		}
	}
	productService := services.NewProductService(productRepo, opts...)

	app := New(Dependencies{
		Products:         productService,
		APIKeys:          apiKeys,
		Metrics:          metrics.New(productRepo.Count),
		Log:              log,
		CreateValidation: cfg.CreateValidation,
		UpdateValidation: cfg.UpdateValidation,
		ReadTimeout:      cfg.ReadTimeout,
		AccessLog:        accessLog,
	})
	return app, cleanup, nil
}
