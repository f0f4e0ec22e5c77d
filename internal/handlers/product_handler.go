package handlers

import (
	"time"

	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service      *services.ProductService
	validator    *validation.Validator
	createPolicy validation.Policy
	updatePolicy validation.Policy
	readTimeout  time.Duration
}

// ProductHandlerOption configures a ProductHandler.
type ProductHandlerOption func(*ProductHandler)

// WithReadTimeout bounds GET /:id. A request still waiting on the read delay
// when d elapses is answered with 408. Zero disables the bound.
func WithReadTimeout(d time.Duration) ProductHandlerOption {
	return func(h *ProductHandler) {
		h.readTimeout = d
	}
}

// NewProductHandler creates a new ProductHandler. Payloads of POST are checked
// with createPolicy, payloads of PUT with updatePolicy.
func NewProductHandler(service *services.ProductService, createPolicy, updatePolicy validation.Policy, opts ...ProductHandlerOption) *ProductHandler {
	h := &ProductHandler{
		service:      service,
		validator:    validation.New(),
		createPolicy: createPolicy,
		updatePolicy: updatePolicy,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the product routes on router. guards run before
// every product route and only on those routes, e.g. the API key check.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	chain := func(handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), handlers...)
	}

	getByID := h.HandleGetProductByID
	if h.readTimeout > 0 {
		getByID = timeout.NewWithContext(h.HandleGetProductByID, h.readTimeout)
	}

	router.Get("/", chain(h.HandleGetProducts)...)
	router.Get("/:id", chain(getByID)...)
	router.Post("/", chain(
		middleware.ParseJSONBody(),
		middleware.ValidateProduct(h.validator, h.createPolicy),
		h.HandleCreateProduct,
	)...)
	router.Put("/:id", chain(
		middleware.ParseJSONBody(),
		middleware.ValidateProduct(h.validator, h.updatePolicy),
		h.HandleUpdateProduct,
	)...)
	router.Delete("/:id", chain(h.HandleDeleteProduct)...)
}

// HandleGetProducts retrieves all products in store order.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return err
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product from a validated payload.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	created, err := h.service.CreateProduct(models.PatchFromPayload(middleware.Payload(c)))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct merges a validated payload over an existing product.
// An id in the payload is ignored.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	updated, err := h.service.UpdateProduct(c.Params("id"), models.PatchFromPayload(middleware.Payload(c)))
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// HandleDeleteProduct removes a product and answers 204 with no body.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
