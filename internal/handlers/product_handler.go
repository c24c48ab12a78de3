package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/vikingspartan/EveraPharm-sub000/internal/middleware"
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Get("/:id/stock", h.HandleGetStock)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/restock", h.HandleRestock)
}

// requireAdmin reports whether the authenticated actor is an admin.
func (h *ProductHandler) requireAdmin(c *fiber.Ctx) bool {
	return middleware.ActorRole(c) == models.RoleAdmin
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return errorResponse(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return errorResponse(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleGetStock returns the inventory record and low-stock flag for a product.
func (h *ProductHandler) HandleGetStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	inventory, err := h.service.GetStock(productID)
	if err != nil {
		log.Printf("Error getting stock for product %s: %v", productID, err)
		return errorResponse(c, "Could not retrieve stock", err)
	}
	return c.JSON(fiber.Map{
		"inventory": inventory,
		"low_stock": inventory.IsLowStock(),
	})
}

// CreateProductRequest is the admin request body for adding a product along
// with its opening stock.
type CreateProductRequest struct {
	SKU                  string          `json:"sku" validate:"required,min=3,max=64"`
	Name                 string          `json:"name" validate:"required,min=3,max=100"`
	Description          string          `json:"description" validate:"omitempty,max=500"`
	Price                decimal.Decimal `json:"price"`
	RequiresPrescription bool            `json:"requires_prescription"`
	InitialStock         int             `json:"initial_stock" validate:"gte=0"`
	ReorderLevel         int             `json:"reorder_level" validate:"gte=0"`
}

// HandleCreateProduct creates a new product; admin only.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	if !h.requireAdmin(c) {
		return errorResponse(c, "Product management requires admin role", models.ErrForbidden)
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Price must be greater than zero",
		})
	}

	product := &models.Product{
		SKU:                  req.SKU,
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		RequiresPrescription: req.RequiresPrescription,
	}
	if err := h.service.CreateProduct(product, req.InitialStock, req.ReorderLevel); err != nil {
		log.Printf("Error creating product: %v", err)
		return errorResponse(c, "Could not create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product; admin only.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	if !h.requireAdmin(c) {
		return errorResponse(c, "Product management requires admin role", models.ErrForbidden)
	}

	productID := c.Params("id")
	existing, err := h.service.GetProductByID(productID)
	if err != nil {
		return errorResponse(c, "Could not retrieve product", err)
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	existing.SKU = req.SKU
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Price = req.Price
	existing.RequiresPrescription = req.RequiresPrescription

	if err := h.validate.Struct(existing); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.service.UpdateProduct(existing); err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return errorResponse(c, "Could not update product", err)
	}
	return c.JSON(existing)
}

// HandleDeleteProduct deletes a product; admin only.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if !h.requireAdmin(c) {
		return errorResponse(c, "Product management requires admin role", models.ErrForbidden)
	}

	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return errorResponse(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
	})
}

// HandleRestock adds stock to a product; admin only.
func (h *ProductHandler) HandleRestock(c *fiber.Ctx) error {
	if !h.requireAdmin(c) {
		return errorResponse(c, "Restocking requires admin role", models.ErrForbidden)
	}

	productID := c.Params("id")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.Restock(productID, req.Quantity); err != nil {
		log.Printf("Error restocking product %s: %v", productID, err)
		return errorResponse(c, "Could not restock product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s restocked with %d units", productID, req.Quantity),
	})
}
