package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/vikingspartan/EveraPharm-sub000/internal/middleware"
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
	"github.com/vikingspartan/EveraPharm-sub000/internal/services"
)

// OrderHandler handles HTTP requests for orders and their prescriptions.
type OrderHandler struct {
	orders        *services.OrderService
	prescriptions *services.PrescriptionService
	validate      *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, prescriptions *services.PrescriptionService) *OrderHandler {
	return &OrderHandler{
		orders:        orders,
		prescriptions: prescriptions,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/prescription", h.HandleAttachPrescription)
}

// HandleGetOrders lists orders. Customers only ever see their own orders;
// admins may filter by any customer.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if middleware.ActorRole(c) == models.RoleAdmin {
		filter.CustomerID = c.Query("customer_id")
	} else {
		filter.CustomerID = middleware.ActorID(c)
	}

	orders, total, err := h.orders.GetOrders(filter)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return errorResponse(c, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"orders":    orders,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orders.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return errorResponse(c, "Could not retrieve order", err)
	}
	if middleware.ActorRole(c) != models.RoleAdmin && order.CustomerID != middleware.ActorID(c) {
		return errorResponse(c, "Order access denied", models.ErrForbidden)
	}
	return c.JSON(order)
}

// CreateOrderRequest is the checkout request body. The customer is the
// authenticated actor, never a body field.
type CreateOrderRequest struct {
	Items           []services.CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string                          `json:"shipping_address" validate:"required,max=500"`
	BillingAddress  string                          `json:"billing_address" validate:"omitempty,max=500"`
	PaymentMethod   string                          `json:"payment_method" validate:"required,max=32"`
	Notes           string                          `json:"notes" validate:"omitempty,max=500"`
	Discount        decimal.Decimal                 `json:"discount"`
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
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

	input := services.CreateOrderInput{
		CustomerID:      middleware.ActorID(c),
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Discount:        req.Discount,
	}

	createdOrder, err := h.orders.CreateOrder(input)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return errorResponse(c, "Could not create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderStatus updates the status of an existing order. The
// service enforces that only an ADMIN actor may do this.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.orders.UpdateStatus(orderID, updateData.Status, middleware.ActorRole(c))
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return errorResponse(c, "Could not update order status", err)
	}

	return c.JSON(order)
}

// HandleAttachPrescription uploads prescription details for an order.
func (h *OrderHandler) HandleAttachPrescription(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var input services.AttachPrescriptionInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing prescription request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
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

	prescription, err := h.prescriptions.Attach(orderID, input)
	if err != nil {
		log.Printf("Error attaching prescription to order %s: %v", orderID, err)
		return errorResponse(c, "Could not attach prescription", err)
	}

	return c.Status(fiber.StatusCreated).JSON(prescription)
}
