package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
	"github.com/vikingspartan/EveraPharm-sub000/pkg/rabbitmq"
)

// CreateOrderItemInput is one requested line at checkout.
type CreateOrderItemInput struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	Discount    decimal.Decimal `json:"discount"`
	BatchNumber string          `json:"batch_number,omitempty"`
}

// CreateOrderInput is the checkout request handed to the orchestrator. The
// customer ID comes from the authenticated actor, never from the body.
type CreateOrderInput struct {
	CustomerID      string
	Items           []CreateOrderItemInput
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Notes           string
	Discount        decimal.Decimal
}

// OrderService orchestrates the order lifecycle: checkout, status
// transitions and the inventory bookkeeping they imply.
type OrderService struct {
	uow           repositories.UnitOfWork
	orderRepo     repositories.OrderRepository
	inventoryRepo repositories.InventoryRepository
	pricing       *PricingCalculator
	mqClient      *rabbitmq.Client // RabbitMQ client
	now           func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	uow repositories.UnitOfWork,
	orderRepo repositories.OrderRepository,
	inventoryRepo repositories.InventoryRepository,
	pricing *PricingCalculator,
	mqClient *rabbitmq.Client,
) *OrderService {
	return &OrderService{
		uow:           uow,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		pricing:       pricing,
		mqClient:      mqClient,
		now:           time.Now,
	}
}

// WithClock overrides the time source; test hook.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// GetOrders retrieves orders matching the filter with the total match count.
func (s *OrderService) GetOrders(filter repositories.OrderFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder runs the whole checkout inside one unit of work: product
// lookups, pricing, order persistence and one inventory reservation per
// line. If any reservation fails the order and every prior reservation roll
// back together; there is no partial order.
//
// Unit prices and the prescription flag are snapshotted onto the order items
// here; later product changes never affect this order.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("customer ID is required for an order")
	}
	if len(input.Items) == 0 {
		return nil, models.ErrEmptyOrder
	}

	var created *models.Order
	err := s.uow.Do(func(r repositories.RepositorySet) error {
		lines := make([]PriceLine, 0, len(input.Items))
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, requested := range input.Items {
			if requested.Quantity <= 0 {
				return models.ErrInvalidQuantity
			}
			product, err := r.Products.GetByID(requested.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return fmt.Errorf("product %s is inactive: %w", product.ID, models.ErrProductNotFound)
			}

			line := PriceLine{
				Quantity:  requested.Quantity,
				UnitPrice: product.Price, // Use price at the time of order creation
				Discount:  requested.Discount,
			}
			lines = append(lines, line)
			items = append(items, models.OrderItem{
				ProductID:            product.ID,
				Quantity:             requested.Quantity,
				UnitPrice:            product.Price,
				Discount:             requested.Discount,
				Total:                s.pricing.LineTotal(line),
				BatchNumber:          requested.BatchNumber,
				RequiresPrescription: product.RequiresPrescription,
			})
		}

		summary := s.pricing.Calculate(lines, input.Discount)

		order := &models.Order{
			ID:              uuid.New().String(),
			OrderNumber:     s.generateOrderNumber(),
			CustomerID:      input.CustomerID,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			Subtotal:        summary.Subtotal,
			Tax:             summary.Tax,
			ShippingCost:    summary.ShippingCost,
			Discount:        summary.Discount,
			Total:           summary.Total,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			PaymentMethod:   input.PaymentMethod,
			Notes:           input.Notes,
			Items:           items,
		}

		if err := r.Orders.Create(order); err != nil {
			return fmt.Errorf("failed to create order in repository: %w", err)
		}

		ledger := NewInventoryService(r.Inventory)
		for _, item := range order.Items {
			if err := ledger.Reserve(item.ProductID, item.Quantity, order.ID); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.created", created)
	return created, nil
}

// UpdateStatus moves an order through its state machine. Only an ADMIN actor
// may change status. Cancellation releases every line's reservation;
// completion commits each line (idempotently) and stamps the delivered time.
// Entering PROCESSING marks the order shipped as an explicit action.
func (s *OrderService) UpdateStatus(orderID string, target models.OrderStatus, actorRole string) (*models.Order, error) {
	if actorRole != models.RoleAdmin {
		return nil, models.ErrForbidden
	}

	var updated *models.Order
	err := s.uow.Do(func(r repositories.RepositorySet) error {
		order, err := r.Orders.GetByID(orderID)
		if err != nil {
			return err
		}

		from := order.Status
		if err := order.Transition(target, s.now()); err != nil {
			return err
		}
		if target == models.OrderStatusProcessing {
			order.MarkShipped(s.now())
		}

		ledger := NewInventoryService(r.Inventory)
		switch target {
		case models.OrderStatusCancelled:
			for _, item := range order.Items {
				if err := ledger.Release(item.ProductID, item.Quantity, order.ID); err != nil {
					return err
				}
			}
		case models.OrderStatusCompleted:
			for _, item := range order.Items {
				if err := ledger.Commit(item.ProductID, item.Quantity, order.ID); err != nil {
					return err
				}
			}
		}

		if err := r.Orders.UpdateStatus(order, from); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.status_updated", updated)
	return updated, nil
}

// generateOrderNumber builds a unique human-readable order reference.
func (s *OrderService) generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("EP-%s-%s", s.now().Format("20060102"), suffix)
}

// publishOrderEvent emits an order event to RabbitMQ, best effort: a broker
// failure is logged and never affects the already-committed order.
func (s *OrderService) publishOrderEvent(routingKey string, order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"customerID":  order.CustomerID,
		"status":      order.Status,
		"total":       order.Total,
	}
	messageBody, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("orders", routingKey, messageBody); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	} else {
		log.Printf("Successfully published %s event for order %s", routingKey, order.ID)
	}
}
