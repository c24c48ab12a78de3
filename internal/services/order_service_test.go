package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
	"github.com/vikingspartan/EveraPharm-sub000/internal/services"
)

// orderFixture wires the order orchestrator over in-memory repositories with
// a fixed clock, the way main wires it over GORM.
type orderFixture struct {
	products      *repositories.MockProductRepository
	orders        *repositories.MockOrderRepository
	inventory     *repositories.MockInventoryRepository
	prescriptions *repositories.MockPrescriptionRepository
	ledger        *services.InventoryService
	service       *services.OrderService
	now           time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		products:  repositories.NewMockProductRepository(),
		orders:    repositories.NewMockOrderRepository(),
		inventory: repositories.NewMockInventoryRepository(),
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.prescriptions = repositories.NewMockPrescriptionRepository(f.orders)
	f.ledger = services.NewInventoryService(f.inventory)
	uow := repositories.NewMockUnitOfWork(f.products, f.orders, f.inventory, f.prescriptions)
	f.service = services.NewOrderService(
		uow, f.orders, f.inventory,
		services.NewPricingCalculator(testPricingConfig()),
		nil,
	).WithClock(func() time.Time { return f.now })
	return f
}

// addProduct registers a product with stock and returns its ID.
func (f *orderFixture) addProduct(t *testing.T, name string, price string, stock int, requiresRx bool) string {
	t.Helper()
	product := &models.Product{
		SKU:                  "SKU-" + name,
		Name:                 name,
		Price:                dec(price),
		RequiresPrescription: requiresRx,
		Active:               true,
	}
	assert.NoError(t, f.products.Create(product))
	assert.NoError(t, f.ledger.Initialize(product.ID, stock, 0))
	return product.ID
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	paracetamol := f.addProduct(t, "Paracetamol", "10.00", 100, false)
	ibuprofen := f.addProduct(t, "Ibuprofen", "25.00", 50, false)

	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID:      "cust-1",
		ShippingAddress: "12 High Street",
		Items: []services.CreateOrderItemInput{
			{ProductID: paracetamol, Quantity: 2},
			{ProductID: ibuprofen, Quantity: 1},
		},
	})
	assert.NoError(t, err)
	assert.NotNil(t, order)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Contains(t, order.OrderNumber, "EP-20250601-")
	assertDecimal(t, "45.00", order.Subtotal)
	assertDecimal(t, "3.60", order.Tax)
	assertDecimal(t, "5.99", order.ShippingCost)
	assertDecimal(t, "54.59", order.Total)

	// Unit prices are snapshotted per line.
	assert.Len(t, order.Items, 2)
	assertDecimal(t, "10.00", order.Items[0].UnitPrice)
	assertDecimal(t, "20.00", order.Items[0].Total)

	// Stock is reserved, not deducted.
	inventory, _ := f.ledger.Stock(paracetamol)
	assert.Equal(t, 98, inventory.AvailableQuantity)
	assert.Equal(t, 2, inventory.ReservedQuantity)
	assert.Equal(t, 100, inventory.TotalQuantity)

	// One reservation movement per line.
	movements, _ := f.inventory.MovementsByOrder(order.ID)
	assert.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, models.MovementReasonOrderPlaced, m.Reason)
	}
}

func TestOrderService_CreateOrder_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 100, false)

	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.NoError(t, err)

	product, _ := f.products.GetByID(productID)
	product.Price = dec("99.99")
	assert.NoError(t, f.products.Update(product))

	stored, err := f.orders.GetByID(order.ID)
	assert.NoError(t, err)
	assertDecimal(t, "10.00", stored.Items[0].UnitPrice)
	assertDecimal(t, "10.00", stored.Total.Sub(stored.Tax).Sub(stored.ShippingCost))
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 100, false)

	_, err := f.service.CreateOrder(services.CreateOrderInput{CustomerID: "cust-1"})
	assert.ErrorIs(t, err, models.ErrEmptyOrder)

	_, err = f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: "missing", Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = f.service.CreateOrder(services.CreateOrderInput{
		Items: []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestOrderService_CreateOrder_InactiveProduct(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Discontinued", "10.00", 100, false)
	product, _ := f.products.GetByID(productID)
	product.Active = false
	assert.NoError(t, f.products.Update(product))

	_, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestOrderService_CreateOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	f := newOrderFixture(t)
	plentiful := f.addProduct(t, "Paracetamol", "10.00", 100, false)
	scarce := f.addProduct(t, "Ibuprofen", "25.00", 3, false)

	movementsBefore := len(f.inventory.AllMovements())

	_, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items: []services.CreateOrderItemInput{
			{ProductID: plentiful, Quantity: 2}, // reserves fine
			{ProductID: scarce, Quantity: 5},    // fails, 3 available
		},
	})
	var stockErr *models.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)

	// No order survives.
	orders, total, listErr := f.orders.List(repositories.OrderFilter{})
	assert.NoError(t, listErr)
	assert.Empty(t, orders)
	assert.Zero(t, total)

	// The earlier reservation was rolled back with it.
	inventory, _ := f.ledger.Stock(plentiful)
	assert.Equal(t, 100, inventory.AvailableQuantity)
	assert.Equal(t, 0, inventory.ReservedQuantity)

	inventory, _ = f.ledger.Stock(scarce)
	assert.Equal(t, 3, inventory.AvailableQuantity)

	// No movement survives either.
	assert.Len(t, f.inventory.AllMovements(), movementsBefore)
}

func TestOrderService_UpdateStatus_RequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 100, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.NoError(t, err)

	for _, role := range []string{models.RoleCustomer, models.RolePharmacist, ""} {
		_, err = f.service.UpdateStatus(order.ID, models.OrderStatusProcessing, role)
		assert.ErrorIs(t, err, models.ErrForbidden)
	}

	stored, _ := f.orders.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestOrderService_UpdateStatus_ProcessingMarksShipped(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 100, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.NoError(t, err)

	updated, err := f.service.UpdateStatus(order.ID, models.OrderStatusProcessing, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
	if assert.NotNil(t, updated.ShippedAt) {
		assert.Equal(t, f.now, *updated.ShippedAt)
	}

	stored, _ := f.orders.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
	assert.NotNil(t, stored.ShippedAt)
}

func TestOrderService_UpdateStatus_PrescriptionGateBlocksProcessing(t *testing.T) {
	f := newOrderFixture(t)
	antibiotics := f.addProduct(t, "Amoxicillin", "12.80", 50, true)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: antibiotics, Quantity: 1}},
	})
	assert.NoError(t, err)

	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusProcessing, models.RoleAdmin)
	assert.ErrorIs(t, err, models.ErrPrescriptionRequired)

	stored, _ := f.orders.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.ShippedAt)
}

func TestOrderService_UpdateStatus_CancelReleasesStock(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 10, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 4}},
	})
	assert.NoError(t, err)

	updated, err := f.service.UpdateStatus(order.ID, models.OrderStatusCancelled, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	inventory, _ := f.ledger.Stock(productID)
	assert.Equal(t, 10, inventory.AvailableQuantity)
	assert.Equal(t, 0, inventory.ReservedQuantity)
	assert.Equal(t, 10, inventory.TotalQuantity)

	released := 0
	movements, _ := f.inventory.MovementsByOrder(order.ID)
	for _, m := range movements {
		if m.Reason == models.MovementReasonOrderCancelled {
			released++
		}
	}
	assert.Equal(t, 1, released)
}

func TestOrderService_UpdateStatus_CompleteCommitsStockAndStampsDelivery(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 10, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 4}},
	})
	assert.NoError(t, err)

	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusProcessing, models.RoleAdmin)
	assert.NoError(t, err)

	deliveredAt := f.now.Add(48 * time.Hour)
	f.now = deliveredAt
	updated, err := f.service.UpdateStatus(order.ID, models.OrderStatusCompleted, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	if assert.NotNil(t, updated.DeliveredAt) {
		assert.Equal(t, deliveredAt, *updated.DeliveredAt)
	}

	inventory, _ := f.ledger.Stock(productID)
	assert.Equal(t, 6, inventory.TotalQuantity)
	assert.Equal(t, 6, inventory.AvailableQuantity)
	assert.Equal(t, 0, inventory.ReservedQuantity)
}

func TestOrderService_UpdateStatus_InvalidTransition(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 10, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.NoError(t, err)

	// PENDING cannot jump straight to COMPLETED.
	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusCompleted, models.RoleAdmin)
	var transitionErr *models.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)

	// Refund is only reachable from COMPLETED.
	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusRefunded, models.RoleAdmin)
	assert.ErrorAs(t, err, &transitionErr)

	stored, _ := f.orders.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestOrderService_UpdateStatus_RefundAfterCompletion(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 10, false)
	order, err := f.service.CreateOrder(services.CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 2}},
	})
	assert.NoError(t, err)

	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusProcessing, models.RoleAdmin)
	assert.NoError(t, err)
	_, err = f.service.UpdateStatus(order.ID, models.OrderStatusCompleted, models.RoleAdmin)
	assert.NoError(t, err)

	updated, err := f.service.UpdateStatus(order.ID, models.OrderStatusRefunded, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, updated.Status)

	// Refunds do not restock; fulfilled stock stays deducted.
	inventory, _ := f.ledger.Stock(productID)
	assert.Equal(t, 8, inventory.TotalQuantity)
}

func TestOrderService_GetOrders_FiltersByCustomer(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.addProduct(t, "Paracetamol", "10.00", 100, false)

	for _, customer := range []string{"cust-1", "cust-1", "cust-2"} {
		_, err := f.service.CreateOrder(services.CreateOrderInput{
			CustomerID: customer,
			Items:      []services.CreateOrderItemInput{{ProductID: productID, Quantity: 1}},
		})
		assert.NoError(t, err)
	}

	orders, total, err := f.service.GetOrders(repositories.OrderFilter{CustomerID: "cust-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "cust-1", o.CustomerID)
	}

	orders, total, err = f.service.GetOrders(repositories.OrderFilter{Page: 1, PageSize: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)
}
