package services

import (
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
)

// ProductService handles business logic related to products and their stock.
type ProductService struct {
	repo   repositories.ProductRepository
	ledger *InventoryService
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, ledger *InventoryService) *ProductService {
	return &ProductService{
		repo:   repo,
		ledger: ledger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product together with its inventory record and
// opening stock.
func (s *ProductService) CreateProduct(product *models.Product, initialStock, reorderLevel int) error {
	product.Active = true
	if err := s.repo.Create(product); err != nil {
		return err
	}
	return s.ledger.Initialize(product.ID, initialStock, reorderLevel)
}

// UpdateProduct updates an existing product. Price changes only affect future
// orders; existing order items keep their snapshot.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// Restock adds sellable stock for a product.
func (s *ProductService) Restock(productID string, quantity int) error {
	if _, err := s.repo.GetByID(productID); err != nil {
		return err
	}
	return s.ledger.Restock(productID, quantity)
}

// GetStock returns the inventory record for a product.
func (s *ProductService) GetStock(productID string) (*models.Inventory, error) {
	return s.ledger.Stock(productID)
}

// IsLowStock reports whether the product has fallen to its reorder level.
func (s *ProductService) IsLowStock(productID string) (bool, error) {
	return s.ledger.IsLowStock(productID)
}
