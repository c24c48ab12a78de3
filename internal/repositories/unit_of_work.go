package repositories

import (
	"gorm.io/gorm"
)

// RepositorySet bundles the repositories that participate in one atomic unit
// of work. Inside UnitOfWork.Do they all share the same transaction.
type RepositorySet struct {
	Products      ProductRepository
	Orders        OrderRepository
	Inventory     InventoryRepository
	Prescriptions PrescriptionRepository
}

// UnitOfWork runs a callback against a transactional RepositorySet. If the
// callback returns an error every write made through the set is rolled back;
// this is the atomicity boundary for order creation (order + items + N
// inventory reservations succeed or fail together).
type UnitOfWork interface {
	Do(fn func(repos RepositorySet) error) error
}

// GORMUnitOfWork implements UnitOfWork on top of gorm's transactions.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{
		db: db,
	}
}

// Do executes fn inside a database transaction, handing it repositories bound
// to that transaction.
func (u *GORMUnitOfWork) Do(fn func(repos RepositorySet) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(RepositorySet{
			Products:      NewGORMProductRepository(tx),
			Orders:        NewGORMOrderRepository(tx),
			Inventory:     NewGORMInventoryRepository(tx),
			Prescriptions: NewGORMPrescriptionRepository(tx),
		})
	})
}
