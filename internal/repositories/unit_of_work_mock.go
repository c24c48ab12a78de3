package repositories

import (
	"sync"
)

// stateSnapshotter is implemented by the in-memory repositories so the mock
// unit of work can roll their state back after a failed callback.
type stateSnapshotter interface {
	snapshot() func()
}

// MockUnitOfWork implements UnitOfWork over the in-memory repositories.
// Before running the callback it snapshots every repository; if the callback
// errors, all snapshots are restored, giving tests the same all-or-nothing
// behavior as a database transaction.
type MockUnitOfWork struct {
	repos RepositorySet
	snaps []stateSnapshotter
	mu    sync.Mutex
}

// NewMockUnitOfWork creates a new instance of MockUnitOfWork over the given
// in-memory repositories.
func NewMockUnitOfWork(
	products *MockProductRepository,
	orders *MockOrderRepository,
	inventory *MockInventoryRepository,
	prescriptions *MockPrescriptionRepository,
) *MockUnitOfWork {
	return &MockUnitOfWork{
		repos: RepositorySet{
			Products:      products,
			Orders:        orders,
			Inventory:     inventory,
			Prescriptions: prescriptions,
		},
		snaps: []stateSnapshotter{products, orders, inventory, prescriptions},
	}
}

// Do runs fn against the shared repositories, restoring their prior state if
// fn returns an error. Units of work are serialized against each other.
func (u *MockUnitOfWork) Do(fn func(repos RepositorySet) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	restores := make([]func(), 0, len(u.snaps))
	for _, s := range u.snaps {
		restores = append(restores, s.snapshot())
	}
	if err := fn(u.repos); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
