package port

import (
	"context"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

// Store runs units of work against the transactional store.
type Store interface {
	// WithinTx runs fn in a single transaction. A non-nil error from fn
	// rolls back every write fn made.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of repositories available inside one transaction.
type Tx interface {
	OrderRepository
	PickTaskRepository
	InventoryRepository
}

type OrderRepository interface {
	// InsertOrder persists a new order; a duplicate order number within the
	// warehouse is a validation error.
	InsertOrder(ctx context.Context, order *domain.Order) error

	GetOrder(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error)

	// UpdateOrder writes order if its version is still current and bumps
	// order.Version on success.
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

type PickTaskRepository interface {
	InsertPickTasks(ctx context.Context, tasks []domain.PickTask) error

	GetPickTask(ctx context.Context, scope domain.Scope, taskID string) (*domain.PickTask, error)

	// ListPickTasks returns the tasks of an order in creation order.
	ListPickTasks(ctx context.Context, scope domain.Scope, orderID string) ([]domain.PickTask, error)

	// UpdatePickTask writes task with a version check and bumps task.Version.
	UpdatePickTask(ctx context.Context, task *domain.PickTask) error
}

type InventoryRepository interface {
	GetInventory(ctx context.Context, scope domain.Scope, inventoryID string) (*domain.Inventory, error)

	// ListInventoryByProduct returns every live record for the product in a
	// stable store order.
	ListInventoryByProduct(ctx context.Context, scope domain.Scope, productID string) ([]domain.Inventory, error)

	FindInventory(ctx context.Context, scope domain.Scope, productID, locationID string) (*domain.Inventory, error)

	InsertInventory(ctx context.Context, inv *domain.Inventory) error

	// ApplyStockDelta atomically applies delta to the record. It fails with
	// domain.ErrInsufficientStock, leaving the row untouched, if the result
	// would break a counter invariant.
	ApplyStockDelta(ctx context.Context, scope domain.Scope, inventoryID string, delta domain.StockDelta) (*domain.Inventory, error)
}
