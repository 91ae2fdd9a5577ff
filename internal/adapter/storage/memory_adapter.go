package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

// MemoryStore is an in-process port.Store. Transactions are serialized and
// work on a copy of the state that replaces the original only on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	orders       map[string]domain.Order
	tasks        map[string]domain.PickTask
	taskIDs      []string
	inventory    map[string]domain.Inventory
	inventoryIDs []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			orders:    make(map[string]domain.Order),
			tasks:     make(map[string]domain.PickTask),
			inventory: make(map[string]domain.Inventory),
		},
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		orders:       maps.Clone(s.orders),
		tasks:        maps.Clone(s.tasks),
		taskIDs:      slices.Clone(s.taskIDs),
		inventory:    maps.Clone(s.inventory),
		inventoryIDs: slices.Clone(s.inventoryIDs),
	}
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.state.clone()
	if err := fn(ctx, &memoryTx{state: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	for _, o := range t.state.orders {
		if o.WarehouseID == order.WarehouseID && o.OrderNumber == order.OrderNumber && o.DeletedAt == nil {
			return domain.Validationf("order number %s already exists", order.OrderNumber)
		}
	}
	order.Version = 1
	stored := *order
	stored.Tasks = nil
	t.state.orders[order.ID] = stored
	return nil
}

func (t *memoryTx) GetOrder(ctx context.Context, scope domain.Scope, orderID string) (*domain.Order, error) {
	o, ok := t.state.orders[orderID]
	if !ok || o.WarehouseID != scope.WarehouseID || o.DeletedAt != nil {
		return nil, domain.NotFoundf("order %s not found", orderID)
	}
	return &o, nil
}

func (t *memoryTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	current, ok := t.state.orders[order.ID]
	if !ok || current.WarehouseID != order.WarehouseID || current.DeletedAt != nil {
		return domain.NotFoundf("order %s not found", order.ID)
	}
	if current.Version != order.Version {
		return domain.ConcurrencyConflictf("order %s was modified concurrently", order.ID)
	}
	order.Version++
	stored := *order
	stored.Tasks = nil
	t.state.orders[order.ID] = stored
	return nil
}

func (t *memoryTx) InsertPickTasks(ctx context.Context, tasks []domain.PickTask) error {
	for i := range tasks {
		tasks[i].Version = 1
		t.state.tasks[tasks[i].ID] = tasks[i]
		t.state.taskIDs = append(t.state.taskIDs, tasks[i].ID)
	}
	return nil
}

func (t *memoryTx) GetPickTask(ctx context.Context, scope domain.Scope, taskID string) (*domain.PickTask, error) {
	task, ok := t.state.tasks[taskID]
	if !ok || task.WarehouseID != scope.WarehouseID || task.DeletedAt != nil {
		return nil, domain.NotFoundf("pick task %s not found", taskID)
	}
	return &task, nil
}

func (t *memoryTx) ListPickTasks(ctx context.Context, scope domain.Scope, orderID string) ([]domain.PickTask, error) {
	var tasks []domain.PickTask
	for _, id := range t.state.taskIDs {
		task := t.state.tasks[id]
		if task.OrderID == orderID && task.WarehouseID == scope.WarehouseID && task.DeletedAt == nil {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (t *memoryTx) UpdatePickTask(ctx context.Context, task *domain.PickTask) error {
	current, ok := t.state.tasks[task.ID]
	if !ok || current.WarehouseID != task.WarehouseID || current.DeletedAt != nil {
		return domain.NotFoundf("pick task %s not found", task.ID)
	}
	if current.Version != task.Version {
		return domain.ConcurrencyConflictf("pick task %s was modified concurrently", task.ID)
	}
	task.Version++
	t.state.tasks[task.ID] = *task
	return nil
}

func (t *memoryTx) GetInventory(ctx context.Context, scope domain.Scope, inventoryID string) (*domain.Inventory, error) {
	inv, ok := t.state.inventory[inventoryID]
	if !ok || inv.WarehouseID != scope.WarehouseID || inv.DeletedAt != nil {
		return nil, domain.NotFoundf("inventory %s not found", inventoryID)
	}
	return &inv, nil
}

func (t *memoryTx) ListInventoryByProduct(ctx context.Context, scope domain.Scope, productID string) ([]domain.Inventory, error) {
	var records []domain.Inventory
	for _, id := range t.state.inventoryIDs {
		inv := t.state.inventory[id]
		if inv.ProductID == productID && inv.WarehouseID == scope.WarehouseID && inv.DeletedAt == nil {
			records = append(records, inv)
		}
	}
	return records, nil
}

func (t *memoryTx) FindInventory(ctx context.Context, scope domain.Scope, productID, locationID string) (*domain.Inventory, error) {
	for _, id := range t.state.inventoryIDs {
		inv := t.state.inventory[id]
		if inv.ProductID == productID && inv.LocationID == locationID &&
			inv.WarehouseID == scope.WarehouseID && inv.DeletedAt == nil {
			return &inv, nil
		}
	}
	return nil, domain.NotFoundf("no inventory for product %s at location %s", productID, locationID)
}

func (t *memoryTx) InsertInventory(ctx context.Context, inv *domain.Inventory) error {
	if _, ok := t.state.inventory[inv.ID]; ok {
		return domain.Validationf("inventory %s already exists", inv.ID)
	}
	if _, err := t.FindInventory(ctx, domain.Scope{WarehouseID: inv.WarehouseID}, inv.ProductID, inv.LocationID); err == nil {
		return domain.ConcurrencyConflictf("inventory for product %s at location %s already exists", inv.ProductID, inv.LocationID)
	}
	inv.Version = 1
	t.state.inventory[inv.ID] = *inv
	t.state.inventoryIDs = append(t.state.inventoryIDs, inv.ID)
	return nil
}

func (t *memoryTx) ApplyStockDelta(ctx context.Context, scope domain.Scope, inventoryID string, delta domain.StockDelta) (*domain.Inventory, error) {
	current, err := t.GetInventory(ctx, scope, inventoryID)
	if err != nil {
		return nil, err
	}
	next, err := current.Apply(delta)
	if err != nil {
		return nil, err
	}
	next.Version++
	next.UpdatedAt = time.Now()
	t.state.inventory[inventoryID] = next
	return &next, nil
}

// MemoryMovements is an in-process port.MovementRecorder.
type MemoryMovements struct {
	mu        sync.Mutex
	movements []domain.StockMovement
}

func NewMemoryMovements() *MemoryMovements {
	return &MemoryMovements{}
}

func (m *MemoryMovements) Record(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	m.movements = append(m.movements, movement)
	return movement, nil
}

// Movements returns a copy of everything recorded so far.
func (m *MemoryMovements) Movements() []domain.StockMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.movements)
}

// MemoryShipments is an in-process port.ShipmentService.
type MemoryShipments struct {
	mu        sync.Mutex
	shipments map[string]domain.Shipment
}

func NewMemoryShipments() *MemoryShipments {
	return &MemoryShipments{shipments: make(map[string]domain.Shipment)}
}

func (m *MemoryShipments) Create(ctx context.Context, scope domain.Scope, orderID, shipperID, trackingNumber string) (*domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sh := domain.Shipment{
		ID:             uuid.NewString(),
		WarehouseID:    scope.WarehouseID,
		OrderID:        orderID,
		ShipperID:      shipperID,
		TrackingNumber: trackingNumber,
		Status:         domain.ShipmentStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.shipments[sh.ID] = sh
	return &sh, nil
}

func (m *MemoryShipments) UpdateStatus(ctx context.Context, scope domain.Scope, shipmentID string, status domain.ShipmentStatus, location, notes string) (*domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sh, ok := m.shipments[shipmentID]
	if !ok || sh.WarehouseID != scope.WarehouseID {
		return nil, domain.NotFoundf("shipment %s not found", shipmentID)
	}
	sh.Status = status
	if location != "" {
		sh.Location = location
	}
	if notes != "" {
		sh.Notes = notes
	}
	sh.UpdatedAt = time.Now()
	m.shipments[shipmentID] = sh
	return &sh, nil
}

// ShipmentsForOrder returns the shipments created for orderID.
func (m *MemoryShipments) ShipmentsForOrder(orderID string) []domain.Shipment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Shipment
	for _, sh := range m.shipments {
		if sh.OrderID == orderID {
			out = append(out, sh)
		}
	}
	return out
}
