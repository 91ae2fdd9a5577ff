package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/storage"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

var testScope = domain.Scope{WarehouseID: "WH-1"}

type fixture struct {
	store     *storage.MemoryStore
	cache     *storage.MemoryCache
	movements *storage.MemoryMovements
	shipments *storage.MemoryShipments
	logs      *observer.ObservedLogs

	orders    *FulfillmentService
	tasks     *PickTaskService
	inventory *InventoryService
}

type fixtureOption func(*fixtureDeps)

type fixtureDeps struct {
	shipments port.ShipmentService
	tracking  port.TrackingNumberGenerator
}

func withShipments(s port.ShipmentService) fixtureOption {
	return func(d *fixtureDeps) { d.shipments = s }
}

func withTracking(g port.TrackingNumberGenerator) fixtureOption {
	return func(d *fixtureDeps) { d.tracking = g }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	f := &fixture{
		store:     storage.NewMemoryStore(),
		cache:     storage.NewMemoryCache(),
		movements: storage.NewMemoryMovements(),
		shipments: storage.NewMemoryShipments(),
		logs:      logs,
	}

	deps := fixtureDeps{
		shipments: f.shipments,
		tracking:  NewSequenceTrackingNumbers(f.cache),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.orders = NewFulfillmentService(f.store, f.cache, f.movements, deps.shipments, deps.tracking, logger)
	f.tasks = NewPickTaskService(f.store, f.movements, logger)
	f.inventory = NewInventoryService(f.store, f.movements, logger)
	return f
}

// stock receives quantity units of product at location and returns the record.
func (f *fixture) stock(t *testing.T, productID, locationID string, quantity int) domain.Inventory {
	t.Helper()
	inv, err := f.inventory.ReceiveStock(context.Background(), testScope, productID, locationID, quantity, "seed", "seed")
	require.NoError(t, err)
	return *inv
}

func (f *fixture) reload(t *testing.T, inventoryID string) domain.Inventory {
	t.Helper()
	inv, err := f.inventory.GetInventory(context.Background(), testScope, inventoryID)
	require.NoError(t, err)
	return *inv
}

func (f *fixture) createOrder(t *testing.T, number string, lines ...domain.LineItem) *domain.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), testScope, CreateOrderRequest{
		OrderNumber:  number,
		CustomerName: "Ada",
		Lines:        lines,
	})
	require.NoError(t, err)
	return order
}

// pickAll assigns, starts and completes every task of the order.
func (f *fixture) pickAll(t *testing.T, order *domain.Order) {
	t.Helper()
	ctx := context.Background()

	_, err := f.orders.AssignPickers(ctx, testScope, order.ID, "picker-1")
	require.NoError(t, err)
	for _, task := range order.Tasks {
		_, err := f.tasks.StartPickTask(ctx, testScope, task.ID, "")
		require.NoError(t, err)
		_, err = f.tasks.CompletePickTask(ctx, testScope, task.ID, "")
		require.NoError(t, err)
	}
}

func line(productID string, quantity int) domain.LineItem {
	return domain.LineItem{ProductID: productID, Quantity: quantity}
}

// failingShipments rejects every call.
type failingShipments struct{}

func (failingShipments) Create(ctx context.Context, scope domain.Scope, orderID, shipperID, trackingNumber string) (*domain.Shipment, error) {
	return nil, errors.New("shipping provider unavailable")
}

func (failingShipments) UpdateStatus(ctx context.Context, scope domain.Scope, shipmentID string, status domain.ShipmentStatus, location, notes string) (*domain.Shipment, error) {
	return nil, errors.New("shipping provider unavailable")
}

type failingTracking struct{}

func (failingTracking) NextTrackingNumber(ctx context.Context, scope domain.Scope) (string, error) {
	return "", errors.New("sequence store down")
}
