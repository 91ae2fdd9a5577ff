package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

func getMySQLStore(t *testing.T) (*MySQLStore, *sql.DB) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/warehouse?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	store := NewMySQLStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store, db
}

// testWarehouse gives every test its own warehouse so runs never collide.
func testWarehouse() domain.Scope {
	return domain.Scope{WarehouseID: "test-" + uuid.NewString()[:8]}
}

func insertTestInventory(t *testing.T, store *MySQLStore, scope domain.Scope, productID, locationID string, quantity int) domain.Inventory {
	t.Helper()
	now := time.Now()
	inv := domain.Inventory{
		ID:          uuid.NewString(),
		WarehouseID: scope.WarehouseID,
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.InsertInventory(ctx, &inv)
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return inv
}

func TestMySQL_OrderRoundTrip(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()
	inv := insertTestInventory(t, store, scope, "P1", "A-01", 10)

	now := time.Now().Truncate(time.Microsecond)
	order := &domain.Order{
		ID:              uuid.NewString(),
		WarehouseID:     scope.WarehouseID,
		OrderNumber:     "SO-1",
		CustomerName:    "Ada",
		ShippingAddress: "1 Main St",
		Status:          domain.OrderStatusPending,
		TotalItems:      3,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	tasks := []domain.PickTask{
		{ID: uuid.NewString(), WarehouseID: scope.WarehouseID, OrderID: order.ID, ProductID: "P1", LocationID: "A-01", InventoryID: inv.ID, Quantity: 2, Status: domain.PickTaskStatusAssigned, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), WarehouseID: scope.WarehouseID, OrderID: order.ID, ProductID: "P1", LocationID: "A-01", InventoryID: inv.ID, Quantity: 1, Status: domain.PickTaskStatusAssigned, CreatedAt: now, UpdatedAt: now},
	}

	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.InsertPickTasks(ctx, tasks)
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		got, err := tx.GetOrder(ctx, scope, order.ID)
		if err != nil {
			return err
		}
		if got.OrderNumber != "SO-1" || got.Status != domain.OrderStatusPending || got.Version != 1 {
			t.Errorf("unexpected order: %+v", got)
		}

		listed, err := tx.ListPickTasks(ctx, scope, order.ID)
		if err != nil {
			return err
		}
		if len(listed) != 2 || listed[0].ID != tasks[0].ID || listed[1].ID != tasks[1].ID {
			t.Errorf("pick tasks not returned in insertion order: %+v", listed)
		}

		if err := got.Transition(domain.OrderStatusPickAssigned, time.Now()); err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, got)
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// a second order with the same number is rejected
	dup := *order
	dup.ID = uuid.NewString()
	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.InsertOrder(ctx, &dup)
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for duplicate number, got: %v", err)
	}
}

func TestMySQL_UpdateOrder_OptimisticLock(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()

	now := time.Now()
	order := &domain.Order{
		ID: uuid.NewString(), WarehouseID: scope.WarehouseID, OrderNumber: "SO-1",
		CustomerName: "Ada", Status: domain.OrderStatusPending, CreatedAt: now, UpdatedAt: now,
	}
	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	stale := *order
	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	if order.Version != 2 {
		t.Errorf("expected version 2, got %d", order.Version)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.UpdateOrder(ctx, &stale)
	})
	if !errors.Is(err, ErrOptimisticLock) {
		t.Errorf("expected ErrOptimisticLock, got: %v", err)
	}
}

func TestMySQL_ApplyStockDelta(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()
	inv := insertTestInventory(t, store, scope, "P1", "A-01", 10)

	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		got, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: 7})
		if err != nil {
			return err
		}
		if got.Available() != 3 || got.Version != 2 {
			t.Errorf("unexpected record after reserve: %+v", got)
		}

		_, err = tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: 4})
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Errorf("expected insufficient stock, got: %v", err)
		}

		got, err = tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Quantity: -7, Reserved: -9, FloorReserved: true})
		if err != nil {
			return err
		}
		if got.Quantity != 3 || got.ReservedQuantity != 0 {
			t.Errorf("unexpected record after floored consume: %+v", got)
		}

		_, err = tx.ApplyStockDelta(ctx, scope, "missing", domain.StockDelta{Quantity: 1})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}
}

func TestMySQL_ConcurrentReserveNeverOversells(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	inv := insertTestInventory(t, store, scope, "P1", "A-01", 20)

	var reserved atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
				_, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: 1})
				return err
			})
			if err == nil {
				reserved.Add(1)
			}
		}()
	}
	wg.Wait()

	if reserved.Load() != 20 {
		t.Errorf("expected 20 reservations, got %d", reserved.Load())
	}

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		got, err := tx.GetInventory(ctx, scope, inv.ID)
		if err != nil {
			return err
		}
		if got.ReservedQuantity != 20 || got.Available() != 0 {
			t.Errorf("expected 20 reserved and 0 available, got %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
}

func TestMySQL_ConcurrentConsumeOnOneRow(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()
	inv := insertTestInventory(t, store, scope, "P1", "A-01", 100)

	const pickers, qty = 10, 3
	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		_, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: pickers * qty})
		return err
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < pickers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attempt := 0; attempt < 5; attempt++ {
				err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
					_, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{
						Quantity:      -qty,
						Reserved:      -qty,
						FloorReserved: true,
					})
					return err
				})
				if errors.Is(err, domain.ErrConcurrencyConflict) {
					continue
				}
				if err != nil {
					t.Errorf("consume failed: %v", err)
				}
				return
			}
			t.Error("consume kept conflicting")
		}()
	}
	wg.Wait()

	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		got, err := tx.GetInventory(ctx, scope, inv.ID)
		if err != nil {
			return err
		}
		if got.Quantity != 70 || got.ReservedQuantity != 0 {
			t.Errorf("expected quantity 70 and reserved 0, got %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
}

func TestMySQL_RollbackReleasesReservations(t *testing.T) {
	store, _ := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()
	inv := insertTestInventory(t, store, scope, "P1", "A-01", 10)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if _, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: 5}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got: %v", err)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		got, err := tx.GetInventory(ctx, scope, inv.ID)
		if err != nil {
			return err
		}
		if got.ReservedQuantity != 0 {
			t.Errorf("expected reservation rolled back, got %d", got.ReservedQuantity)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
}

func TestMySQL_MovementsAndShipments(t *testing.T) {
	_, db := getMySQLStore(t)
	scope := testWarehouse()
	ctx := context.Background()

	movements := NewMySQLMovements(db)
	mv, err := movements.Record(ctx, domain.StockMovement{
		WarehouseID:   scope.WarehouseID,
		ProductID:     "P1",
		ToLocationID:  "A-01",
		Quantity:      5,
		Kind:          domain.MovementInbound,
		ReferenceType: domain.ReferenceReceipt,
		ReferenceID:   "PO-1",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if mv.ID == "" {
		t.Error("expected movement id to be assigned")
	}

	shipments := NewMySQLShipments(db)
	sh, err := shipments.Create(ctx, scope, "order-1", "", "TRK-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	updated, err := shipments.UpdateStatus(ctx, scope, sh.ID, domain.ShipmentStatusDispatched, "", "gone")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.ShipmentStatusDispatched || updated.Notes != "gone" || updated.TrackingNumber != "TRK-1" {
		t.Errorf("unexpected shipment: %+v", updated)
	}

	_, err = shipments.UpdateStatus(ctx, testWarehouse(), sh.ID, domain.ShipmentStatusDelivered, "", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for other warehouse, got: %v", err)
	}
}
