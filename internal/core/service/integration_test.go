package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/storage"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
)

type testEnv struct {
	redis     *redis.Client
	mysql     *sql.DB
	scope     domain.Scope
	orders    *FulfillmentService
	tasks     *PickTaskService
	inventory *InventoryService
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/warehouse?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	store := storage.NewMySQLStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	logger := zaptest.NewLogger(t)
	cache := storage.NewRedisAdapter(rdb)
	movements := storage.NewMySQLMovements(db)

	return &testEnv{
		redis:     rdb,
		mysql:     db,
		scope:     domain.Scope{WarehouseID: "it-" + uuid.NewString()[:8]},
		orders:    NewFulfillmentService(store, cache, movements, storage.NewMySQLShipments(db), NewSequenceTrackingNumbers(cache), logger),
		tasks:     NewPickTaskService(store, movements, logger),
		inventory: NewInventoryService(store, movements, logger),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func TestIntegration_FullFulfillmentFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	if _, err := env.inventory.ReceiveStock(ctx, env.scope, "P1", "B1", 6, "it", "PO-1"); err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if _, err := env.inventory.ReceiveStock(ctx, env.scope, "P1", "B2", 8, "it", "PO-2"); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	order, err := env.orders.CreateOrder(ctx, env.scope, CreateOrderRequest{
		OrderNumber:  "SO-" + uuid.NewString()[:8],
		CustomerName: "Ada",
		Lines:        []domain.LineItem{{ProductID: "P1", Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(order.Tasks) != 2 {
		t.Fatalf("expected 2 pick tasks, got %d", len(order.Tasks))
	}

	if _, err := env.orders.AssignPickers(ctx, env.scope, order.ID, "picker-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	for _, task := range order.Tasks {
		if _, err := env.tasks.StartPickTask(ctx, env.scope, task.ID, ""); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if _, err := env.tasks.CompletePickTask(ctx, env.scope, task.ID, ""); err != nil {
			t.Fatalf("complete failed: %v", err)
		}
	}
	if _, err := env.orders.MarkPacked(ctx, env.scope, order.ID); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	dispatched, err := env.orders.MarkDispatched(ctx, env.scope, order.ID)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if dispatched.Status != domain.OrderStatusDispatched {
		t.Errorf("expected DISPATCHED, got %s", dispatched.Status)
	}

	// Verify MySQL inventory
	records, err := env.inventory.ListInventory(ctx, env.scope, "P1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	total := 0
	for _, inv := range records {
		if inv.ReservedQuantity != 0 {
			t.Errorf("expected no reservation at %s, got %d", inv.LocationID, inv.ReservedQuantity)
		}
		total += inv.Quantity
	}
	if total != 4 {
		t.Errorf("expected 4 units left, got %d", total)
	}

	var shipments int
	env.mysql.QueryRowContext(ctx, `SELECT COUNT(*) FROM shipments WHERE order_id = ?`, order.ID).Scan(&shipments)
	if shipments != 1 {
		t.Errorf("expected 1 shipment, got %d", shipments)
	}
}

func TestIntegration_ConcurrentOrdersNeverOversell(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	initialStock := 10
	if _, err := env.inventory.ReceiveStock(ctx, env.scope, "P1", "B1", initialStock, "it", "PO-1"); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup
	totalRequests := 20
	prefix := uuid.NewString()[:8]

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.orders.CreateOrder(ctx, env.scope, CreateOrderRequest{
				OrderNumber:  fmt.Sprintf("SO-%s-%d", prefix, n),
				CustomerName: "user",
				Lines:        []domain.LineItem{{ProductID: "P1", Quantity: 1}},
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case !errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(err, domain.ErrConcurrencyConflict):
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successCount.Load() > int32(initialStock) {
		t.Errorf("expected at most %d successful orders, got %d", initialStock, successCount.Load())
	}

	records, err := env.inventory.ListInventory(ctx, env.scope, "P1")
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one inventory record, got %d (%v)", len(records), err)
	}
	if records[0].ReservedQuantity != int(successCount.Load()) {
		t.Errorf("expected %d reserved, got %d", successCount.Load(), records[0].ReservedQuantity)
	}

	var orderCount int
	env.mysql.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE warehouse_id = ?`, env.scope.WarehouseID).Scan(&orderCount)
	if orderCount != int(successCount.Load()) {
		t.Errorf("expected %d orders in MySQL, got %d", successCount.Load(), orderCount)
	}
}

func TestIntegration_DuplicateOrderNumberIsRejected(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	if _, err := env.inventory.ReceiveStock(ctx, env.scope, "P1", "B1", 10, "it", "PO-1"); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	req := CreateOrderRequest{
		OrderNumber:  "SO-" + uuid.NewString()[:8],
		CustomerName: "user",
		Lines:        []domain.LineItem{{ProductID: "P1", Quantity: 1}},
	}
	defer env.redis.Del(ctx, idempotencyKey(env.scope, req.OrderNumber))

	if _, err := env.orders.CreateOrder(ctx, env.scope, req); err != nil {
		t.Fatalf("first order failed: %v", err)
	}

	// Second call with the same order number
	_, err := env.orders.CreateOrder(ctx, env.scope, req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got: %v", err)
	}

	// Verify only 1 unit reserved
	records, _ := env.inventory.ListInventory(ctx, env.scope, "P1")
	if len(records) != 1 || records[0].ReservedQuantity != 1 {
		t.Errorf("expected 1 unit reserved, got %+v", records)
	}
}
