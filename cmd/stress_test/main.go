package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/adapter/storage"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/service"
)

const (
	warehouseID   = "WH-STRESS"
	productID     = "stress-item"
	initialStock  = 20
	totalRequests = 50
	pickLocations = 10
)

func main() {
	ctx := context.Background()
	logger := zap.NewNop()

	store := storage.NewMemoryStore()
	cache := storage.NewMemoryCache()
	movements := storage.NewMemoryMovements()
	shipments := storage.NewMemoryShipments()

	orders := service.NewFulfillmentService(store, cache, movements, shipments, service.NewSequenceTrackingNumbers(cache), logger)
	tasks := service.NewPickTaskService(store, movements, logger)
	inventory := service.NewInventoryService(store, movements, logger)

	scope := domain.Scope{WarehouseID: warehouseID}

	ok := raceForStock(ctx, scope, orders, inventory)
	ok = raceCompletions(ctx, scope, orders, tasks, inventory) && ok

	if !ok {
		fmt.Println("STRESS TEST FAILED")
		return
	}
	fmt.Println("STRESS TEST PASSED")
}

// raceForStock submits more single-unit orders than there is stock for and
// checks that exactly the available units were allocated.
func raceForStock(ctx context.Context, scope domain.Scope, orders *service.FulfillmentService, inventory *service.InventoryService) bool {
	inv, err := inventory.ReceiveStock(ctx, scope, productID, "A-01", initialStock, "stress", "seed")
	if err != nil {
		fmt.Printf("FAIL: seed stock: %v\n", err)
		return false
	}

	var successCount, shortCount, otherCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := orders.CreateOrder(ctx, scope, service.CreateOrderRequest{
				OrderNumber:  fmt.Sprintf("SO-%04d", n),
				CustomerName: fmt.Sprintf("customer-%d", n),
				Lines:        []domain.LineItem{{ProductID: productID, Quantity: 1}},
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				shortCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success, short, other := successCount.Load(), shortCount.Load(), otherCount.Load()

	fmt.Println("========== ALLOCATION RACE ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Allocated:        %d\n", success)
	fmt.Printf("Short:            %d\n", short)
	fmt.Printf("Other Errors:     %d\n", other)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=====================================")

	pass := true
	if success == initialStock && short == totalRequests-initialStock && other == 0 {
		fmt.Printf("PASS: exactly %d orders allocated, %d short\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d/%d, got %d/%d (%d other)\n",
			initialStock, totalRequests-initialStock, success, short, other)
		pass = false
	}

	final, err := inventory.GetInventory(ctx, scope, inv.ID)
	if err != nil {
		fmt.Printf("FAIL: reload inventory: %v\n", err)
		return false
	}
	if final.Available() == 0 && final.ReservedQuantity == initialStock {
		fmt.Println("PASS: stock fully reserved, never oversold")
	} else {
		fmt.Printf("FAIL: expected available 0 reserved %d, got %d/%d\n",
			initialStock, final.Available(), final.ReservedQuantity)
		pass = false
	}
	return pass
}

// raceCompletions completes every pick task of one order concurrently and
// checks the order moved to PICKED exactly once.
func raceCompletions(ctx context.Context, scope domain.Scope, orders *service.FulfillmentService, tasks *service.PickTaskService, inventory *service.InventoryService) bool {
	const product = "multi-bin-item"
	for i := 0; i < pickLocations; i++ {
		if _, err := inventory.ReceiveStock(ctx, scope, product, fmt.Sprintf("B-%02d", i), 1, "stress", "seed"); err != nil {
			fmt.Printf("FAIL: seed stock: %v\n", err)
			return false
		}
	}

	order, err := orders.CreateOrder(ctx, scope, service.CreateOrderRequest{
		OrderNumber:  "SO-MULTI",
		CustomerName: "bulk customer",
		Lines:        []domain.LineItem{{ProductID: product, Quantity: pickLocations}},
	})
	if err != nil {
		fmt.Printf("FAIL: create order: %v\n", err)
		return false
	}
	if _, err := orders.AssignPickers(ctx, scope, order.ID, "picker-1"); err != nil {
		fmt.Printf("FAIL: assign pickers: %v\n", err)
		return false
	}
	for _, t := range order.Tasks {
		if _, err := tasks.StartPickTask(ctx, scope, t.ID, "picker-1"); err != nil {
			fmt.Printf("FAIL: start task %s: %v\n", t.ID, err)
			return false
		}
	}

	var failed atomic.Int32
	var wg sync.WaitGroup
	for _, t := range order.Tasks {
		wg.Add(1)
		go func(taskID string) {
			defer wg.Done()
			if _, err := tasks.CompletePickTask(ctx, scope, taskID, ""); err != nil {
				failed.Add(1)
			}
		}(t.ID)
	}
	wg.Wait()

	fmt.Println("========== COMPLETION RACE ==========")
	fmt.Printf("Pick Tasks:       %d\n", len(order.Tasks))
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Println("=====================================")

	final, err := orders.GetOrder(ctx, scope, order.ID)
	if err != nil {
		fmt.Printf("FAIL: reload order: %v\n", err)
		return false
	}
	if failed.Load() == 0 && final.Status == domain.OrderStatusPicked && final.PickedAt != nil {
		fmt.Println("PASS: order picked once all tasks completed")
		return true
	}
	fmt.Printf("FAIL: expected PICKED, got %s (%d failed completions)\n", final.Status, failed.Load())
	return false
}
