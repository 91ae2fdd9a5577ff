package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sumukha6357/WareouseSystem-sub000/internal/core/domain"
	"github.com/Sumukha6357/WareouseSystem-sub000/internal/port"
)

// StockAllocator spreads a requested quantity over the inventory records of
// a product, reserving as it goes.
type StockAllocator struct {
	logger *zap.Logger
}

func NewStockAllocator(logger *zap.Logger) *StockAllocator {
	return &StockAllocator{logger: logger}
}

// Allocate walks the product's inventory records in store order and
// reserves min(remaining, available) on each until the request is met.
//
// Reservations are made through the store's guarded increment, so a record
// drained by a concurrent allocation is re-read once and the walk continues
// with whatever is left on it. If the request cannot be met Allocate fails
// with ErrInsufficientStock; reservations it already made stay in tx and are
// undone only if the caller rolls tx back.
func (a *StockAllocator) Allocate(ctx context.Context, tx port.InventoryRepository, scope domain.Scope, productID string, requested int) ([]domain.Allocation, error) {
	if requested <= 0 {
		return nil, domain.Validationf("quantity for product %s must be positive", productID)
	}

	records, err := tx.ListInventoryByProduct(ctx, scope, productID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	remaining := requested
	var allocations []domain.Allocation

	for _, inv := range records {
		if remaining == 0 {
			break
		}

		taken, err := a.reserve(ctx, tx, scope, inv, remaining)
		if err != nil {
			return allocations, err
		}
		if taken == 0 {
			continue
		}

		allocations = append(allocations, domain.Allocation{
			InventoryID: inv.ID,
			LocationID:  inv.LocationID,
			Quantity:    taken,
		})
		remaining -= taken
	}

	if remaining > 0 {
		a.logger.Info("allocation short",
			zap.String("warehouse_id", scope.WarehouseID),
			zap.String("product_id", productID),
			zap.Int("requested", requested),
			zap.Int("short", remaining),
		)
		return allocations, domain.InsufficientStockf("insufficient stock for product %s: requested %d, short %d",
			productID, requested, remaining)
	}

	return allocations, nil
}

// reserve takes what it can from inv. Losing the guard twice in a row means
// the record is being drained concurrently and is skipped.
func (a *StockAllocator) reserve(ctx context.Context, tx port.InventoryRepository, scope domain.Scope, inv domain.Inventory, remaining int) (int, error) {
	for attempt := 0; ; attempt++ {
		take := min(remaining, inv.Available())
		if take <= 0 {
			return 0, nil
		}

		_, err := tx.ApplyStockDelta(ctx, scope, inv.ID, domain.StockDelta{Reserved: take})
		switch {
		case err == nil:
			return take, nil
		case !errors.Is(err, domain.ErrInsufficientStock):
			return 0, fmt.Errorf("reserve inventory %s: %w", inv.ID, err)
		case attempt > 0:
			return 0, nil
		}

		fresh, err := tx.GetInventory(ctx, scope, inv.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reload inventory %s: %w", inv.ID, err)
		}
		inv = *fresh
	}
}
